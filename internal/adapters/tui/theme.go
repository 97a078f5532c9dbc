package tui

import (
	"reflect"

	"github.com/charmbracelet/lipgloss"

	"github.com/calegria/focus-cli/internal/config"
	"github.com/calegria/focus-cli/internal/domain"
)

// resolveTheme fills any empty string fields in the given ThemeConfig with
// defaults. If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// ratingColor returns the theme color for a session's rating band.
func ratingColor(theme config.ThemeConfig, band domain.RatingBand) lipgloss.Color {
	switch band {
	case domain.RatingBandLow:
		return lipgloss.Color(theme.ColorRatingLow)
	case domain.RatingBandMedium:
		return lipgloss.Color(theme.ColorRatingMedium)
	case domain.RatingBandHigh:
		return lipgloss.Color(theme.ColorRatingHigh)
	default:
		return lipgloss.Color(theme.ColorHelp)
	}
}
