package domain

import (
	"fmt"
	"time"
)

// DayAggregate is the server-derived summary of a calendar day's completed
// sessions. The client only reads it; totals are never summed client-side.
type DayAggregate struct {
	Date         string  `json:"date"`
	SessionCount int     `json:"session_count"`
	TotalMinutes float64 `json:"total_minutes"`
}

// DayNumber returns the day-of-month for the aggregate's date, for display.
func (d DayAggregate) DayNumber() int {
	t, err := time.Parse(DateLayout, d.Date)
	if err != nil {
		return 0
	}
	return t.Day()
}

// Weekday returns the weekday name for the aggregate's date.
func (d DayAggregate) Weekday() string {
	t, err := time.Parse(DateLayout, d.Date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

// FormatTotalMinutes renders a minute total as "45m", "1h" or "1h 15m".
func FormatTotalMinutes(minutes float64) string {
	m := int(minutes)
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	h := m / 60
	if m%60 == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m%60)
}
