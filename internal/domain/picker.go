package domain

import (
	"fmt"
	"math"
	"time"
)

// MaxDurationMinutes is the hard ceiling for a session duration.
const MaxDurationMinutes = 480

// DefaultDurationMinutes is the picker's initial value.
const DefaultDurationMinutes = 25

// DurationPresets are the fixed preset values, ascending, in minutes.
var DurationPresets = []float64{1, 5, 25, 45, 60}

// DurationIncrements are the fixed add-time values, in minutes.
var DurationIncrements = []float64{0.5, 1, 5}

// DurationPicker holds a single duration value in minutes. Presets replace
// the value, increments add to it; increments are only ever added, so no
// floor clamp is needed.
type DurationPicker struct {
	minutes float64
}

// NewDurationPicker returns a picker at the default duration.
func NewDurationPicker() DurationPicker {
	return DurationPicker{minutes: DefaultDurationMinutes}
}

// Minutes returns the current value in minutes.
func (p DurationPicker) Minutes() float64 {
	return p.minutes
}

// Duration returns the current value as a time.Duration.
func (p DurationPicker) Duration() time.Duration {
	return time.Duration(p.minutes * float64(time.Minute))
}

// SetPreset replaces the value with the preset at index i. Out-of-range
// indexes are ignored.
func (p *DurationPicker) SetPreset(i int) {
	if i < 0 || i >= len(DurationPresets) {
		return
	}
	p.minutes = DurationPresets[i]
}

// AddIncrement adds the increment at index i, clamped to the ceiling.
func (p *DurationPicker) AddIncrement(i int) {
	if i < 0 || i >= len(DurationIncrements) {
		return
	}
	p.minutes = math.Min(MaxDurationMinutes, p.minutes+DurationIncrements[i])
}

// FormatMinutes renders a minute value as m:ss with zero-padded seconds,
// e.g. 25 -> "25:00", 25.5 -> "25:30".
func FormatMinutes(minutes float64) string {
	totalSeconds := int(math.Round(minutes * 60))
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// FormatIncrement renders an increment button label, e.g. 0.5 -> "+0:30".
func FormatIncrement(minutes float64) string {
	return "+" + FormatMinutes(minutes)
}
