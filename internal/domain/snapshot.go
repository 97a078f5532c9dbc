package domain

import (
	"math"
	"time"
)

// TimerSnapshot is the durable client-side record of the currently running
// session. It exists if and only if a session is running from this client's
// perspective; its presence at startup is the sole resume signal, and the
// server is not consulted again.
type TimerSnapshot struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	EndTime       time.Time     `json:"end_time"`
	TotalDuration time.Duration `json:"total_duration"`
}

// Remaining returns the time left until the deadline, floored at zero.
func (s TimerSnapshot) Remaining(now time.Time) time.Duration {
	r := s.EndTime.Sub(now)
	if r < 0 {
		return 0
	}
	return r
}

// Expired reports whether the deadline has passed.
func (s TimerSnapshot) Expired(now time.Time) bool {
	return !now.Before(s.EndTime)
}

// Progress returns completion as a fraction in [0, 1].
func (s TimerSnapshot) Progress(now time.Time) float64 {
	if s.TotalDuration <= 0 {
		return 0
	}
	elapsed := s.TotalDuration - s.Remaining(now)
	return math.Min(1, math.Max(0, float64(elapsed)/float64(s.TotalDuration)))
}

// ProgressCaption returns the encouragement line shown under the countdown.
// Purely cosmetic; thresholds are 25/50/80 percent.
func ProgressCaption(progress float64) string {
	switch {
	case progress < 0.25:
		return "Time to focus."
	case progress < 0.50:
		return "Keep going, you're doing great."
	case progress < 0.80:
		return "Stay in the flow."
	default:
		return "Great progress! Keep going strong."
	}
}

// FormatRemaining renders a remaining duration as m:ss, rounding seconds up
// so the display reaches 0:00 exactly when the deadline passes.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int(math.Ceil(d.Seconds()))
	return FormatMinutes(float64(totalSeconds) / 60)
}
