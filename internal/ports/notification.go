package ports

// Notifier delivers desktop notifications. Implementations must be safe to
// call when the platform has no notification support; failures are reported
// as errors, never panics.
type Notifier interface {
	// SessionEnded announces that the named session reached its deadline.
	// Plays the alert sound when the platform supports it.
	SessionEnded(title string) error
}
