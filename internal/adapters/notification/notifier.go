// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/calegria/focus-cli/internal/config"
	"github.com/calegria/focus-cli/internal/ports"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg *config.NotificationConfig
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{cfg: cfg}
}

// SessionEnded displays the time-is-up notification if enabled. With sound
// enabled it uses the platform alert tone.
func (n *Notifier) SessionEnded(title string) error {
	if !n.IsEnabled() {
		return nil
	}

	heading := "⏰ Time is up!"
	message := fmt.Sprintf("Your focus session %q has ended. How did it go?", title)
	if n.cfg.Sound {
		return beeep.Alert(heading, message, "")
	}
	return beeep.Notify(heading, message, "")
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}
