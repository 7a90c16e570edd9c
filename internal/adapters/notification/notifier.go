// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/focushive/hivetimer/internal/config"
	"github.com/focushive/hivetimer/internal/domain"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg *config.NotificationConfig
}

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{cfg: cfg}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	return beeep.Notify(title, message, "")
}

// NotifySessionComplete displays a notification when a focus session completes.
func (n *Notifier) NotifySessionComplete(sessionType domain.SessionType, actual time.Duration) error {
	title := "Session Complete"
	message := fmt.Sprintf("Nice work! You finished a %dm %s session.",
		int(actual.Minutes()), sessionType)
	return n.Notify(title, message)
}

// NotifyReminder displays a notification shortly before the planned end.
func (n *Notifier) NotifyReminder(remaining time.Duration) error {
	title := "Almost There"
	message := fmt.Sprintf("About %dm left in your session.", int(remaining.Minutes()))
	return n.Notify(title, message)
}

// NotifySessionExpired displays a notification when a stale session was swept.
func (n *Notifier) NotifySessionExpired() error {
	return n.Notify("Session Expired", "Your session ran past the stale horizon and was cancelled.")
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}
