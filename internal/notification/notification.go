// Package notification handles sending notifications to external services.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/containrrr/shoutrrr"

	"github.com/zorak1103/conman/internal/config"
)

// ActionEvent describes an action executed by the server.
type ActionEvent struct {
	Action     string // e.g. "remove"
	Kind       string // "container" or "service"
	ID         string
	RemoteAddr string
	Time       time.Time
	Err        error // non-nil when the action failed
}

// Notifier handles sending notifications via Shoutrrr
type Notifier struct {
	enabled     bool
	shoutrrrURL string
	send        func(url, message string) error
}

// NewNotifier initializes a Shoutrrr-based notification client from config.
func NewNotifier(cfg config.NotificationConfig) (*Notifier, error) {
	if !cfg.Enabled {
		return &Notifier{enabled: false}, nil
	}

	url := strings.TrimSpace(cfg.ShoutrrURL)
	if url == "" {
		return &Notifier{enabled: false}, fmt.Errorf("notification enabled but shoutrrr_url not configured: provide URL in format 'service://credentials' (e.g., slack://token@channel, discord://token@webhookid)")
	}

	return &Notifier{
		enabled:     true,
		shoutrrrURL: url,
		send:        shoutrrr.Send,
	}, nil
}

// SendAction delivers a notification about an executed action.
func (n *Notifier) SendAction(event ActionEvent) error {
	if n == nil || !n.enabled {
		return nil
	}

	if err := n.send(n.shoutrrrURL, FormatAction(event)); err != nil {
		return fmt.Errorf("notification failed to send via %s (%s %s %s): %w",
			n.serviceType(), event.Action, event.Kind, event.ID, err)
	}
	return nil
}

// FormatAction renders the notification text for an action event.
func FormatAction(event ActionEvent) string {
	ts := event.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var sb strings.Builder
	if event.Err != nil {
		fmt.Fprintf(&sb, "⚠️ conman: %s of %s %s failed\n", event.Action, event.Kind, event.ID)
	} else {
		fmt.Fprintf(&sb, "🐳 conman: %s %s %s\n", event.Kind, event.ID, pastTense(event.Action))
	}
	fmt.Fprintf(&sb, "📅 Time: %s\n", ts.Format("2006-01-02 15:04:05"))
	if event.RemoteAddr != "" {
		fmt.Fprintf(&sb, "👤 Requested by: %s\n", event.RemoteAddr)
	}
	if event.Err != nil {
		fmt.Fprintf(&sb, "❌ Error: %v\n", event.Err)
	}
	return sb.String()
}

func pastTense(action string) string {
	switch {
	case action == "":
		return "changed"
	case strings.HasSuffix(action, "e"):
		return action + "d"
	default:
		return action + "ed"
	}
}

// serviceType extracts the scheme (e.g., "slack://..." -> "slack")
func (n *Notifier) serviceType() string {
	if idx := strings.Index(n.shoutrrrURL, "://"); idx > 0 {
		return n.shoutrrrURL[:idx]
	}
	return "unknown"
}

// IsEnabled reports whether notifications are configured and active.
func (n *Notifier) IsEnabled() bool {
	return n != nil && n.enabled
}
