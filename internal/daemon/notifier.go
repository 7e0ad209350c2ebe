package daemon

import (
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jakestephens/banner/internal/banner"
	"github.com/jakestephens/banner/internal/dbus"
)

// Notifier surfaces daemon conditions (config reload, DnD transitions) as
// banners through the normal notification path. Rate limiting keeps a
// flapping condition from flooding the queue.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	notifyHandler func(n *dbus.Notification) uint32

	lastNotifyTime map[string]time.Time // key -> last notification time
	minInterval    time.Duration

	enabled bool
}

// NewNotifier creates a Notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetNotifyHandler sets the function called for each notification.
// Wire this to the D-Bus server's NotifyInternal so self-notifications
// take the same path as external ones.
func (n *Notifier) SetNotifyHandler(handler func(n *dbus.Notification) uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyHandler = handler
}

// SetEnabled enables or disables self-notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications
// sharing a key.
func (n *Notifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a self-notification unless one with the same key fired
// within the minimum interval.
func (n *Notifier) Notify(key, summary, body string, level banner.Level) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return
	}

	if n.notifyHandler == nil {
		n.logger.Debug("self-notification skipped: no handler", "summary", summary)
		return
	}

	if lastTime, ok := n.lastNotifyTime[key]; ok {
		if time.Since(lastTime) < n.minInterval {
			n.logger.Debug("self-notification rate-limited", "key", key, "summary", summary)
			return
		}
	}
	n.lastNotifyTime[key] = time.Now()

	var urgency byte
	var icon string
	switch level {
	case banner.LevelLow:
		urgency = 0
		icon = "dialog-information"
	case banner.LevelCritical:
		urgency = 2
		icon = "dialog-error"
	default:
		urgency = 1
		icon = "dialog-warning"
	}

	notification := &dbus.Notification{
		AppName: "bannerd",
		AppIcon: icon,
		Summary: summary,
		Body:    body,
		Hints: map[string]godbus.Variant{
			"urgency":       godbus.MakeVariant(urgency),
			"transient":     godbus.MakeVariant(true), // Self-notifications stay out of history
			"desktop-entry": godbus.MakeVariant("bannerd"),
		},
		ExpireTimeout: 5000,
	}

	n.logger.Debug("sending self-notification", "key", key, "summary", summary, "level", level.String())

	_ = n.notifyHandler(notification)
}

// NotifyStartup announces that the daemon has started.
func (n *Notifier) NotifyStartup(version string) {
	n.Notify(
		"startup",
		"bannerd Started",
		"Notification daemon v"+version+" is now running.",
		banner.LevelLow,
	)
}

// NotifyConfigReloaded announces a successful config reload.
func (n *Notifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"bannerd configuration has been successfully reloaded.",
		banner.LevelLow,
	)
}

// NotifyConfigError announces a config reload failure.
func (n *Notifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		banner.LevelNormal,
	)
}

// NotifyDnDChanged announces a Do Not Disturb transition.
func (n *Notifier) NotifyDnDChanged(enabled bool, reason string) {
	var summary, body string
	if enabled {
		summary = "Do Not Disturb Enabled"
		body = "Banners will be suppressed."
	} else {
		summary = "Do Not Disturb Disabled"
		body = "Banners will now be displayed."
	}
	if reason != "" {
		body += " (" + reason + ")"
	}
	n.Notify("dnd-change", summary, body, banner.LevelLow)
}

// NotifySoundError announces a feedback playback failure.
func (n *Notifier) NotifySoundError(err error) {
	n.Notify(
		"sound-error",
		"Sound Error",
		"Failed to play notification sound: "+err.Error(),
		banner.LevelNormal,
	)
}
