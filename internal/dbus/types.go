package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jakestephens/banner/internal/banner"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined per the spec.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Notification represents an incoming Notify call with the raw parameters
// from the org.freedesktop.Notifications.Notify method.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ParsedActions converts the D-Bus action array to structured form.
// D-Bus actions are passed as alternating key/label pairs.
func (n *Notification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

// DefaultAction returns the key of the "default" action if the sender
// supplied one, or empty string.
func (n *Notification) DefaultAction() string {
	for _, a := range n.ParsedActions() {
		if a.Key == "default" {
			return a.Key
		}
	}
	return ""
}

// Level maps the urgency hint (byte 0/1/2) to a banner level.
// Returns banner.LevelNormal if not specified or malformed.
func (n *Notification) Level() banner.Level {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			switch b {
			case 0:
				return banner.LevelLow
			case 2:
				return banner.LevelCritical
			}
		}
	}
	return banner.LevelNormal
}

// Transient returns true if the transient hint is set.
// Transient notifications are not persisted to history.
func (n *Notification) Transient() bool {
	if v, ok := n.Hints["transient"]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

// Resident returns true if the resident hint is set.
// Resident notifications are not auto-removed after an action is invoked.
func (n *Notification) Resident() bool {
	if v, ok := n.Hints["resident"]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

// SoundFile extracts the sound-file hint.
func (n *Notification) SoundFile() string {
	if v, ok := n.Hints["sound-file"]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// SuppressSound returns true if the suppress-sound hint is set.
func (n *Notification) SuppressSound() bool {
	if v, ok := n.Hints["suppress-sound"]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

// ImagePath extracts the image-path hint.
func (n *Notification) ImagePath() string {
	if v, ok := n.Hints["image-path"]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// DesktopEntry extracts the desktop-entry hint.
func (n *Notification) DesktopEntry() string {
	if v, ok := n.Hints["desktop-entry"]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// Icon returns the icon for display: the app_icon parameter, falling back
// to the image-path hint.
func (n *Notification) Icon() string {
	if n.AppIcon != "" {
		return n.AppIcon
	}
	return n.ImagePath()
}

// App returns the application name, falling back to the desktop-entry hint
// when the sender left app_name empty.
func (n *Notification) App() string {
	if n.AppName != "" {
		return n.AppName
	}
	return n.DesktopEntry()
}

// Content converts the notification to displayable banner content.
func (n *Notification) Content() banner.Content {
	return banner.Content{
		App:     n.App(),
		Summary: n.Summary,
		Body:    n.Body,
		Icon:    n.Icon(),
		Level:   n.Level(),
	}
}

// Duration resolves the expire timeout against the server default.
// Returns the on-screen duration and whether the notification is sticky
// (never expires on its own).
func (n *Notification) Duration(def time.Duration) (time.Duration, bool) {
	switch {
	case n.ExpireTimeout < 0:
		return def, false
	case n.ExpireTimeout == 0:
		return 0, true
	default:
		return time.Duration(n.ExpireTimeout) * time.Millisecond, false
	}
}

// ServerCapabilities lists the capabilities advertised by bannerd.
var ServerCapabilities = []string{
	"actions",     // Support notification actions
	"body",        // Support body text
	"body-markup", // Support Pango markup in body
	"icon-static", // Support static icons
	"persistence", // Persist notifications to history
	"sound",       // Play sounds
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "bannerd"
	Vendor      string // "banner"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "bannerd",
		Vendor:      "banner",
		Version:     "0.0.1", // Will be replaced by build-time version
		SpecVersion: "1.2",
	}
}
