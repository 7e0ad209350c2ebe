package dbus

import (
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// Monitor passively observes notification traffic without claiming the bus
// name. This allows recording history alongside another notification daemon
// (like dunst or mako).
type Monitor struct {
	conn   *dbus.Conn
	logger *slog.Logger

	onNotify NotifyHandler
}

// NewMonitor creates a new notification monitor.
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger: logger,
	}
}

// SetNotifyHandler sets the callback for captured notifications.
func (m *Monitor) SetNotifyHandler(handler NotifyHandler) {
	m.onNotify = handler
}

// Start begins monitoring D-Bus for Notify method calls.
func (m *Monitor) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	m.conn = conn

	rules := []string{
		"type='method_call',interface='org.freedesktop.Notifications',member='Notify'",
	}

	err = conn.BusObject().Call(
		"org.freedesktop.DBus.Monitoring.BecomeMonitor",
		0,
		rules,
		uint32(0),
	).Err

	if err != nil {
		// BecomeMonitor needs a reasonably recent D-Bus daemon. Older ones
		// only support eavesdropping via match rules.
		m.logger.Warn("BecomeMonitor not available, trying AddMatch", "error", err)
		return m.startWithAddMatch()
	}

	m.logger.Info("started D-Bus monitor using BecomeMonitor")

	go m.processMessages()

	return nil
}

// startWithAddMatch uses the older AddMatch API for eavesdropping.
func (m *Monitor) startWithAddMatch() error {
	matchRule := "type='method_call',interface='org.freedesktop.Notifications',member='Notify',eavesdrop='true'"

	err := m.conn.BusObject().Call(
		"org.freedesktop.DBus.AddMatch",
		0,
		matchRule,
	).Err

	if err != nil {
		return fmt.Errorf("failed to add match rule (eavesdrop may require permissions): %w", err)
	}

	m.logger.Info("started D-Bus monitor using AddMatch with eavesdrop")

	go m.processMessages()

	return nil
}

// processMessages reads and filters captured D-Bus messages.
func (m *Monitor) processMessages() {
	ch := make(chan *dbus.Message, 100)
	m.conn.Eavesdrop(ch)

	for msg := range ch {
		if msg.Type != dbus.TypeMethodCall {
			continue
		}
		if msg.Headers[dbus.FieldInterface].Value() != Interface {
			continue
		}
		if msg.Headers[dbus.FieldMember].Value() != "Notify" {
			continue
		}

		m.handleNotify(msg)
	}
}

// handleNotify parses a Notify method call and invokes the handler.
func (m *Monitor) handleNotify(msg *dbus.Message) {
	// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout)
	if len(msg.Body) < 8 {
		m.logger.Warn("malformed Notify call", "body_len", len(msg.Body))
		return
	}

	n := &Notification{}

	var ok bool
	if n.AppName, ok = msg.Body[0].(string); !ok {
		m.logger.Warn("invalid app_name type")
		return
	}
	if n.ReplacesID, ok = msg.Body[1].(uint32); !ok {
		m.logger.Warn("invalid replaces_id type")
		return
	}
	if n.AppIcon, ok = msg.Body[2].(string); !ok {
		m.logger.Warn("invalid app_icon type")
		return
	}
	if n.Summary, ok = msg.Body[3].(string); !ok {
		m.logger.Warn("invalid summary type")
		return
	}
	if n.Body, ok = msg.Body[4].(string); !ok {
		m.logger.Warn("invalid body type")
		return
	}

	if actions, ok := msg.Body[5].([]string); ok {
		n.Actions = actions
	}
	if hints, ok := msg.Body[6].(map[string]dbus.Variant); ok {
		n.Hints = hints
	}
	if timeout, ok := msg.Body[7].(int32); ok {
		n.ExpireTimeout = timeout
	}

	// Eavesdropping never sees the owning server's reply, so the real ID
	// is unknown. Derive a stable pseudo-ID from the content instead.
	id := monitorID(n)

	m.logger.Debug("captured notification",
		"app", n.AppName,
		"summary", n.Summary,
		"id", id)

	if m.onNotify != nil {
		m.onNotify(n, id)
	}
}

// monitorID derives a pseudo-ID for a captured notification.
func monitorID(n *Notification) uint32 {
	h := fnv.New32a()
	h.Write([]byte(n.AppName))
	h.Write([]byte{0})
	h.Write([]byte(n.Summary))
	h.Write([]byte{0})
	h.Write([]byte(n.Body))
	return h.Sum32()
}

// Stop stops the monitor and closes its connection.
func (m *Monitor) Stop() error {
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
