package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// EmitNotificationClosed emits the NotificationClosed signal.
// Emitted when a notification is closed by timeout, user dismissal, or an
// explicit close request.
func (s *Server) EmitNotificationClosed(id uint32, reason CloseReason) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.conn.Emit(Path, Interface+".NotificationClosed", id, uint32(reason))
	if err != nil {
		return fmt.Errorf("failed to emit NotificationClosed signal: %w", err)
	}

	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", reason.String())
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
// Emitted when the user invokes an action on a notification.
func (s *Server) EmitActionInvoked(id uint32, actionKey string) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.conn.Emit(Path, Interface+".ActionInvoked", id, actionKey)
	if err != nil {
		return fmt.Errorf("failed to emit ActionInvoked signal: %w", err)
	}

	s.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
	return nil
}

// CloseWithReason removes a notification from active tracking and emits
// NotificationClosed with the given reason.
func (s *Server) CloseWithReason(id uint32, reason CloseReason) error {
	s.MarkClosed(id)
	return s.EmitNotificationClosed(id, reason)
}

// InvokeAction emits ActionInvoked for a notification. Non-resident
// notifications are closed afterward with reason dismissed.
func (s *Server) InvokeAction(id uint32, actionKey string, resident bool) error {
	if err := s.EmitActionInvoked(id, actionKey); err != nil {
		return err
	}

	if !resident {
		return s.CloseWithReason(id, CloseReasonDismissed)
	}

	return nil
}

// Connection returns the underlying D-Bus connection for advanced use,
// such as calling methods on other bus services.
func (s *Server) Connection() *dbus.Conn {
	return s.conn
}
