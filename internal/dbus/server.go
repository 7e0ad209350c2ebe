// Package dbus implements the org.freedesktop.Notifications D-Bus interface.
package dbus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// Interface is the notification interface name.
	Interface = "org.freedesktop.Notifications"
	// Path is the notification object path.
	Path = "/org/freedesktop/Notifications"
	// BusName is the bus name to claim.
	BusName = "org.freedesktop.Notifications"
)

// NotifyHandler is called when a new notification is received.
type NotifyHandler func(n *Notification, id uint32)

// CloseHandler is called when CloseNotification is requested.
type CloseHandler func(id uint32)

// Server implements the org.freedesktop.Notifications D-Bus interface.
// It owns D-Bus id allocation; banner creation and history recording
// happen in the handlers wired by the daemon.
type Server struct {
	conn   *dbus.Conn
	logger *slog.Logger

	nextID atomic.Uint32

	notifyHandler NotifyHandler
	closeHandler  CloseHandler

	mu         sync.RWMutex
	activeIDs  map[uint32]bool
	serverInfo ServerInfo
	running    bool
}

// NewServer creates a new notification Server.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:     logger,
		activeIDs:  make(map[uint32]bool),
		serverInfo: DefaultServerInfo(),
	}
}

// SetNotifyHandler sets the handler called when a notification is received.
func (s *Server) SetNotifyHandler(handler NotifyHandler) {
	s.notifyHandler = handler
}

// SetCloseHandler sets the handler called when CloseNotification is requested.
func (s *Server) SetCloseHandler(handler CloseHandler) {
	s.closeHandler = handler
}

// SetServerInfo sets the information returned by GetServerInformation.
func (s *Server) SetServerInfo(info ServerInfo) {
	s.serverInfo = info
}

// Start connects to the session bus, exports the notification object, and
// claims the bus name. Fails if another notification daemon owns the name
// and refuses to yield; callers may fall back to a Monitor in that case.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, Path, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: Path,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus notification server started", "interface", Interface, "path", Path)
	return nil
}

// Stop releases the bus name. The shared session bus connection stays open.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
	}

	s.logger.Info("D-Bus notification server stopped")
	return nil
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *Server) GetCapabilities() ([]string, *dbus.Error) {
	s.logger.Debug("GetCapabilities called")
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *Server) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.logger.Debug("GetServerInformation called")
	return s.serverInfo.Name, s.serverInfo.Vendor, s.serverInfo.Version, s.serverInfo.SpecVersion, nil
}

// Notify handles incoming notification requests.
// D-Bus method: Notify(susssasa{sv}i) -> u
func (s *Server) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	var id uint32
	if replacesID > 0 {
		id = replacesID
	} else {
		id = s.nextID.Add(1)
	}

	s.logger.Debug("Notify called",
		"app_name", appName,
		"replaces_id", replacesID,
		"summary", summary,
		"id", id,
	)

	n := &Notification{
		AppName:       appName,
		ReplacesID:    replacesID,
		AppIcon:       appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}

	s.mu.Lock()
	s.activeIDs[id] = true
	s.mu.Unlock()

	if s.notifyHandler != nil {
		s.notifyHandler(n, id)
	}

	return id, nil
}

// CloseNotification closes a notification by ID.
// D-Bus method: CloseNotification(u) -> nothing
func (s *Server) CloseNotification(id uint32) *dbus.Error {
	s.logger.Debug("CloseNotification called", "id", id)

	s.mu.Lock()
	_, exists := s.activeIDs[id]
	if exists {
		delete(s.activeIDs, id)
	}
	s.mu.Unlock()

	if !exists {
		return nil
	}

	if s.closeHandler != nil {
		s.closeHandler(id)
	}

	if err := s.EmitNotificationClosed(id, CloseReasonClosed); err != nil {
		s.logger.Warn("failed to emit NotificationClosed signal", "id", id, "error", err)
	}

	return nil
}

// MarkClosed removes a notification from active tracking. Called when a
// banner is retired by timeout or user action.
func (s *Server) MarkClosed(id uint32) {
	s.mu.Lock()
	delete(s.activeIDs, id)
	s.mu.Unlock()
}

// NotifyInternal injects a notification without going through D-Bus.
// Used for daemon self-notifications (config reload, DnD transitions).
// Returns the allocated notification ID.
func (s *Server) NotifyInternal(n *Notification) uint32 {
	id := s.nextID.Add(1)

	s.logger.Debug("NotifyInternal called",
		"app_name", n.AppName,
		"summary", n.Summary,
		"id", id,
	)

	s.mu.Lock()
	s.activeIDs[id] = true
	s.mu.Unlock()

	if s.notifyHandler != nil {
		s.notifyHandler(n, id)
	}

	return id
}

// IsActive returns true if the notification ID is currently active.
func (s *Server) IsActive(id uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeIDs[id]
}

// notificationMethods returns the D-Bus method introspection data.
func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

// notificationSignals returns the D-Bus signal introspection data.
func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
