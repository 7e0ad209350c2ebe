package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client talks to whichever notification daemon owns the bus name. The CLI
// uses it to send notifications and to probe daemon presence.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus. The shared connection stays open
// for the life of the process.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(BusName, Path),
	}, nil
}

// Notify sends a notification and returns the daemon-allocated id.
func (c *Client) Notify(ctx context.Context, n *Notification) (uint32, error) {
	actions := n.Actions
	if actions == nil {
		actions = []string{}
	}
	hints := n.Hints
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}

	call := c.obj.CallWithContext(ctx, Interface+".Notify", 0,
		n.AppName, n.ReplacesID, n.AppIcon, n.Summary, n.Body,
		actions, hints, n.ExpireTimeout)
	if call.Err != nil {
		return 0, fmt.Errorf("Notify call failed: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// CloseNotification asks the daemon to close a notification.
func (c *Client) CloseNotification(ctx context.Context, id uint32) error {
	return c.obj.CallWithContext(ctx, Interface+".CloseNotification", 0, id).Err
}

// ServerInformation queries the daemon's identity. Fails when no daemon
// owns the bus name.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	call := c.obj.CallWithContext(ctx, Interface+".GetServerInformation", 0)
	if call.Err != nil {
		return info, call.Err
	}
	if err := call.Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion); err != nil {
		return info, err
	}
	return info, nil
}

// Capabilities queries the daemon's advertised capabilities.
func (c *Client) Capabilities(ctx context.Context) ([]string, error) {
	call := c.obj.CallWithContext(ctx, Interface+".GetCapabilities", 0)
	if call.Err != nil {
		return nil, call.Err
	}

	var caps []string
	if err := call.Store(&caps); err != nil {
		return nil, err
	}
	return caps, nil
}
