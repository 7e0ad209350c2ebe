package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jakestephens/banner/internal/config"
	"github.com/jakestephens/banner/internal/dbus"
	"github.com/jakestephens/banner/internal/history"
)

var sendOpts struct {
	app       string
	icon      string
	level     string
	timeout   string
	replaces  uint32
	actions   []string
	transient bool
	printID   bool
}

var sendCmd = &cobra.Command{
	Use:   "send <summary> [body]",
	Short: "Send a notification over D-Bus",
	Long: `Send a notification to whichever daemon owns org.freedesktop.Notifications.

When bannerd is running the notification appears as a banner; any other
spec-compliant daemon works too.

Examples:
  # Simple notification
  banner send "Build finished"

  # With body, app name, and urgency
  banner send "Disk almost full" "/ has 2% free" --app monitor --level critical

  # Sticky until dismissed
  banner send "Deploy waiting for approval" --timeout 0

  # Custom timeout (milliseconds or Go duration)
  banner send "Back in 10" --timeout 10s

  # Capture the id, replace the notification later
  id=$(banner send "Downloading..." --print-id)
  banner send "Download complete" --replaces-id "$id"`,
	RunE: runSend,
}

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a notification by id",
	Long: `Ask the notification daemon to close a notification.

The id is the one printed by 'banner send --print-id'.`,
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(closeCmd)

	sendCmd.Flags().StringVarP(&sendOpts.app, "app", "a", "banner",
		"Application name")
	sendCmd.Flags().StringVarP(&sendOpts.icon, "icon", "i", "",
		"Icon name or path")
	sendCmd.Flags().StringVarP(&sendOpts.level, "level", "u", "normal",
		"Urgency level (low, normal, critical)")
	sendCmd.Flags().StringVarP(&sendOpts.timeout, "timeout", "t", "",
		"Expire timeout: milliseconds or duration (0=never, empty=server default)")
	sendCmd.Flags().Uint32Var(&sendOpts.replaces, "replaces-id", 0,
		"Replace an existing notification by id")
	sendCmd.Flags().StringArrayVar(&sendOpts.actions, "action", nil,
		"Action as key=label (repeatable)")
	sendCmd.Flags().BoolVar(&sendOpts.transient, "transient", false,
		"Skip the history journal")
	sendCmd.Flags().BoolVar(&sendOpts.printID, "print-id", false,
		"Print the notification id to stdout")
}

func runSend(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("summary is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	summary := args[0]
	body := ""
	if len(args) > 1 {
		body = strings.Join(args[1:], " ")
	}

	level, err := history.ParseLevel(sendOpts.level)
	if err != nil {
		return err
	}

	// -1 leaves the timeout to the daemon's per-level defaults
	expireTimeout := int32(-1)
	if sendOpts.timeout != "" {
		var d config.Duration
		if err := d.UnmarshalText([]byte(sendOpts.timeout)); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		expireTimeout = int32(d.Milliseconds())
	}

	hints := map[string]godbus.Variant{
		"urgency": godbus.MakeVariant(byte(level)),
	}
	if sendOpts.transient {
		hints["transient"] = godbus.MakeVariant(true)
	}

	// Actions arrive as alternating key, label pairs
	var actions []string
	for _, a := range sendOpts.actions {
		key, label, found := strings.Cut(a, "=")
		if !found {
			label = key
		}
		actions = append(actions, key, label)
	}

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	id, err := client.Notify(ctx, &dbus.Notification{
		AppName:       sendOpts.app,
		ReplacesID:    sendOpts.replaces,
		AppIcon:       sendOpts.icon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	logger.Debug("notification sent", "id", id, "summary", summary)

	if sendOpts.printID {
		fmt.Println(id)
	}
	return nil
}

func runClose(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one notification id is required")
	}

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid notification id: %s", args[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	if err := client.CloseNotification(ctx, uint32(id)); err != nil {
		return fmt.Errorf("failed to close notification: %w", err)
	}
	return nil
}
