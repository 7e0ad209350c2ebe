package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jakestephens/banner/internal/config"
	"github.com/jakestephens/banner/internal/dbus"
	"github.com/jakestephens/banner/internal/history"
)

var statusOpts struct {
	since  string
	waybar bool
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text"`
	Alt        string `json:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage int    `json:"percentage,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon, DnD, and history status",
	Long: `Show whether the notification daemon is running, the Do Not Disturb
state, and recent history counts.

With --waybar the status is emitted in Waybar's custom module JSON format:

  "custom/notifications": {
    "exec": "banner status --waybar",
    "interval": 5,
    "return-type": "json",
    "on-click": "banner dnd toggle"
  }

The JSON includes:
  - text: Number of recent notifications
  - alt/class: dnd, offline, empty, or normal
  - tooltip: Breakdown of daemon, DnD, and history state`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusOpts.since, "since", "",
		"Count notifications from the last duration (default from config)")
	statusCmd.Flags().BoolVar(&statusOpts.waybar, "waybar", false,
		"Output Waybar custom module JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusOpts.waybar {
		return runWaybarStatus()
	}
	return runHumanStatus()
}

// probeDaemon asks whoever owns the notification bus name for its info.
func probeDaemon(ctx context.Context) (dbus.ServerInfo, []string, error) {
	client, err := dbus.NewClient()
	if err != nil {
		return dbus.ServerInfo{}, nil, err
	}
	info, err := client.ServerInformation(ctx)
	if err != nil {
		return dbus.ServerInfo{}, nil, err
	}
	caps, err := client.Capabilities(ctx)
	if err != nil {
		return info, nil, nil
	}
	return info, caps, nil
}

func sinceWindow() (time.Duration, string) {
	since := statusOpts.since
	if since == "" {
		since = getConfig().Filter.Since
	}
	d, err := history.ParseDuration(since)
	if err != nil {
		logger.Warn("invalid since duration, counting all", "since", since, "error", err)
		return 0, "all time"
	}
	if d == 0 {
		return 0, "all time"
	}
	return d, since
}

func runWaybarStatus() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	state, err := history.LoadSharedState(config.StatePath())
	if err != nil {
		return outputStatus(WaybarStatus{Text: "", Alt: "error", Class: "error"})
	}

	window, label := sinceWindow()
	recent := len(historyStore.Filter(history.FilterOptions{Since: window}))

	info, _, daemonErr := probeDaemon(ctx)

	var lines []string
	lines = append(lines, fmt.Sprintf("Notifications (%s): %d", label, recent))
	switch {
	case state.DnDActive() && state.DnDUntil > 0:
		lines = append(lines, fmt.Sprintf("Do Not Disturb until %s", humanize.Time(time.Unix(state.DnDUntil, 0))))
	case state.DnDActive():
		lines = append(lines, "Do Not Disturb on")
	}
	if daemonErr != nil {
		lines = append(lines, "Daemon: not running")
	} else {
		lines = append(lines, fmt.Sprintf("Daemon: %s %s", info.Name, info.Version))
	}

	class := "normal"
	switch {
	case state.DnDActive():
		class = "dnd"
	case daemonErr != nil:
		class = "offline"
	case recent == 0:
		class = "empty"
	}

	text := fmt.Sprintf("%d", recent)
	if recent == 0 {
		text = ""
	}

	return outputStatus(WaybarStatus{
		Text:       text,
		Alt:        class,
		Tooltip:    strings.Join(lines, "\n"),
		Class:      class,
		Percentage: min(recent, 100),
	})
}

func runHumanStatus() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	info, caps, daemonErr := probeDaemon(ctx)
	if daemonErr != nil {
		fmt.Println("Daemon: not running")
	} else {
		fmt.Printf("Daemon: %s %s (%s, spec %s)\n", info.Name, info.Version, info.Vendor, info.SpecVersion)
		if len(caps) > 0 {
			fmt.Printf("  Capabilities: %s\n", strings.Join(caps, ", "))
		}
	}

	state, err := history.LoadSharedState(config.StatePath())
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	if state.DnDActive() {
		if state.DnDUntil > 0 {
			fmt.Printf("Do Not Disturb: enabled until %s\n", humanize.Time(time.Unix(state.DnDUntil, 0)))
		} else {
			fmt.Println("Do Not Disturb: enabled")
		}
	} else {
		fmt.Println("Do Not Disturb: disabled")
	}
	if t := state.DnDLastTransition; t != nil {
		fmt.Printf("  Last change: %s (%s)\n", formatTransitionTime(t.Timestamp), t.Trigger)
	}

	window, label := sinceWindow()
	if window == 0 {
		fmt.Printf("History: %d notification(s)\n", historyStore.Count())
	} else {
		recent := len(historyStore.Filter(history.FilterOptions{Since: window}))
		fmt.Printf("History: %d notification(s), %d in the last %s\n",
			historyStore.Count(), recent, label)
	}

	if state.LastBannerAt > 0 {
		fmt.Printf("Last banner: %s\n", humanize.Time(time.Unix(state.LastBannerAt, 0)))
	}
	return nil
}

// outputStatus writes the status as JSON.
func outputStatus(status WaybarStatus) error {
	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(status)
}
