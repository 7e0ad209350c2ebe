package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jakestephens/banner/internal/config"
	"github.com/jakestephens/banner/internal/history"
)

var dndOpts struct {
	quiet bool // Suppress output, return exit code only
	until string
}

// dndCmd represents the dnd command group.
var dndCmd = &cobra.Command{
	Use:   "dnd",
	Short: "Manage Do Not Disturb mode",
	Long: `Manage Do Not Disturb (DnD) mode for bannerd.

When DnD is enabled, bannerd suppresses banners and sounds while still
persisting notifications to the history store.

Use 'banner dnd status' to check the current state.
Use 'banner dnd on' to enable DnD mode, optionally with --for.
Use 'banner dnd off' to disable DnD mode.
Use 'banner dnd toggle' to toggle DnD mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to showing status
		return dndStatusRun(cmd, args)
	},
}

// dndOnCmd enables DnD mode.
var dndOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable Do Not Disturb mode",
	Long: `Enable Do Not Disturb mode. Banners and sounds will be suppressed.

With --for, DnD lapses on its own after the given duration:
  banner dnd on --for 1h`,
	RunE: dndOnRun,
}

// dndOffCmd disables DnD mode.
var dndOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable Do Not Disturb mode",
	Long:  `Disable Do Not Disturb mode. Banners and sounds will resume.`,
	RunE:  dndOffRun,
}

// dndToggleCmd toggles DnD mode.
var dndToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle Do Not Disturb mode",
	Long:  `Toggle Do Not Disturb mode between enabled and disabled.`,
	RunE:  dndToggleRun,
}

// dndStatusCmd shows DnD status.
var dndStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Do Not Disturb status",
	Long:  `Show whether Do Not Disturb mode is currently enabled or disabled.`,
	RunE:  dndStatusRun,
}

func init() {
	// Add subcommands
	dndCmd.AddCommand(dndOnCmd)
	dndCmd.AddCommand(dndOffCmd)
	dndCmd.AddCommand(dndToggleCmd)
	dndCmd.AddCommand(dndStatusCmd)

	// Add flags to all subcommands
	for _, cmd := range []*cobra.Command{dndCmd, dndOnCmd, dndOffCmd, dndToggleCmd, dndStatusCmd} {
		cmd.Flags().BoolVarP(&dndOpts.quiet, "quiet", "q", false,
			"Suppress output, return exit code only (0=off, 1=on)")
	}
	for _, cmd := range []*cobra.Command{dndOnCmd, dndToggleCmd} {
		cmd.Flags().StringVar(&dndOpts.until, "for", "",
			"Disable DnD again after this duration (e.g. 45m, 2h, 1d)")
	}

	// Add to root
	rootCmd.AddCommand(dndCmd)
}

func loadState() (*history.SharedState, error) {
	state, err := history.LoadSharedState(config.StatePath())
	if err != nil && !dndOpts.quiet {
		fmt.Fprintf(os.Stderr, "Failed to load state: %v\n", err)
	}
	return state, err
}

func saveState(state *history.SharedState) error {
	err := history.SaveSharedState(config.StatePath(), state)
	if err != nil && !dndOpts.quiet {
		fmt.Fprintf(os.Stderr, "Failed to save state: %v\n", err)
	}
	return err
}

// dndTimer parses the --for flag. Zero means no timer.
func dndTimer() (time.Duration, error) {
	if dndOpts.until == "" {
		return 0, nil
	}
	d, err := history.ParseDuration(dndOpts.until)
	if err != nil {
		return 0, fmt.Errorf("invalid --for duration: %w", err)
	}
	return d, nil
}

func dndOnRun(cmd *cobra.Command, args []string) error {
	timer, err := dndTimer()
	if err != nil {
		return err
	}

	state, err := loadState()
	if err != nil {
		return err
	}

	if timer > 0 {
		state.SetDnDUntil(time.Now().Add(timer), history.DnDTriggerUser, "dnd on", "cli")
	} else {
		state.SetDnD(true, history.DnDTriggerUser, "dnd on", "cli")
	}
	if err := saveState(state); err != nil {
		return err
	}

	if !dndOpts.quiet {
		if timer > 0 {
			fmt.Printf("Do Not Disturb: enabled until %s\n", formatTransitionTime(state.DnDUntil))
		} else {
			fmt.Println("Do Not Disturb: enabled")
		}
	}

	// Exit code 1 means DnD is now on
	os.Exit(1)
	return nil
}

func dndOffRun(cmd *cobra.Command, args []string) error {
	state, err := loadState()
	if err != nil {
		return err
	}

	state.SetDnD(false, history.DnDTriggerUser, "dnd off", "cli")
	if err := saveState(state); err != nil {
		return err
	}

	if !dndOpts.quiet {
		fmt.Println("Do Not Disturb: disabled")
	}

	// Exit code 0 means DnD is now off
	return nil
}

func dndToggleRun(cmd *cobra.Command, args []string) error {
	timer, err := dndTimer()
	if err != nil {
		return err
	}

	state, err := loadState()
	if err != nil {
		return err
	}

	newEnabled := state.ToggleDnD(history.DnDTriggerUser, "dnd toggle", "cli")
	if newEnabled && timer > 0 {
		state.DnDUntil = time.Now().Add(timer).Unix()
	}
	if err := saveState(state); err != nil {
		return err
	}

	if !dndOpts.quiet {
		if newEnabled {
			fmt.Println("Do Not Disturb: enabled")
		} else {
			fmt.Println("Do Not Disturb: disabled")
		}
	}

	// Exit code: 0=off, 1=on
	if newEnabled {
		os.Exit(1)
	}
	return nil
}

func dndStatusRun(cmd *cobra.Command, args []string) error {
	state, err := loadState()
	if err != nil {
		return err
	}

	active := state.DnDActive()
	if !dndOpts.quiet {
		if active {
			fmt.Println("Do Not Disturb: enabled")
			if state.DnDUntil > 0 {
				fmt.Printf("  Until: %s\n", formatTransitionTime(state.DnDUntil))
			}
		} else {
			fmt.Println("Do Not Disturb: disabled")
		}

		if state.DnDLastTransition != nil {
			t := state.DnDLastTransition
			fmt.Printf("  Last change: %s\n", formatTransitionTime(t.Timestamp))
			fmt.Printf("  Trigger: %s\n", t.Trigger)
			if t.Reason != "" {
				fmt.Printf("  Reason: %s\n", t.Reason)
			}
			if t.Source != "" {
				fmt.Printf("  Source: %s\n", t.Source)
			}
		}
	}

	// Exit code: 0=off, 1=on
	if active {
		os.Exit(1)
	}
	return nil
}

// formatTransitionTime formats a unix timestamp as a human-readable relative time.
func formatTransitionTime(timestamp int64) string {
	return humanize.Time(time.Unix(timestamp, 0))
}
