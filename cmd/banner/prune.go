package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakestephens/banner/internal/history"
)

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old notifications from history",
	Long: `Remove old notifications from the persistent history.

Without flags, the [prune] section of the config file decides what goes.

Examples:
  # Remove notifications older than 7 days
  banner prune --older-than 7d

  # Keep only the 100 most recent notifications
  banner prune --keep 100

  # Preview what would be removed (dry run)
  banner prune --older-than 48h --dry-run`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove notifications older than this duration (e.g., 48h, 7d, 1w)")
	pruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent notifications (0=unlimited)")
	pruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without actually removing")
}

func runPrune(cmd *cobra.Command, args []string) error {
	olderThan := pruneOpts.olderThan
	keep := pruneOpts.keep
	if olderThan == "" && keep == 0 {
		olderThan = getConfig().Prune.OlderThan
		keep = getConfig().Prune.Keep
	}
	if olderThan == "" && keep == 0 {
		return fmt.Errorf("specify --older-than or --keep")
	}

	var duration time.Duration
	if olderThan != "" {
		d, err := history.ParseDuration(olderThan)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		duration = d
	}

	if historyStore.Count() == 0 {
		fmt.Println("No notifications in history")
		return nil
	}

	if pruneOpts.dryRun {
		toRemove := pruneCandidates(duration, keep)
		if len(toRemove) == 0 {
			fmt.Println("No notifications to remove")
			return nil
		}
		fmt.Printf("Would remove %d notification(s):\n", len(toRemove))
		for i, r := range toRemove {
			if i >= 10 {
				fmt.Printf("  ... and %d more\n", len(toRemove)-10)
				break
			}
			fmt.Printf("  - [%s] %s (%s)\n", r.App, r.Summary, r.RelativeTime())
		}
		return nil
	}

	removed, err := historyStore.Prune(duration, keep)
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	if removed == 0 {
		fmt.Println("No notifications to remove")
		return nil
	}

	fmt.Printf("Removed %d notification(s)\n", removed)
	return nil
}

// pruneCandidates mirrors Store.Prune so the dry run previews exactly
// what the real pass removes.
func pruneCandidates(olderThan time.Duration, keep int) []history.Record {
	records := historyStore.Filter(history.FilterOptions{
		SortField: "timestamp",
		SortOrder: "desc",
	})

	var toRemove []history.Record
	kept := records
	if olderThan > 0 {
		cutoff := time.Now().Add(-olderThan).Unix()
		kept = kept[:0:0]
		for _, r := range records {
			if r.Timestamp >= cutoff {
				kept = append(kept, r)
			} else {
				toRemove = append(toRemove, r)
			}
		}
	}

	if keep > 0 && len(kept) > keep {
		toRemove = append(toRemove, kept[keep:]...)
	}
	return toRemove
}
