package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakestephens/banner/internal/adapter/input"
)

var importOpts struct {
	source string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import notifications into history",
	Long: `Import notifications from an external source into the history journal.

Sources:
  dunst   dunstctl history (auto-detected when dunstctl is on PATH)
  stdin   JSON records, one object per line or a single array

Duplicates and deleted notifications are skipped, so importing is safe
to repeat.

Examples:
  # Pull whatever dunst has collected
  banner import

  # One-off records from a script
  echo '{"appname":"backup","summary":"done"}' | banner import --source stdin`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importOpts.source, "source", "",
		"Notification source (dunst, stdin; auto-detects if empty)")
}

func runImport(cmd *cobra.Command, args []string) error {
	adapter, err := input.NewAdapter(importOpts.source)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := adapter.Import(ctx)
	if err != nil {
		return fmt.Errorf("import from %s failed: %w", adapter.Name(), err)
	}
	if len(records) == 0 {
		fmt.Println("Nothing to import")
		return nil
	}

	before := historyStore.Count()
	if err := historyStore.AddBatch(records); err != nil {
		return fmt.Errorf("failed to store records: %w", err)
	}
	added := historyStore.Count() - before

	fmt.Printf("Imported %d notification(s) from %s (%d new)\n",
		len(records), adapter.Name(), added)
	return nil
}
