// Package main provides the CLI entrypoint for banner.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakestephens/banner/internal/config"
	"github.com/jakestephens/banner/internal/history"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		historyFile string
		configPath  string
	}
	logger *slog.Logger

	// historyStore is the global store instance
	historyStore  *history.Store
	tombstoneFile *history.TombstoneFile
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "banner",
	Short: "Send and browse on-screen notification banners",
	Long: `banner is the command-line companion to bannerd, the banner
presentation daemon.

It sends notifications over D-Bus, queries the banner history journal,
manages Do Not Disturb, and carries a terminal demo of the presentation
queue for trying things out without a compositor.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		setupLogger()

		// Load configuration
		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Initialize persistence (always enabled)
		if err := config.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		// Use custom history file path if specified, otherwise use default
		historyPath := globalOpts.historyFile
		if historyPath == "" {
			historyPath = config.HistoryPath()
		}

		journal, err := history.NewJSONLJournal(historyPath)
		if err != nil {
			return fmt.Errorf("failed to open history journal: %w", err)
		}

		historyStore = history.NewStore(journal)

		// Load tombstones
		tombstoneFile = history.NewTombstoneFile(config.TombstonePath())
		tombstones, err := tombstoneFile.Load()
		if err != nil {
			logger.Warn("failed to load tombstones", "error", err)
		} else if len(tombstones) > 0 {
			historyStore.LoadTombstones(tombstones)
		}

		if err := historyStore.Hydrate(); err != nil {
			logger.Warn("failed to hydrate store from disk", "error", err)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Save tombstones
		if tombstoneFile != nil && historyStore != nil {
			tombstones := historyStore.Tombstones()
			if len(tombstones) > 0 {
				if err := tombstoneFile.Save(tombstones); err != nil {
					logger.Warn("failed to save tombstones", "error", err)
				}
			}
		}

		// Cleanup store
		if historyStore != nil {
			return historyStore.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.historyFile, "history-file", "",
		"Path to history file (default: ~/.local/share/banner/history.jsonl)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/banner/config.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// getStore returns the global store instance.
func getStore() *history.Store {
	return historyStore
}

// getConfig returns the global config instance.
func getConfig() *config.Config {
	return cfg
}
