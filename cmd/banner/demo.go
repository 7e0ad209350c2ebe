package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakestephens/banner/internal/banner"
	"github.com/jakestephens/banner/internal/config"
	"github.com/jakestephens/banner/internal/surface/term"
)

var demoOpts struct {
	edge string
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the interactive banner showcase in the terminal",
	Long: `Run an interactive showcase that presents banners inside the terminal.

The demo uses the daemon's configuration for timeouts and styling, so it
doubles as a quick way to preview config changes without restarting bannerd.

Keys: n spawns a banner, f spawns at the front, t taps, u swipes away,
l cycles the urgency level, e flips the edge, x dismisses everything,
? shows the full key list, q quits.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoOpts.edge, "edge", "",
		"Screen edge for banners (top, bottom)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	daemonCfg, err := config.LoadDaemonConfig()
	if err != nil {
		logger.Warn("failed to load daemon config, using defaults", "error", err)
		daemonCfg = config.DefaultDaemonConfig()
	}

	edge := demoOpts.edge
	if edge == "" {
		edge = getConfig().Demo.Edge
	}
	if edge != "" && !banner.Edge(edge).Valid() {
		return fmt.Errorf("invalid edge: %s (use top or bottom)", edge)
	}

	return term.RunDemo(term.DemoOptions{
		Config:   daemonCfg,
		Logger:   logger,
		Edge:     banner.Edge(edge),
		ShowHelp: getConfig().Demo.ShowHelp,
	})
}
