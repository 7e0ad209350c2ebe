package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jakestephens/banner/internal/config"
)

var configOpts struct {
	daemon       bool
	writeDefault bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize configuration",
	Long: `Print the effective configuration as TOML.

The CLI and the daemon read separate files. --daemon switches to the
daemon's config; --write-default writes a starter file to the standard
location so there is something to edit.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configOpts.daemon, "daemon", false,
		"Operate on the daemon config instead of the CLI config")
	configCmd.Flags().BoolVar(&configOpts.writeDefault, "write-default", false,
		"Write the default config file if none exists")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configOpts.daemon {
		return runDaemonConfig()
	}
	return runCLIConfig()
}

func runCLIConfig() error {
	path := globalOpts.configPath
	if path == "" {
		path = config.ConfigPath()
	}

	if configOpts.writeDefault {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	fmt.Printf("# %s\n", path)
	return encodeTOML(getConfig())
}

func runDaemonConfig() error {
	path, err := config.DaemonConfigPath()
	if err != nil {
		return err
	}

	if configOpts.writeDefault {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
		if err := config.SaveDaemonConfig(config.DefaultDaemonConfig()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	daemonCfg, err := config.LoadDaemonConfig()
	if err != nil {
		logger.Warn("failed to load daemon config, showing defaults", "error", err)
		daemonCfg = config.DefaultDaemonConfig()
	}

	fmt.Printf("# %s\n", path)
	return encodeTOML(daemonCfg)
}

func encodeTOML(v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
