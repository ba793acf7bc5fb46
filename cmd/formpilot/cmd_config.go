package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"formpilot/internal/config"
)

// configCmd manages the user configuration file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage formpilot configuration",
	Long: `View and change settings stored in ~/.formpilot/config.yaml.

Available subcommands:
  show - Print the effective configuration
  set  - Change a setting

Settings:
  server_url             Backend origin (e.g. http://localhost:8000)
  poll_interval_seconds  Dashboard refresh period
  theme                  TUI color scheme (light or dark)`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Configuration (env overrides applied)")
	fmt.Printf("  server_url:            %s\n", cfg.ServerURL)
	fmt.Printf("  poll_interval_seconds: %d\n", cfg.PollIntervalSeconds)
	fmt.Printf("  theme:                 %s\n", cfg.Theme)
	fmt.Printf("  debug:                 %v\n", cfg.Debug)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	switch key {
	case "server_url":
		cfg.ServerURL = value
	case "poll_interval_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("poll_interval_seconds must be an integer, got %q", value)
		}
		cfg.PollIntervalSeconds = n
	case "theme":
		if value != "light" && value != "dark" {
			return fmt.Errorf("theme must be 'light' or 'dark', got %q", value)
		}
		cfg.Theme = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✓ %s = %s\n", key, value)
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
