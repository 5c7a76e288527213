// Package main implements the projectdeck CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// global flags
	configPath   string
	settingsPath string
	logLevel     string

	// version information
	version = "dev"

	// deck is built by the root PersistentPreRunE for every command.
	deck *app
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "projectdeck",
	Short: "Keep an ordered deck of local project folders",
	Long: `projectdeck keeps a personal, ordered list of project folders with optional
color and environment links, and shows it in a live terminal panel.

The deck lives in a JSON settings document (by default
~/.config/projectdeck/settings.json). Hand edits to that file are picked up
by a running panel.

Examples:
  # Add the current directory
  projectdeck add .

  # Import every repository below ~/src
  projectdeck scan ~/src --all

  # Watch the deck
  projectdeck panel`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A failed previous run skips PersistentPostRunE.
		if deck != nil {
			deck.Close()
			deck = nil
		}
		a, err := newApp(cmd, appOptions{
			configPath:   configPath,
			settingsPath: settingsPath,
			logLevel:     logLevel,
			logToFile:    cmd == panelCmd,
		})
		if err != nil {
			return err
		}
		deck = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if deck != nil {
			deck.Close()
			deck = nil
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/projectdeck/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings document (overrides settings.path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
}
