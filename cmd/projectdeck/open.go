package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/projectdeck/internal/mutation"
)

func init() {
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(revealCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Open a project with the configured command",
	Long: `Open a project folder with open.command from the config (default "code").

Examples:
  projectdeck open Xq3v9Tf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLaunch(cmd, args[0], deck.coordinator.Open)
	},
}

var revealCmd = &cobra.Command{
	Use:   "reveal <id>",
	Short: "Show a project folder in the file browser",
	Long: `Show a project folder in the platform file browser.

Examples:
  projectdeck reveal Xq3v9Tf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLaunch(cmd, args[0], deck.coordinator.Reveal)
	},
}

// runLaunch runs open or reveal. Launch failures were already reported by
// the coordinator; they still fail the command.
func runLaunch(cmd *cobra.Command, id string, launch func(context.Context, string) (mutation.Outcome, error)) error {
	outcome, err := launch(commandContext(cmd), id)
	if err != nil {
		return err
	}
	if outcome == mutation.OutcomeNotFound {
		reportNotFound(cmd, id)
	}
	return nil
}
