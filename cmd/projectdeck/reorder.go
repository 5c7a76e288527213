package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/projectdeck/internal/mutation"
)

func init() {
	rootCmd.AddCommand(reorderCmd)
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <id>...",
	Short: "Arrange the deck in a new order",
	Long: `Arrange the deck in the given order. Every project id must appear
exactly once.

Examples:
  projectdeck reorder c3 a1 b2
  projectdeck reorder $(projectdeck list -o json | jq -r 'reverse | .[].id')`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReorder,
}

func runReorder(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	outcome, err := deck.coordinator.Reorder(ctx, args)
	if err != nil {
		return err
	}
	if outcome == mutation.OutcomeUnchanged {
		fmt.Fprintln(cmd.OutOrStdout(), "Order unchanged")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Reordered")
	return nil
}
