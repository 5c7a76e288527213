package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/projectdeck/internal/mutation"
)

var deleteYes bool

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a project from the deck",
	Long: `Remove a project from the deck after confirmation. The folder itself is
not touched.

Examples:
  projectdeck delete Xq3v9Tf
  projectdeck delete Xq3v9Tf --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	deck.terminal.AssumeYes = deleteYes

	outcome, err := deck.coordinator.Delete(ctx, args[0])
	if err != nil {
		return err
	}

	switch outcome {
	case mutation.OutcomeNotFound:
		reportNotFound(cmd, args[0])
	case mutation.OutcomeCancelled:
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
	case mutation.OutcomeDeleted:
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	}
	return nil
}
