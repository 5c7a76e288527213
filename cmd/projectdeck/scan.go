package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/projectdeck/internal/host"
	"github.com/fyrsmithlabs/projectdeck/internal/mutation"
)

var (
	scanDepth int
	scanAll   bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntVar(&scanDepth, "depth", 0, "Maximum folder depth (default scan.max_depth)")
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "Import every new repository without asking")
}

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Import repositories found below a folder",
	Long: `Find git, mercurial and subversion repositories below a folder and add the
ones you pick. Folders already in the deck are skipped.

Examples:
  # Pick from the repositories under ~/src
  projectdeck scan ~/src

  # Import everything two levels deep
  projectdeck scan ~/src --depth 2 --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

// selectAll answers multi-select dialogs with every choice.
type selectAll struct {
	host.Prompter
}

func (selectAll) MultiSelect(_ context.Context, _ string, choices []host.Choice) ([]int, error) {
	picked := make([]int, len(choices))
	for i := range choices {
		picked[i] = i
	}
	return picked, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	req := mutation.ScanRequest{MaxDepth: scanDepth}
	if len(args) == 1 {
		root, err := absPath(args[0])
		if err != nil {
			return err
		}
		req.Root = root
	}

	coord := deck.coordinator
	if scanAll {
		var err error
		coord, err = deck.newCoordinator(selectAll{deck.terminal}, deck.terminal, nil)
		if err != nil {
			return err
		}
	}

	res, err := coord.ScanAndImport(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch res.Outcome {
	case mutation.OutcomeApplied:
		for _, p := range res.Added {
			fmt.Fprintf(out, "Added %s (%s) %s\n", p.Name, p.ID, p.Path)
		}
	case mutation.OutcomeCancelled:
		fmt.Fprintln(out, "Cancelled")
	}
	return nil
}
