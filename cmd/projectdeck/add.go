package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/projectdeck/internal/config"
	"github.com/fyrsmithlabs/projectdeck/internal/mutation"
)

var addName string

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addName, "name", "", "Display name (prompted, defaults to the folder name)")
}

var addCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Add a project folder to the deck",
	Long: `Add a project folder to the deck.

Without a path you are asked for one. Without --name you are asked for a
name; an empty answer uses the folder name. A folder already in the deck is
rejected.

Examples:
  # Add the current directory
  projectdeck add .

  # Add with a name
  projectdeck add ~/src/api --name "Billing API"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	req := mutation.AddRequest{Name: addName}
	if len(args) == 1 {
		p, err := absPath(args[0])
		if err != nil {
			return err
		}
		req.Path = p
	}

	res, err := deck.coordinator.Add(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch res.Outcome {
	case mutation.OutcomeApplied:
		fmt.Fprintf(out, "Added %s (%s)\n", res.Project.Name, res.Project.ID)
	case mutation.OutcomeCancelled:
		fmt.Fprintln(out, "Cancelled")
	}
	return nil
}

// absPath expands ~ and makes p absolute against the working directory.
func absPath(p string) (string, error) {
	expanded, err := config.ExpandHome(p)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", p, err)
	}
	return abs, nil
}
