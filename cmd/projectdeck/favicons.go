package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(faviconsCmd)
}

var faviconsCmd = &cobra.Command{
	Use:       "favicons [on|off]",
	Short:     "Show or set the favicon preference",
	ValidArgs: []string{"on", "off"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE:      runFavicons,
}

func runFavicons(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		if deck.store.FetchFavicons(ctx) {
			fmt.Fprintln(out, "on")
		} else {
			fmt.Fprintln(out, "off")
		}
		return nil
	}

	if _, err := deck.coordinator.SetFetchFavicons(ctx, args[0] == "on"); err != nil {
		return err
	}
	fmt.Fprintf(out, "Favicons %s\n", args[0])
	return nil
}
