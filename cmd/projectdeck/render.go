package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var renderOut string

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(changelogCmd)
	renderCmd.Flags().StringVar(&renderOut, "out", "", "Write the document to a file instead of stdout")
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the deck as an HTML panel document",
	Long: `Render the deck as a self-contained HTML document.

Examples:
  projectdeck render --out ~/deck.html`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Print the changelog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := deck.renderer.Assets().Changelog()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	},
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, err := deck.renderer.Render(commandContext(cmd))
	if err != nil {
		return err
	}
	if renderOut == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
		return err
	}

	p, err := absPath(renderOut)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
	return nil
}
