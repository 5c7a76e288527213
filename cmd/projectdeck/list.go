package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

var listOutput string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format: table, json, yaml, toml")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the projects in the deck",
	Long: `List the projects in deck order.

Examples:
  # Human-readable table
  projectdeck list

  # Machine-readable output
  projectdeck list -o json
  projectdeck list -o yaml`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	coll, err := deck.store.Current(ctx)
	if err != nil {
		return err
	}
	return writeList(cmd.OutOrStdout(), coll, listOutput)
}

// listEntry is the flattened form used by the yaml and toml encoders, which
// know nothing about null fields.
type listEntry struct {
	ID            string `yaml:"id" toml:"id"`
	Name          string `yaml:"name" toml:"name"`
	Path          string `yaml:"path" toml:"path"`
	Color         string `yaml:"color,omitempty" toml:"color,omitempty"`
	ProductionURL string `yaml:"productionUrl,omitempty" toml:"productionUrl,omitempty"`
	StagingURL    string `yaml:"stagingUrl,omitempty" toml:"stagingUrl,omitempty"`
	DevURL        string `yaml:"devUrl,omitempty" toml:"devUrl,omitempty"`
	ManagementURL string `yaml:"managementUrl,omitempty" toml:"managementUrl,omitempty"`
}

func toEntries(coll project.Collection) []listEntry {
	out := make([]listEntry, 0, len(coll))
	for _, p := range coll {
		out = append(out, listEntry{
			ID:            p.ID,
			Name:          p.Name,
			Path:          p.Path,
			Color:         p.Color.Or(""),
			ProductionURL: p.ProductionURL.Or(""),
			StagingURL:    p.StagingURL.Or(""),
			DevURL:        p.DevURL.Or(""),
			ManagementURL: p.ManagementURL.Or(""),
		})
	}
	return out
}

// writeList renders coll in the given format.
func writeList(w io.Writer, coll project.Collection, format string) error {
	if coll == nil {
		coll = project.Collection{}
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(coll, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal projects: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toEntries(coll)); err != nil {
			return fmt.Errorf("failed to encode projects: %w", err)
		}
		return enc.Close()

	case "toml":
		doc := struct {
			Projects []listEntry `toml:"projects"`
		}{Projects: toEntries(coll)}
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode projects: %w", err)
		}
		return nil

	case "table", "":
		if len(coll) == 0 {
			_, err := fmt.Fprintln(w, "No projects in the deck.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPATH\tCOLOR")
		for _, p := range coll {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Path, p.Color.Or("-"))
		}
		return tw.Flush()
	}

	return fmt.Errorf("unknown output format %q (want table, json, yaml or toml)", format)
}
