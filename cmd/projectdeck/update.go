package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/projectdeck/internal/mutation"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
)

var updatePathLookup string

// patchFlag is a field that can be set with --<name> and, when nullable,
// reset with --clear-<name>.
type patchFlag struct {
	name      string
	usage     string
	clearable bool
	field     func(*project.Patch) *project.Field
}

var patchFlags = []patchFlag{
	{"name", "New display name", false, func(p *project.Patch) *project.Field { return &p.Name }},
	{"path", "New absolute folder path", false, func(p *project.Patch) *project.Field { return &p.Path }},
	{"color", "Hex color, e.g. #ff8800", true, func(p *project.Patch) *project.Field { return &p.Color }},
	{"production-url", "Production URL", true, func(p *project.Patch) *project.Field { return &p.ProductionURL }},
	{"staging-url", "Staging URL", true, func(p *project.Patch) *project.Field { return &p.StagingURL }},
	{"dev-url", "Development URL", true, func(p *project.Patch) *project.Field { return &p.DevURL }},
	{"management-url", "Management console URL", true, func(p *project.Patch) *project.Field { return &p.ManagementURL }},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updatePathLookup, "path-lookup", "", "Find the project by its current path instead of id")
	bindPatchFlags(updateCmd)
}

// bindPatchFlags registers the set/clear flags on cmd.
func bindPatchFlags(cmd *cobra.Command) {
	for _, f := range patchFlags {
		cmd.Flags().String(f.name, "", f.usage)
		if f.clearable {
			cmd.Flags().Bool("clear-"+f.name, false, "Reset "+f.name+" to the default")
		}
	}
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a project",
	Long: `Change fields of a project. Only the flags you pass are applied; values
equal to the stored ones are not written.

Examples:
  # Set a color and a production link
  projectdeck update Xq3v9Tf --color "#ff8800" --production-url https://app.example.com

  # Reset the color to the theme default
  projectdeck update Xq3v9Tf --clear-color

  # Address an entry by path (records written before ids existed)
  projectdeck update --path-lookup ~/src/api --name "Billing API"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	req := mutation.UpdateRequest{}
	if len(args) == 1 {
		req.ID = args[0]
	}
	if updatePathLookup != "" {
		p, err := absPath(updatePathLookup)
		if err != nil {
			return err
		}
		req.Path = p
	}
	if req.ID == "" && req.Path == "" {
		return fmt.Errorf("an id or --path-lookup is required")
	}

	patch, err := buildPatch(cmd)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update: pass at least one field flag")
	}
	req.Patch = patch

	res, err := deck.coordinator.Update(ctx, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch res.Outcome {
	case mutation.OutcomeNotFound:
		reportNotFound(cmd, firstNonEmpty(req.ID, req.Path))
	case mutation.OutcomeUnchanged:
		fmt.Fprintf(out, "%s is unchanged\n", res.Project.Name)
	case mutation.OutcomeApplied:
		fmt.Fprintf(out, "Updated %s: %s\n", res.Project.Name, strings.Join(res.Changed, ", "))
	}
	return nil
}

// buildPatch turns the changed flags of cmd into a Patch. Setting and
// clearing the same field is an error.
func buildPatch(cmd *cobra.Command) (project.Patch, error) {
	var patch project.Patch
	flags := cmd.Flags()

	for _, f := range patchFlags {
		set := flags.Changed(f.name)
		reset := f.clearable && flags.Changed("clear-"+f.name)
		if reset {
			reset, _ = flags.GetBool("clear-" + f.name)
		}

		switch {
		case set && reset:
			return project.Patch{}, fmt.Errorf("--%s and --clear-%s are mutually exclusive", f.name, f.name)
		case set:
			v, _ := flags.GetString(f.name)
			if f.name == "path" {
				abs, err := absPath(v)
				if err != nil {
					return project.Patch{}, err
				}
				v = abs
			}
			*f.field(&patch) = project.Set(v)
		case reset:
			*f.field(&patch) = project.Clear()
		}
	}
	return patch, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
