package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoutlint/scout/internal/adapters/outbound/tui"
)

func newSectionsCmd() *cobra.Command {
	var (
		flags      pipelineFlags
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Show the changed-line sections and the roots they touch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := flags.build(cmd)
			if err != nil {
				return err
			}

			plan, err := p.Scout.Plan(p.ProjectPath, p.Config.Target)
			if err != nil {
				return fmt.Errorf("computing sections: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderSections(plan.Target, plan.Sections, plan.Workspace, plan.Selected))
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
