package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoutlint/scout/internal/adapters/outbound/cache"
	"github.com/scoutlint/scout/internal/domain"
)

func newFixCmd() *cobra.Command {
	var (
		flags  pipelineFlags
		cached bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Auto-fix the findings on changed lines",
		Long: "Run the pipeline (or reuse the last report with --cached) and hand the remaining " +
			"findings to the language's fixer: rustfmt on the affected line ranges, gofmt on the affected files.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, logger, err := flags.build(cmd)
			if err != nil {
				return err
			}

			store := cache.New()
			var r *domain.Report
			if cached {
				r, err = store.Load(p.ProjectPath)
				if err != nil {
					return fmt.Errorf("loading cached report: %w", err)
				}
				if r == nil {
					return fmt.Errorf("no cached report; run scout check first")
				}
				logger.Debug("using cached report", "findings", len(r.Findings), "timestamp", r.Timestamp)
			} else {
				r, err = p.Scout.Run(p.ProjectPath, p.Config.Target)
				if err != nil {
					return fmt.Errorf("fix failed: %w", err)
				}
			}

			if dryRun {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r.Findings)
			}

			heal, err := p.Healer()
			if err != nil {
				return err
			}
			n, err := heal.Apply(p.ProjectPath, r.Findings)
			if err != nil {
				return err
			}
			// Line numbers in the cached report are stale once files change.
			if n > 0 {
				if err := store.Invalidate(p.ProjectPath); err != nil {
					logger.Warn("invalidating cached report", "error", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Fixed %d findings\n", n)
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&cached, "cached", false, "Fix the findings of the last check instead of re-running the tool")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the findings that would be fixed")

	return cmd
}
