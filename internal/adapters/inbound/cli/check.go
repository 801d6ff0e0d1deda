package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoutlint/scout/internal/adapters/outbound/cache"
	"github.com/scoutlint/scout/internal/adapters/outbound/history"
	"github.com/scoutlint/scout/internal/adapters/outbound/report"
	"github.com/scoutlint/scout/internal/adapters/outbound/tui"
	"github.com/scoutlint/scout/internal/domain"
)

func newCheckCmd() *cobra.Command {
	var (
		flags        pipelineFlags
		format       string
		withoutError bool
		noHistory    bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Lint the touched roots and report findings on changed lines",
		Long: "Diff the working tree against the target branch, run the analysis tool on every " +
			"workspace root the diff touches, and keep only the findings that overlap added lines.\n\n" +
			"Exits non-zero when findings remain, unless --without-error is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			p, logger, err := flags.build(cmd)
			if err != nil {
				return err
			}

			r, err := p.Scout.Run(p.ProjectPath, p.Config.Target)
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}

			// Best-effort bookkeeping; a read-only checkout must not fail the run.
			if err := cache.New().Save(p.ProjectPath, r); err != nil {
				logger.Warn("caching report", "error", err)
			}
			if !noHistory {
				if err := history.New().Save(p.ProjectPath, history.EntryFor(r)); err != nil {
					logger.Warn("saving history", "error", err)
				}
			}

			switch outFormat {
			case report.FormatJSON:
				err = report.WriteJSON(cmd.OutOrStdout(), r)
			case report.FormatSARIF:
				err = report.WriteSARIF(cmd.OutOrStdout(), r)
			default:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(r))
			}
			if err != nil {
				return err
			}

			if r.Dirty() && !withoutError {
				return domain.ErrDirtyResult
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&format, "format", report.FormatText, "Output format (text, json, sarif)")
	cmd.Flags().BoolVarP(&withoutError, "without-error", "w", false, "Exit 0 even when findings remain")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in .scout/history")

	return cmd
}
