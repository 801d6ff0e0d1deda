package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scoutlint/scout/internal/adapters/outbound/report"
	"github.com/scoutlint/scout/internal/adapters/outbound/tui"
	"github.com/scoutlint/scout/internal/domain"
)

func newFilterCmd() *cobra.Command {
	var (
		flags        pipelineFlags
		input        string
		format       string
		withoutError bool
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter findings produced by another tool down to changed lines",
		Long: "Read a JSON array of findings ({path, line_start, line_end, message, ...}) from a file " +
			"or stdin and print the ones that overlap lines added against the target branch.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			findings, err := readFindings(cmd, input)
			if err != nil {
				return err
			}

			p, _, err := flags.build(cmd)
			if err != nil {
				return err
			}

			kept, err := p.Scout.Filter(p.ProjectPath, p.Config.Target, findings)
			if err != nil {
				return fmt.Errorf("filter failed: %w", err)
			}

			r := &domain.Report{Target: p.Config.Target, Findings: kept}
			switch outFormat {
			case report.FormatText:
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(r))
			case report.FormatSARIF:
				err = report.WriteSARIF(cmd.OutOrStdout(), r)
			default:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				err = enc.Encode(kept)
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
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Findings file, or - for stdin")
	cmd.Flags().StringVar(&format, "format", report.FormatJSON, "Output format (json, text, sarif)")
	cmd.Flags().BoolVarP(&withoutError, "without-error", "w", false, "Exit 0 even when findings remain")

	return cmd
}

func readFindings(cmd *cobra.Command, input string) ([]domain.Finding, error) {
	var r io.Reader = cmd.InOrStdin()
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("opening findings: %w", err)
		}
		defer f.Close()
		r = f
	}

	var findings []domain.Finding
	if err := json.NewDecoder(r).Decode(&findings); err != nil {
		return nil, fmt.Errorf("decoding findings: %w", err)
	}
	for i, f := range findings {
		if f.Path == "" || f.LineStart <= 0 || f.LineEnd < f.LineStart {
			return nil, fmt.Errorf("finding %d: needs a path and a valid line range", i)
		}
	}
	return findings, nil
}
