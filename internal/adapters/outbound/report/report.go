// Package report writes a filtered run in machine-readable formats.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scoutlint/scout/internal/domain"
)

const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// ValidFormats enumerates the output formats of the check command.
var ValidFormats = []string{FormatText, FormatJSON, FormatSARIF}

const informationURI = "https://github.com/scoutlint/scout"

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	if f == "" {
		return FormatText, nil
	}
	for _, v := range ValidFormats {
		if f == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (valid: %s)", s, strings.Join(ValidFormats, ", "))
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteSARIF writes the findings of r as a SARIF 2.1.0 log with a single
// run. Findings without a code are reported under the tool's name.
func WriteSARIF(w io.Writer, r *domain.Report) error {
	log, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating SARIF report: %w", err)
	}

	tool := r.Tool
	if tool == "" {
		tool = "scout"
	}
	run := sarif.NewRunWithInformationURI(tool, informationURI)

	for _, f := range r.Findings {
		ruleID := f.Code
		if ruleID == "" {
			ruleID = tool
		}
		rule := run.AddRule(ruleID)

		region := sarif.NewRegion().WithStartLine(f.LineStart)
		if f.LineEnd > f.LineStart {
			region = region.WithEndLine(f.LineEnd)
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Path)).
				WithRegion(region),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(sarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	log.AddRun(run)

	return log.PrettyWrite(w)
}

func sarifLevel(severity string) string {
	switch severity {
	case domain.SeverityError:
		return "error"
	case domain.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
