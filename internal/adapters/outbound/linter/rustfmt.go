package linter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scoutlint/scout/internal/domain"
)

type fmtFile struct {
	Name       string        `json:"name"`
	Mismatches []fmtMismatch `json:"mismatches"`
}

type fmtMismatch struct {
	OriginalBeginLine int    `json:"original_begin_line"`
	OriginalEndLine   int    `json:"original_end_line"`
	Original          string `json:"original"`
	Expected          string `json:"expected"`
}

// fileLines is one entry of rustfmt's --file-lines argument.
type fileLines struct {
	File  string `json:"file"`
	Range [2]int `json:"range"`
}

// Rustfmt reports formatting mismatches through `cargo +nightly fmt --emit
// json` and fixes them on the given lines only.
type Rustfmt struct {
	runner Runner
}

func NewRustfmt(runner Runner) *Rustfmt { return &Rustfmt{runner: runner} }

func (r *Rustfmt) Name() string { return domain.ToolRustfmt }

func (r *Rustfmt) Command(projectPath string, root domain.ScanRoot) Command {
	return Command{
		Dir:  rootDir(projectPath, root),
		Name: "cargo",
		Args: []string{"+nightly", "fmt", "--", "--emit", "json"},
	}
}

func (r *Rustfmt) Lints(projectPath string, root domain.ScanRoot) ([]domain.Finding, error) {
	cmd := r.Command(projectPath, root)
	res, err := run(r.runner, r.Name(), cmd)
	if err != nil {
		return nil, err
	}
	findings, err := ParseRustfmt(res.Stdout, projectPath, root.Path)
	if err != nil {
		return nil, &domain.ToolError{Tool: r.Name(), Dir: cmd.Dir, Err: err}
	}
	return findings, nil
}

// Heal reformats only the line ranges of the given findings.
func (r *Rustfmt) Heal(projectPath string, findings []domain.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	arg, err := FileLines(findings)
	if err != nil {
		return err
	}
	_, err = run(r.runner, r.Name(), r.HealCommand(projectPath, arg))
	return err
}

func (r *Rustfmt) HealCommand(projectPath, fileLinesJSON string) Command {
	return Command{
		Dir:  projectPath,
		Name: "cargo",
		Args: []string{"+nightly", "fmt", "--", "--unstable-features", "--file-lines", fileLinesJSON, "--skip-children"},
	}
}

// FileLines renders findings as the JSON value of rustfmt's --file-lines.
func FileLines(findings []domain.Finding) (string, error) {
	entries := make([]fileLines, 0, len(findings))
	for _, f := range findings {
		entries = append(entries, fileLines{File: f.Path, Range: [2]int{f.LineStart, f.LineEnd}})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encoding file lines: %w", err)
	}
	return string(data), nil
}

// ParseRustfmt maps rustfmt's JSON emit mode to findings, one per mismatch.
// Unlike the line-oriented tools, the report is a single document, so a
// report that cannot be decoded is an error.
func ParseRustfmt(out []byte, projectPath, base string) ([]domain.Finding, error) {
	findings := []domain.Finding{}
	if len(strings.TrimSpace(string(out))) == 0 {
		return findings, nil
	}

	var files []fmtFile
	if err := json.Unmarshal(out, &files); err != nil {
		return nil, fmt.Errorf("decoding rustfmt report: %w", err)
	}

	for _, f := range files {
		path := relPath(projectPath, base, f.Name)
		for _, m := range f.Mismatches {
			if m.OriginalBeginLine <= 0 || m.OriginalEndLine < m.OriginalBeginLine {
				continue
			}
			findings = append(findings, domain.Finding{
				Tool:      domain.ToolRustfmt,
				Severity:  domain.SeverityWarning,
				Message:   MismatchMessage(path, m.OriginalBeginLine, m.OriginalEndLine, m.Original, m.Expected),
				Path:      path,
				LineStart: m.OriginalBeginLine,
				LineEnd:   m.OriginalEndLine,
			})
		}
	}
	return findings, nil
}

// MismatchMessage renders a mismatch as a small diff.
func MismatchMessage(path string, begin, end int, original, expected string) string {
	if begin == end {
		return fmt.Sprintf("Diff in %s at line %d:\n-%s\n+%s\n", path, begin, original, expected)
	}
	return fmt.Sprintf("Diff in %s between lines %d and %d:\n%s\n%s\n",
		path, begin, end, prefixLines("-", original), prefixLines("+", expected))
}

func prefixLines(prefix, text string) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
