package linter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"github.com/scoutlint/scout/internal/domain"
)

type golangciReport struct {
	Issues []golangciIssue `json:"Issues"`
}

type golangciIssue struct {
	FromLinter string `json:"FromLinter"`
	Text       string `json:"Text"`
	Severity   string `json:"Severity"`
	Pos        struct {
		Filename string `json:"Filename"`
		Line     int    `json:"Line"`
	} `json:"Pos"`
	LineRange *struct {
		From int `json:"From"`
		To   int `json:"To"`
	} `json:"LineRange"`
}

// GolangciLint runs `golangci-lint run` with JSON output.
type GolangciLint struct {
	runner Runner
	tags   []string
}

func NewGolangciLint(runner Runner, buildTags []string) *GolangciLint {
	return &GolangciLint{runner: runner, tags: buildTags}
}

func (g *GolangciLint) Name() string { return domain.ToolGolangciLint }

func (g *GolangciLint) Command(projectPath string, root domain.ScanRoot) Command {
	args := []string{
		"run",
		"--output.json.path=stdout",
		"--output.text.path=stderr",
		"--issues-exit-code=0",
		"--show-stats=false",
		"--path-mode=abs",
	}
	if len(g.tags) > 0 {
		args = append(args, "--build-tags="+strings.Join(g.tags, ","))
	}
	args = append(args, "./...")
	return Command{Dir: rootDir(projectPath, root), Name: "golangci-lint", Args: args}
}

func (g *GolangciLint) Lints(projectPath string, root domain.ScanRoot) ([]domain.Finding, error) {
	res, err := run(g.runner, g.Name(), g.Command(projectPath, root))
	if err != nil {
		return nil, err
	}
	return ParseGolangci(res.Stdout, projectPath, root.Path), nil
}

// ParseGolangci maps a golangci-lint JSON report to findings. Issues without
// a file or line are dropped.
func ParseGolangci(out []byte, projectPath, base string) []domain.Finding {
	var report golangciReport
	if !decodeObject(out, &report) {
		return []domain.Finding{}
	}

	findings := make([]domain.Finding, 0, len(report.Issues))
	for _, is := range report.Issues {
		if is.Pos.Filename == "" || is.Pos.Line <= 0 {
			continue
		}
		start, end := is.Pos.Line, is.Pos.Line
		if is.LineRange != nil && is.LineRange.From > 0 && is.LineRange.To >= is.LineRange.From {
			start, end = is.LineRange.From, is.LineRange.To
		}
		findings = append(findings, domain.Finding{
			Tool:      domain.ToolGolangciLint,
			Code:      is.FromLinter,
			Severity:  severity(is.Severity, domain.SeverityWarning),
			Message:   is.Text,
			Path:      relPath(projectPath, base, is.Pos.Filename),
			LineStart: start,
			LineEnd:   end,
		})
	}
	return findings
}

// decodeObject unmarshals out into v. When out holds other text around the
// report, the first line that decodes as a JSON object is used.
func decodeObject(out []byte, v any) bool {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return false
	}
	if json.Unmarshal(trimmed, v) == nil {
		return true
	}
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		if json.Unmarshal(line, v) == nil {
			return true
		}
	}
	return false
}

func severity(s, fallback string) string {
	switch strings.ToLower(s) {
	case "error", "err":
		return domain.SeverityError
	case "warning", "warn":
		return domain.SeverityWarning
	case "note", "info", "help":
		return domain.SeverityInfo
	}
	return fallback
}
