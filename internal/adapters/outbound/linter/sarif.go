package linter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scoutlint/scout/internal/domain"
)

// SARIFCommand runs any command that prints a SARIF 2.1.0 log on stdout,
// such as `semgrep scan --sarif` or `gosec -fmt sarif ./...`.
type SARIFCommand struct {
	runner  Runner
	name    string
	command []string
}

func NewSARIFCommand(runner Runner, cfg domain.SARIFCommand) *SARIFCommand {
	name := cfg.Name
	if name == "" && len(cfg.Command) > 0 {
		name = cfg.Command[0]
	}
	return &SARIFCommand{runner: runner, name: name, command: cfg.Command}
}

func (s *SARIFCommand) Name() string { return s.name }

func (s *SARIFCommand) Command(projectPath string, root domain.ScanRoot) Command {
	cmd := Command{Dir: rootDir(projectPath, root)}
	if len(s.command) > 0 {
		cmd.Name = s.command[0]
		cmd.Args = s.command[1:]
	}
	return cmd
}

func (s *SARIFCommand) Lints(projectPath string, root domain.ScanRoot) ([]domain.Finding, error) {
	cmd := s.Command(projectPath, root)
	if cmd.Name == "" {
		return nil, &domain.ToolError{Tool: domain.ToolSARIF, Dir: cmd.Dir, Err: fmt.Errorf("no command configured")}
	}
	res, err := run(s.runner, s.name, cmd)
	if err != nil {
		return nil, err
	}
	findings, err := ParseSARIF(res.Stdout, projectPath, root.Path)
	if err != nil {
		return nil, &domain.ToolError{Tool: s.name, Dir: cmd.Dir, Err: err}
	}
	return findings, nil
}

// ParseSARIF maps every located result of every run to a finding. Results
// without a physical location or start line are dropped.
func ParseSARIF(out []byte, projectPath, base string) ([]domain.Finding, error) {
	var report sarif.Report
	if err := json.Unmarshal(out, &report); err != nil {
		return nil, fmt.Errorf("decoding SARIF log: %w", err)
	}

	findings := []domain.Finding{}
	for _, run := range report.Runs {
		if run == nil {
			continue
		}
		tool := domain.ToolSARIF
		if run.Tool.Driver != nil && run.Tool.Driver.Name != "" {
			tool = run.Tool.Driver.Name
		}
		for _, res := range run.Results {
			if res == nil {
				continue
			}
			f, ok := sarifFinding(res, projectPath, base)
			if !ok {
				continue
			}
			f.Tool = tool
			findings = append(findings, f)
		}
	}
	return findings, nil
}

func sarifFinding(res *sarif.Result, projectPath, base string) (domain.Finding, bool) {
	if len(res.Locations) == 0 || res.Locations[0] == nil {
		return domain.Finding{}, false
	}
	phys := res.Locations[0].PhysicalLocation
	if phys == nil || phys.ArtifactLocation == nil || phys.ArtifactLocation.URI == nil ||
		phys.Region == nil || phys.Region.StartLine == nil || *phys.Region.StartLine <= 0 {
		return domain.Finding{}, false
	}

	start := *phys.Region.StartLine
	end := start
	if phys.Region.EndLine != nil && *phys.Region.EndLine >= start {
		end = *phys.Region.EndLine
	}

	f := domain.Finding{
		Severity:  severity(deref(res.Level), domain.SeverityWarning),
		Message:   deref(res.Message.Text),
		Path:      relPath(projectPath, base, uriPath(*phys.ArtifactLocation.URI)),
		LineStart: start,
		LineEnd:   end,
	}
	if res.RuleID != nil {
		f.Code = *res.RuleID
	}
	return f, true
}

// uriPath turns a SARIF artifact URI into a file path.
func uriPath(uri string) string {
	if strings.HasPrefix(uri, "file:") {
		if u, err := url.Parse(uri); err == nil && u.Path != "" {
			return u.Path
		}
	}
	if p, err := url.PathUnescape(uri); err == nil {
		return p
	}
	return uri
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
