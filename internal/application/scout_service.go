package application

import (
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/scoutlint/scout/internal/domain"
	"github.com/scoutlint/scout/internal/domain/correlate"
	"github.com/scoutlint/scout/internal/domain/scope"
)

// ScoutService orchestrates the scout pipeline:
// diff -> sections -> workspace roots -> select roots -> lint each root -> correlate.
type ScoutService struct {
	vcs       domain.VCS
	workspace domain.WorkspaceLoader
	linter    domain.Linter
	logger    hclog.Logger

	excludes []string
	commit   func(projectPath string) string
	now      func() time.Time
}

// ScoutOption customizes a ScoutService.
type ScoutOption func(*ScoutService)

// WithExcludes drops sections whose path matches one of the doublestar globs.
func WithExcludes(globs []string) ScoutOption {
	return func(s *ScoutService) { s.excludes = globs }
}

// WithCommit records the HEAD commit of the project in every report.
func WithCommit(fn func(projectPath string) string) ScoutOption {
	return func(s *ScoutService) { s.commit = fn }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) ScoutOption {
	return func(s *ScoutService) { s.now = now }
}

func NewScoutService(
	vcs domain.VCS,
	workspace domain.WorkspaceLoader,
	linter domain.Linter,
	logger hclog.Logger,
	opts ...ScoutOption,
) *ScoutService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &ScoutService{
		vcs:       vcs,
		workspace: workspace,
		linter:    linter,
		logger:    logger.Named("scout"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sections returns the changed-line sections of projectPath against target,
// after exclusions.
func (s *ScoutService) Sections(projectPath, target string) ([]domain.Section, error) {
	sections, err := s.vcs.Sections(projectPath, target)
	if err != nil {
		return nil, fmt.Errorf("computing diff against %s: %w", target, err)
	}

	kept := make([]domain.Section, 0, len(sections))
	for _, sec := range sections {
		if s.excluded(sec.Path) {
			continue
		}
		kept = append(kept, sec)
	}
	if dropped := len(sections) - len(kept); dropped > 0 {
		s.logger.Debug("excluded sections", "count", dropped)
	}
	return kept, nil
}

// Plan is what a run analyzes: the changed sections, the declared roots and
// the roots those sections select.
type Plan struct {
	Target    string            `json:"target"`
	Sections  []domain.Section  `json:"sections"`
	Workspace domain.Workspace  `json:"workspace"`
	Selected  []domain.ScanRoot `json:"selected"`
}

// Plan computes the sections changed against target and the roots they
// select, without invoking the tool.
func (s *ScoutService) Plan(projectPath, target string) (*Plan, error) {
	// 1. Changed lines
	sections, err := s.Sections(projectPath, target)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("diff computed", "target", target, "sections", len(sections))

	// 2. Scan roots
	ws, err := s.workspace.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading workspace: %w", err)
	}
	s.logger.Debug("workspace loaded", "kind", ws.Kind, "roots", len(ws.Roots), "per_root", ws.PerRootIterationRequired())

	// 3. Roots worth linting
	return &Plan{
		Target:    target,
		Sections:  sections,
		Workspace: ws,
		Selected:  scope.Select(ws, sections),
	}, nil
}

// Run computes the sections changed against target, lints the roots those
// sections touch and returns only the findings that fall on changed lines.
// Any failure aborts the run without a partial report.
func (s *ScoutService) Run(projectPath, target string) (*domain.Report, error) {
	plan, err := s.Plan(projectPath, target)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Target:    target,
		Tool:      s.linter.Name(),
		Timestamp: s.now().UTC(),
		Sections:  plan.Sections,
		Roots:     make([]string, 0, len(plan.Selected)),
		Findings:  []domain.Finding{},
	}
	if s.commit != nil {
		report.Commit = s.commit(projectPath)
	}

	if len(plan.Selected) == 0 {
		s.logger.Info("nothing to lint", "sections", len(plan.Sections))
		return report, nil
	}

	// 4. Lint every selected root in order
	var all []domain.Finding
	for _, root := range plan.Selected {
		s.logger.Info("running linter", "tool", s.linter.Name(), "root", root.Path)
		findings, err := s.linter.Lints(projectPath, root)
		if err != nil {
			return nil, fmt.Errorf("linting %s: %w", root.Path, err)
		}
		s.logger.Debug("linter finished", "root", root.Path, "findings", len(findings))
		report.Roots = append(report.Roots, root.Path)
		all = append(all, findings...)
	}

	// 5. Keep only findings on changed lines
	report.Findings = correlate.Filter(all, plan.Sections)
	s.logger.Info("correlated findings", "raw", len(all), "kept", len(report.Findings))

	return report, nil
}

// Filter keeps the findings, produced by any tool, that overlap a section
// changed against target. The configured linter is not invoked.
func (s *ScoutService) Filter(projectPath, target string, findings []domain.Finding) ([]domain.Finding, error) {
	sections, err := s.Sections(projectPath, target)
	if err != nil {
		return nil, err
	}
	return correlate.Filter(findings, sections), nil
}

func (s *ScoutService) excluded(path string) bool {
	for _, g := range s.excludes {
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
	}
	return false
}
