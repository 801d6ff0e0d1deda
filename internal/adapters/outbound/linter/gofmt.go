package linter

import (
	"path/filepath"

	"github.com/scoutlint/scout/internal/domain"
)

// Gofmt rewrites every file that carries a finding. gofmt has no notion of
// line ranges, so whole files are formatted.
type Gofmt struct {
	runner Runner
}

func NewGofmt(runner Runner) *Gofmt { return &Gofmt{runner: runner} }

func (g *Gofmt) Heal(projectPath string, findings []domain.Finding) error {
	cmd := g.Command(projectPath, findings)
	if len(cmd.Args) == 1 {
		return nil
	}
	_, err := run(g.runner, "gofmt", cmd)
	return err
}

func (g *Gofmt) Command(projectPath string, findings []domain.Finding) Command {
	args := []string{"-w"}
	seen := make(map[string]bool)
	for _, f := range findings {
		if f.Path == "" || seen[f.Path] || filepath.Ext(f.Path) != ".go" {
			continue
		}
		seen[f.Path] = true
		args = append(args, filepath.FromSlash(f.Path))
	}
	return Command{Dir: projectPath, Name: "gofmt", Args: args}
}
