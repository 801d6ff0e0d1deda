package application_test

import (
	"errors"

	"github.com/scoutlint/scout/internal/domain"
)

type fakeVCS struct {
	sections []domain.Section
	err      error
	calls    int
}

func (f *fakeVCS) Sections(repoPath, target string) ([]domain.Section, error) {
	f.calls++
	return f.sections, f.err
}

type fakeWorkspace struct {
	ws  domain.Workspace
	err error
}

func (f *fakeWorkspace) Load(projectPath string) (domain.Workspace, error) {
	return f.ws, f.err
}

// fakeLinter returns the findings registered for each root path.
type fakeLinter struct {
	byRoot map[string][]domain.Finding
	failOn string
	roots  []string
}

func (f *fakeLinter) Name() string { return "fake" }

func (f *fakeLinter) Lints(projectPath string, root domain.ScanRoot) ([]domain.Finding, error) {
	f.roots = append(f.roots, root.Path)
	if root.Path == f.failOn {
		return nil, &domain.ToolError{Tool: "fake", Dir: root.Path, Err: errors.New("exit status 101")}
	}
	return f.byRoot[root.Path], nil
}

type fakeHealer struct {
	got []domain.Finding
	err error
}

func (f *fakeHealer) Heal(projectPath string, findings []domain.Finding) error {
	f.got = append(f.got, findings...)
	return f.err
}

func members(paths ...string) domain.Workspace {
	ws := domain.Workspace{Kind: domain.WorkspaceCargo}
	for _, p := range paths {
		ws.Roots = append(ws.Roots, domain.ScanRoot{Path: p, Separate: true})
	}
	return ws
}
