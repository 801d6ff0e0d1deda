package workspace

import (
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/scoutlint/scout/internal/domain"
)

// GoWork reads the use directives of a go.work file. Go tooling runs per
// module, so every used module is a separate root.
type GoWork struct {
	Manifest string
}

func NewGoWork(manifest string) *GoWork { return &GoWork{Manifest: manifest} }

func (g *GoWork) Load(projectPath string) (domain.Workspace, error) {
	path := filepath.Join(projectPath, g.Manifest)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Workspace{Kind: domain.WorkspaceSingle}, nil
		}
		return domain.Workspace{}, &domain.ConfigError{Path: path, Err: err}
	}

	wf, err := modfile.ParseWork(path, data, nil)
	if err != nil {
		return domain.Workspace{}, &domain.ConfigError{Path: path, Err: err}
	}

	// Use paths are relative to the go.work directory.
	base := filepath.Dir(g.Manifest)
	ws := domain.Workspace{Kind: domain.WorkspaceGoWork}
	for _, u := range wf.Use {
		if filepath.IsAbs(u.Path) {
			continue
		}
		ws.Roots = append(ws.Roots, domain.ScanRoot{
			Path:     cleanRoot(filepath.Join(base, filepath.FromSlash(u.Path))),
			Separate: true,
		})
	}
	return ws, nil
}
