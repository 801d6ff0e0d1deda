// Package workspace enumerates the scan roots of a project from its
// manifests or configuration.
package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/scoutlint/scout/internal/domain"
)

// Static serves the members listed in .scout.yaml. Listing members is a
// request to lint them one by one, so every root is separate.
type Static struct {
	Members []string
}

func NewStatic(members []string) *Static { return &Static{Members: members} }

func (s *Static) Load(projectPath string) (domain.Workspace, error) {
	ws := domain.Workspace{Kind: domain.WorkspaceStatic}
	for _, m := range s.Members {
		ws.Roots = append(ws.Roots, domain.ScanRoot{Path: cleanRoot(m), Separate: true})
	}
	return ws, nil
}

// Single treats the whole project as one root.
type Single struct{}

func (Single) Load(projectPath string) (domain.Workspace, error) {
	return domain.Workspace{Kind: domain.WorkspaceSingle}, nil
}

// Auto picks a loader from the project configuration:
// explicit members, then the language manifest, then (for Go projects with
// per_root set and no go.work) nested module discovery.
type Auto struct {
	cfg domain.ProjectConfig
}

func New(cfg domain.ProjectConfig) *Auto { return &Auto{cfg: cfg} }

func (a *Auto) Load(projectPath string) (domain.Workspace, error) {
	return a.loader(projectPath).Load(projectPath)
}

func (a *Auto) loader(projectPath string) domain.WorkspaceLoader {
	cfg := a.cfg
	if len(cfg.Members) > 0 {
		return NewStatic(cfg.Members)
	}

	switch cfg.Language {
	case domain.LanguageRust:
		manifest := cfg.Manifest
		if manifest == "" {
			manifest = "Cargo.toml"
		}
		return NewCargo(manifest, cfg.Features.Active() || cfg.PerRoot)
	default:
		manifest := cfg.Manifest
		if manifest == "" {
			manifest = "go.work"
		}
		if exists(filepath.Join(projectPath, manifest)) {
			return NewGoWork(manifest)
		}
		if cfg.PerRoot {
			return NewDiscover([]string{"go.mod"}, cfg.ExcludePaths)
		}
		return Single{}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// cleanRoot turns a manifest-relative directory into a slash path without
// a leading "./" or trailing slash.
func cleanRoot(p string) string {
	p = filepath.ToSlash(filepath.Clean(filepath.FromSlash(strings.TrimSpace(p))))
	return strings.TrimPrefix(p, "./")
}
