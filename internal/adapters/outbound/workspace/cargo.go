package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/scoutlint/scout/internal/domain"
)

type cargoManifest struct {
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

// Cargo reads [workspace] members from a Cargo.toml. Clippy understands
// workspaces natively, so members only need separate runs when feature
// flags are passed, since those apply per package.
type Cargo struct {
	Manifest string
	Separate bool
}

func NewCargo(manifest string, separate bool) *Cargo {
	return &Cargo{Manifest: manifest, Separate: separate}
}

func (c *Cargo) Load(projectPath string) (domain.Workspace, error) {
	path := filepath.Join(projectPath, c.Manifest)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Workspace{}, &domain.ConfigError{Path: path, Err: fmt.Errorf("manifest not found")}
		}
		return domain.Workspace{}, &domain.ConfigError{Path: path, Err: err}
	}

	var m cargoManifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return domain.Workspace{}, &domain.ConfigError{Path: path, Err: err}
	}

	ws := domain.Workspace{Kind: domain.WorkspaceCargo}
	if m.Workspace == nil {
		return ws, nil
	}

	base := filepath.Join(projectPath, filepath.Dir(c.Manifest))
	fsys := os.DirFS(base)
	excluded := make(map[string]bool, len(m.Workspace.Exclude))
	for _, e := range m.Workspace.Exclude {
		excluded[cleanRoot(e)] = true
	}

	seen := make(map[string]bool)
	for _, member := range m.Workspace.Members {
		dirs, err := expandMember(fsys, cleanRoot(member))
		if err != nil {
			return domain.Workspace{}, &domain.ConfigError{Path: path, Err: fmt.Errorf("member %q: %w", member, err)}
		}
		for _, d := range dirs {
			if excluded[d] || seen[d] {
				continue
			}
			seen[d] = true
			root := cleanRoot(filepath.Join(filepath.Dir(c.Manifest), filepath.FromSlash(d)))
			ws.Roots = append(ws.Roots, domain.ScanRoot{Path: root, Separate: c.Separate})
		}
	}
	return ws, nil
}

// expandMember resolves a member entry, which may be a glob such as
// "crates/*", to the directories holding a Cargo.toml.
func expandMember(fsys fs.FS, member string) ([]string, error) {
	if !strings.ContainsAny(member, "*?[{") {
		return []string{member}, nil
	}
	matches, err := doublestar.Glob(fsys, member+"/Cargo.toml")
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		dirs = append(dirs, filepath.ToSlash(filepath.Dir(filepath.FromSlash(m))))
	}
	sort.Strings(dirs)
	return dirs, nil
}
