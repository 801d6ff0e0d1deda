package workspace

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/scoutlint/scout/internal/domain"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	".scout":       true,
	"target":       true,
	"dist":         true,
	"testdata":     true,
}

// Discover walks the project for directories holding one of the marker
// files (go.mod, Cargo.toml). Each one becomes a separate root. A marker at
// the project root makes "." the first root, so files outside every nested
// module still reach the tool.
type Discover struct {
	Markers  []string
	Excludes []string
}

func NewDiscover(markers, excludes []string) *Discover {
	return &Discover{Markers: markers, Excludes: excludes}
}

func (d *Discover) Load(projectPath string) (domain.Workspace, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return domain.Workspace{}, &domain.ConfigError{Path: projectPath, Err: err}
	}

	markers := make(map[string]bool, len(d.Markers))
	for _, m := range d.Markers {
		markers[m] = true
	}

	ws := domain.Workspace{Kind: domain.WorkspaceFound}
	seen := map[string]bool{".": true}
	for _, m := range d.Markers {
		if _, err := os.Stat(filepath.Join(absPath, m)); err == nil {
			ws.Roots = append(ws.Roots, domain.ScanRoot{Path: ".", Separate: true})
			break
		}
	}
	err = filepath.WalkDir(absPath, func(path string, e os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(absPath, path)
		relPath = filepath.ToSlash(relPath)

		if e.IsDir() {
			if relPath != "." && (skipDirs[e.Name()] || strings.HasPrefix(e.Name(), ".") || d.excluded(relPath)) {
				return filepath.SkipDir
			}
			return nil
		}

		dir := filepath.ToSlash(filepath.Dir(relPath))
		if markers[e.Name()] && !seen[dir] {
			seen[dir] = true
			ws.Roots = append(ws.Roots, domain.ScanRoot{Path: dir, Separate: true})
		}
		return nil
	})
	if err != nil {
		return domain.Workspace{}, &domain.ConfigError{Path: absPath, Err: err}
	}
	return ws, nil
}

func (d *Discover) excluded(relDir string) bool {
	for _, g := range d.Excludes {
		g = strings.TrimSuffix(g, "/")
		if ok, _ := doublestar.Match(g, relDir); ok {
			return true
		}
		// "dir/**" also covers dir itself.
		if ok, _ := doublestar.Match(strings.TrimSuffix(g, "/**"), relDir); ok {
			return true
		}
	}
	return false
}
