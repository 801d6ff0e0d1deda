// Package patchfile reads changed-line sections from a unified diff saved
// to disk, such as the patch of a pull request downloaded by CI.
package patchfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/scoutlint/scout/internal/adapters/outbound/gitinfo"
	"github.com/scoutlint/scout/internal/domain"
)

// Reader implements domain.VCS over a pre-computed diff. The target ref is
// whatever the patch was made against; it is not consulted.
//
// Patch paths are relative to the repository root. When repoPath is a
// subdirectory of a git worktree, only files below it are kept and their
// paths are made relative to it. Outside a repository the patch paths are
// taken as relative to repoPath.
type Reader struct {
	path       string
	extensions []string
	logger     hclog.Logger
}

func New(path string, extensions []string, logger hclog.Logger) *Reader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Reader{path: path, extensions: extensions, logger: logger.Named("patch")}
}

func (r *Reader) Sections(repoPath, target string) ([]domain.Section, error) {
	path := r.path
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoPath, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.VcsError{Op: "read patch", Err: err}
	}

	files, err := diff.ParseMultiFileDiff(data)
	if err != nil {
		return nil, &domain.VcsError{Op: "parse patch " + r.path, Err: err}
	}

	prefix, err := gitinfo.Subdir(repoPath)
	if err != nil {
		r.logger.Debug("no worktree around project, using patch paths as-is", "path", repoPath, "error", err)
		prefix = ""
	}

	match := domain.ProjectConfig{Extensions: r.extensions}
	sections := []domain.Section{}
	for _, fd := range files {
		name, ok := newName(fd)
		if !ok || !strings.HasPrefix(name, prefix) || !match.MatchesExtension(name) {
			continue
		}
		name = strings.TrimPrefix(name, prefix)
		for _, h := range fd.Hunks {
			sections = append(sections, hunkSections(name, h)...)
		}
	}

	r.logger.Debug("patch parsed", "file", r.path, "files", len(files), "prefix", prefix, "sections", len(sections), "target", target)
	return sections, nil
}

func newName(fd *diff.FileDiff) (string, bool) {
	name := fd.NewName
	if strings.HasPrefix(name, `"`) {
		if unq, err := strconv.Unquote(name); err == nil {
			name = unq
		}
	}
	if name == "" || name == "/dev/null" {
		return "", false
	}
	return strings.TrimPrefix(name, "b/"), true
}

// hunkSections applies the same run rules as the text parser to one
// structured hunk: additions extend a run, removals leave it open and any
// other line closes it.
func hunkSections(path string, h *diff.Hunk) []domain.Section {
	var (
		out     []domain.Section
		line    = int(h.NewStartLine) - 1
		pending bool
		start   int
	)
	flush := func() {
		if pending {
			out = append(out, domain.Section{Path: path, LineStart: start, LineEnd: line})
			pending = false
		}
	}

	lines := bytes.Split(bytes.TrimSuffix(h.Body, []byte("\n")), []byte("\n"))
	for _, l := range lines {
		if len(l) == 0 {
			// blank context line whose leading space was stripped
			flush()
			line++
			continue
		}
		switch l[0] {
		case '+':
			line++
			if !pending {
				pending = true
				start = line
			}
		case '-', '\\':
		default:
			flush()
			line++
		}
	}
	flush()
	return out
}
