package gitinfo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/hashicorp/go-hclog"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/scoutlint/scout/internal/domain"
)

// GitInfoAdapter reads repository metadata and computes changed-line
// sections with go-git, without shelling out.
type GitInfoAdapter struct {
	extensions []string
	logger     hclog.Logger
}

func New(extensions []string, logger hclog.Logger) *GitInfoAdapter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GitInfoAdapter{extensions: extensions, logger: logger.Named("go-git")}
}

func (g *GitInfoAdapter) IsGitRepo(projectPath string) bool {
	_, err := open(projectPath)
	return err == nil
}

func (g *GitInfoAdapter) CommitHash(projectPath string) (string, error) {
	repo, err := open(projectPath)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// ShortCommit returns the abbreviated HEAD hash, or "" outside a repository.
func (g *GitInfoAdapter) ShortCommit(projectPath string) string {
	h, err := g.CommitHash(projectPath)
	if err != nil || len(h) < 7 {
		return ""
	}
	return h[:7]
}

// Sections compares the tree of target with the working tree. Tracked files
// that were added or modified and untracked files are diffed line by line;
// deleted files and binary blobs are skipped. Paths are relative to
// projectPath and only files below it are considered.
func (g *GitInfoAdapter) Sections(projectPath, target string) ([]domain.Section, error) {
	repo, err := open(projectPath)
	if err != nil {
		return nil, &domain.VcsError{Op: "open " + projectPath, Err: err}
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(target))
	if err != nil {
		return nil, &domain.VcsError{Op: "resolve " + target, Err: err}
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, &domain.VcsError{Op: "read commit " + hash.String(), Err: err}
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, &domain.VcsError{Op: "read tree " + hash.String(), Err: err}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, &domain.VcsError{Op: "open worktree", Err: err}
	}
	prefix, err := subdir(wt.Filesystem.Root(), projectPath)
	if err != nil {
		return nil, &domain.VcsError{Op: "locate " + projectPath, Err: err}
	}

	candidates, err := g.candidates(repo, wt, prefix)
	if err != nil {
		return nil, err
	}

	var sections []domain.Section
	for _, name := range candidates {
		newText, ok, err := readWorktree(wt, name)
		if err != nil {
			return nil, &domain.VcsError{Op: "read " + name, Err: err}
		}
		if !ok {
			continue // deleted in the working tree
		}

		oldText := ""
		f, err := tree.File(name)
		switch {
		case errors.Is(err, object.ErrFileNotFound):
			// added since target
		case err != nil:
			return nil, &domain.VcsError{Op: "read " + name + " at " + target, Err: err}
		default:
			if f.Hash == plumbing.ComputeHash(plumbing.BlobObject, []byte(newText)) {
				continue
			}
			if bin, _ := f.IsBinary(); bin {
				continue
			}
			if oldText, err = f.Contents(); err != nil {
				return nil, &domain.VcsError{Op: "read " + name + " at " + target, Err: err}
			}
		}

		rel := strings.TrimPrefix(name, prefix)
		sections = append(sections, LineSections(rel, oldText, newText)...)
	}

	g.logger.Debug("diff computed", "target", target, "files", len(candidates), "sections", len(sections))
	if sections == nil {
		sections = []domain.Section{}
	}
	return sections, nil
}

// candidates lists tracked and untracked paths below prefix that carry one
// of the configured extensions, sorted.
func (g *GitInfoAdapter) candidates(repo *git.Repository, wt *git.Worktree, prefix string) ([]string, error) {
	seen := make(map[string]bool)

	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, &domain.VcsError{Op: "read index", Err: err}
	}
	for _, e := range idx.Entries {
		seen[e.Name] = true
	}

	status, err := wt.Status()
	if err != nil {
		return nil, &domain.VcsError{Op: "status", Err: err}
	}
	for name, st := range status {
		if st.Worktree == git.Untracked {
			seen[name] = true
		}
	}

	match := domain.ProjectConfig{Extensions: g.extensions}
	var names []string
	for name := range seen {
		if !strings.HasPrefix(name, prefix) || !match.MatchesExtension(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LineSections diffs two file contents line by line and returns one section
// per contiguous run of inserted lines in newText. Runs separated only by
// deletions are merged since their lines are adjacent in the new file.
func LineSections(path, oldText, newText string) []domain.Section {
	var sections []domain.Section
	line := 0
	for _, d := range diff.Do(oldText, newText) {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			line += n
		case diffmatchpatch.DiffInsert:
			if n == 0 {
				continue
			}
			start, end := line+1, line+n
			line = end
			if last := len(sections) - 1; last >= 0 && sections[last].LineEnd+1 == start {
				sections[last].LineEnd = end
				continue
			}
			sections = append(sections, domain.Section{Path: path, LineStart: start, LineEnd: end})
		case diffmatchpatch.DiffDelete:
		}
	}
	return sections
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func open(projectPath string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
}

func readWorktree(wt *git.Worktree, name string) (string, bool, error) {
	f, err := wt.Filesystem.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Subdir returns projectPath relative to the root of the worktree that
// contains it, as a slash prefix ending in "/". It is "" at the root.
func Subdir(projectPath string) (string, error) {
	repo, err := open(projectPath)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	return subdir(wt.Filesystem.Root(), projectPath)
}

// subdir returns projectPath relative to the worktree root as a slash
// prefix ending in "/", or "" when they are the same directory.
func subdir(root, projectPath string) (string, error) {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return "", err
	}
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	if a, err := filepath.EvalSymlinks(abs); err == nil {
		abs = a
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel) + "/", nil
}
