// Package gitdiff computes changed-line sections by parsing the text output
// of the git command line.
package gitdiff

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scoutlint/scout/internal/domain"
	"github.com/scoutlint/scout/internal/domain/hunk"
)

// CLI implements domain.VCS on top of `git diff`.
type CLI struct {
	extensions []string
	logger     hclog.Logger
}

func New(extensions []string, logger hclog.Logger) *CLI {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CLI{extensions: extensions, logger: logger.Named("gitdiff")}
}

// Sections diffs the working tree of repoPath against target. Paths are
// relative to repoPath and only files below it are considered. Untracked
// files count as changed in full.
func (c *CLI) Sections(repoPath, target string) ([]domain.Section, error) {
	if _, err := c.git(repoPath, "rev-parse", "--verify", "--quiet", target+"^{commit}"); err != nil {
		return nil, &domain.VcsError{Op: "resolve " + target, Err: err}
	}

	out, err := c.git(repoPath, "diff",
		"--no-color", "--no-ext-diff", "--no-renames", "--relative",
		"--src-prefix=a/", "--dst-prefix=b/",
		"-U0", target, "--")
	if err != nil {
		return nil, &domain.VcsError{Op: "diff " + target, Err: err}
	}

	parsed, err := hunk.Parse(out)
	if err != nil {
		return nil, err
	}

	sections := make([]domain.Section, 0, len(parsed))
	for _, s := range parsed {
		if c.matches(s.Path) {
			sections = append(sections, s)
		}
	}

	untracked, err := c.untracked(repoPath)
	if err != nil {
		return nil, err
	}
	sections = append(sections, untracked...)

	c.logger.Debug("diff parsed", "target", target, "hunks", len(parsed), "sections", len(sections))
	return sections, nil
}

func (c *CLI) untracked(repoPath string) ([]domain.Section, error) {
	out, err := c.git(repoPath, "ls-files", "--others", "--exclude-standard", "-z")
	if err != nil {
		return nil, &domain.VcsError{Op: "list untracked files", Err: err}
	}

	var sections []domain.Section
	for _, name := range strings.Split(out, "\x00") {
		if name == "" || !c.matches(name) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(repoPath, filepath.FromSlash(name)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, &domain.VcsError{Op: "read " + name, Err: err}
		}
		if n := CountLines(data); n > 0 {
			sections = append(sections, domain.Section{Path: name, LineStart: 1, LineEnd: n})
		}
	}
	return sections, nil
}

func (c *CLI) matches(path string) bool {
	return domain.ProjectConfig{Extensions: c.extensions}.MatchesExtension(path)
}

func (c *CLI) git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	c.logger.Trace("exec", "cmd", "git "+strings.Join(args, " "), "dir", dir)
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return stdout.String(), nil
}

// CountLines returns the number of lines in data; a trailing line without a
// newline counts.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}
