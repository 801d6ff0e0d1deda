// Package linter runs external analysis tools and maps their native reports
// into domain findings.
package linter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scoutlint/scout/internal/domain"
)

// Command describes one tool invocation.
type Command struct {
	Dir  string
	Env  []string
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes commands. It returns an error only when the command could
// not be started; a non-zero exit is reported through Result.ExitCode.
type Runner interface {
	Run(cmd Command) (Result, error)
}

// ExecRunner runs commands as subprocesses and blocks until they exit.
type ExecRunner struct {
	logger hclog.Logger
}

func NewExecRunner(logger hclog.Logger) *ExecRunner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) Run(c Command) (Result, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("exec", "cmd", c.String(), "dir", c.Dir)
	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, err
	}
	r.logger.Trace("exec finished", "cmd", c.Name, "exit", res.ExitCode, "stdout_bytes", len(res.Stdout))
	return res, nil
}

// run executes cmd and turns a start failure or a non-zero exit into a
// *domain.ToolError.
func run(r Runner, tool string, cmd Command) (Result, error) {
	res, err := r.Run(cmd)
	if err != nil {
		return res, &domain.ToolError{Tool: tool, Dir: cmd.Dir, Err: err}
	}
	if res.ExitCode != 0 {
		return res, &domain.ToolError{
			Tool:   tool,
			Dir:    cmd.Dir,
			Stderr: strings.TrimSpace(string(res.Stderr)),
			Err:    fmt.Errorf("exit status %d", res.ExitCode),
		}
	}
	return res, nil
}

// rootDir returns the directory a root is analyzed in.
func rootDir(projectPath string, root domain.ScanRoot) string {
	if root.Path == "" || root.Path == "." {
		return projectPath
	}
	return filepath.Join(projectPath, filepath.FromSlash(root.Path))
}

// relPath maps a path reported by a tool running in base (relative to
// projectPath) back to a slash path relative to projectPath.
func relPath(projectPath, base, name string) string {
	if filepath.IsAbs(name) {
		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return filepath.ToSlash(name)
		}
		if rel, ok := under(abs, name); ok {
			return rel
		}
		// Tools may report symlink-resolved paths, e.g. /private/var on macOS.
		if root, err := filepath.EvalSymlinks(abs); err == nil {
			if resolved, err := filepath.EvalSymlinks(name); err == nil {
				name = resolved
			}
			if rel, ok := under(root, name); ok {
				return rel
			}
		}
		if rel, err := filepath.Rel(abs, name); err == nil {
			return filepath.ToSlash(rel)
		}
		return filepath.ToSlash(name)
	}
	if base == "" || base == "." {
		return filepath.ToSlash(filepath.Clean(name))
	}
	return filepath.ToSlash(filepath.Join(filepath.FromSlash(base), name))
}

// under returns name relative to root when it lies inside it.
func under(root, name string) (string, bool) {
	rel, err := filepath.Rel(root, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// sortFindings orders findings by path, then line, for tools whose output
// order is not deterministic.
func sortFindings(findings []domain.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.LineStart != b.LineStart {
			return a.LineStart < b.LineStart
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}
