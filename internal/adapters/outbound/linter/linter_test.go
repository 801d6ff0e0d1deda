package linter_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/scoutlint/scout/internal/adapters/outbound/linter"
	"github.com/scoutlint/scout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toolsDir = "../../../../testdata/tools"

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(toolsDir, name))
	require.NoError(t, err)
	return data
}

// fakeRunner returns a canned result and records every command.
type fakeRunner struct {
	result linter.Result
	err    error
	cmds   []linter.Command
}

func (f *fakeRunner) Run(cmd linter.Command) (linter.Result, error) {
	f.cmds = append(f.cmds, cmd)
	return f.result, f.err
}

func TestClippy_Command(t *testing.T) {
	c := linter.NewClippy(nil, linter.ClippyOptions{})
	cmd := c.Command("/work", domain.ScanRoot{Path: "member1"})
	assert.Equal(t, "cargo", cmd.Name)
	assert.Equal(t, filepath.Join("/work", "member1"), cmd.Dir)
	assert.Equal(t, []string{"clippy", "--message-format", "json", "--", "-W", "clippy::pedantic"}, cmd.Args)
	assert.Empty(t, cmd.Env)
}

func TestClippy_CommandWithFlags(t *testing.T) {
	c := linter.NewClippy(nil, linter.ClippyOptions{
		Features: domain.FeatureConfig{All: true, NoDefault: true, List: []string{"tls", "json"}},
		Preview:  true,
		Verbose:  true,
	})
	cmd := c.Command("/work", domain.ScanRoot{Path: "."})
	assert.Equal(t, "/work", cmd.Dir)
	assert.Equal(t, []string{
		"+nightly", "clippy-preview", "-Z", "unstable-options", "--message-format", "json",
		"--verbose", "--no-default-features", "--all-features", "--features", "tls,json",
		"--", "-W", "clippy::pedantic",
	}, cmd.Args)
	assert.Equal(t, []string{"RUST_BACKTRACE=full"}, cmd.Env)
}

func TestParseClippy(t *testing.T) {
	findings := linter.ParseClippy(fixture(t, "clippy.jsonl"), "/work", ".")
	require.Len(t, findings, 2)

	assert.Equal(t, "member1/src/lib.rs", findings[0].Path)
	assert.Equal(t, 3, findings[0].LineStart)
	assert.Equal(t, 3, findings[0].LineEnd)
	assert.Equal(t, "clippy::doc_markdown", findings[0].Code)
	assert.Equal(t, domain.SeverityWarning, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "missing backticks")

	assert.Equal(t, "member1/src/engine.rs", findings[1].Path, "primary span wins")
	assert.Equal(t, 10, findings[1].LineStart)
	assert.Equal(t, 130, findings[1].LineEnd)
}

func TestParseClippy_NestedWorkspace(t *testing.T) {
	out := []byte(`{"reason":"compiler-message","message":{"rendered":"w","message":"w","level":"warning","code":null,"spans":[{"file_name":"engine/src/lib.rs","line_start":1,"line_end":1,"is_primary":true}]}}`)
	findings := linter.ParseClippy(out, "/work", "rust")
	require.Len(t, findings, 1)
	assert.Equal(t, "rust/engine/src/lib.rs", findings[0].Path)
}

func TestClippy_LintsUsesRunnerOutput(t *testing.T) {
	runner := &fakeRunner{result: linter.Result{Stdout: fixture(t, "clippy.jsonl")}}
	c := linter.NewClippy(runner, linter.ClippyOptions{WorkspaceDir: "."})

	findings, err := c.Lints("/work", domain.ScanRoot{Path: "member1", Separate: true})
	require.NoError(t, err)
	assert.Len(t, findings, 2)
	require.Len(t, runner.cmds, 1)
	assert.Equal(t, filepath.Join("/work", "member1"), runner.cmds[0].Dir)
}

func TestClippy_NonZeroExitIsToolError(t *testing.T) {
	runner := &fakeRunner{result: linter.Result{ExitCode: 101, Stderr: []byte("error[E0425]: cannot find value `x`\n")}}
	c := linter.NewClippy(runner, linter.ClippyOptions{})

	_, err := c.Lints("/work", domain.ScanRoot{Path: "."})
	var toolErr *domain.ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, domain.ToolClippy, toolErr.Tool)
	assert.Contains(t, err.Error(), "exit status 101")
	assert.Contains(t, err.Error(), "E0425")
}

func TestRunner_StartFailureIsToolError(t *testing.T) {
	runner := &fakeRunner{err: errors.New(`exec: "cargo": executable file not found in $PATH`)}
	_, err := linter.NewRustfmt(runner).Lints("/work", domain.ScanRoot{Path: "."})
	var toolErr *domain.ToolError
	assert.True(t, errors.As(err, &toolErr))
}

func TestParseGolangci(t *testing.T) {
	findings := linter.ParseGolangci(fixture(t, "golangci.json"), "/work", "api")
	require.Len(t, findings, 2)

	assert.Equal(t, domain.Finding{
		Tool:      domain.ToolGolangciLint,
		Code:      "errcheck",
		Severity:  domain.SeverityWarning,
		Message:   "Error return value of `f.Close` is not checked",
		Path:      "api/store/file.go",
		LineStart: 27,
		LineEnd:   27,
	}, findings[0])

	assert.Equal(t, "api/handler.go", findings[1].Path)
	assert.Equal(t, 40, findings[1].LineStart)
	assert.Equal(t, 48, findings[1].LineEnd)
	assert.Equal(t, domain.SeverityError, findings[1].Severity)
}

func TestParseGolangci_RelativePathsJoinRoot(t *testing.T) {
	out := []byte(`{"Issues":[{"FromLinter":"unused","Text":"func x is unused","Pos":{"Filename":"pkg/x.go","Line":5}}]}`)
	findings := linter.ParseGolangci(out, "/work", "api")
	require.Len(t, findings, 1)
	assert.Equal(t, "api/pkg/x.go", findings[0].Path)
}

func TestParseGolangci_AbsolutePathThroughSymlink(t *testing.T) {
	base := t.TempDir()
	actual := filepath.Join(base, "real")
	require.NoError(t, os.MkdirAll(filepath.Join(actual, "api", "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(actual, "api", "pkg", "x.go"), []byte("package pkg\n"), 0o644))
	link := filepath.Join(base, "link")
	require.NoError(t, os.Symlink(actual, link))

	resolved, err := filepath.EvalSymlinks(filepath.Join(actual, "api", "pkg", "x.go"))
	require.NoError(t, err)
	out := []byte(`{"Issues":[{"FromLinter":"unused","Text":"func x is unused","Pos":{"Filename":` +
		strconv.Quote(resolved) + `,"Line":5}}]}`)

	findings := linter.ParseGolangci(out, link, "api")
	require.Len(t, findings, 1)
	assert.Equal(t, "api/pkg/x.go", findings[0].Path)

	findings = linter.ParseGolangci(out, actual, "api")
	require.Len(t, findings, 1)
	assert.Equal(t, "api/pkg/x.go", findings[0].Path)
}

func TestParseGolangci_NoiseAroundReport(t *testing.T) {
	out := []byte("level=warning msg=\"deprecated\"\n" +
		`{"Issues":[{"FromLinter":"unused","Text":"t","Pos":{"Filename":"a.go","Line":1}}]}` + "\n")
	assert.Len(t, linter.ParseGolangci(out, "/work", "."), 1)
	assert.Empty(t, linter.ParseGolangci([]byte("not json"), "/work", "."))
	assert.Empty(t, linter.ParseGolangci(nil, "/work", "."))
}

func TestGolangciLint_Command(t *testing.T) {
	cmd := linter.NewGolangciLint(nil, []string{"integration", "e2e"}).Command("/work", domain.ScanRoot{Path: "api"})
	assert.Equal(t, "golangci-lint", cmd.Name)
	assert.Equal(t, filepath.Join("/work", "api"), cmd.Dir)
	assert.Contains(t, cmd.Args, "--issues-exit-code=0")
	assert.Contains(t, cmd.Args, "--build-tags=integration,e2e")
	assert.Equal(t, "./...", cmd.Args[len(cmd.Args)-1])
}

func TestParseGoVet(t *testing.T) {
	findings := linter.ParseGoVet(fixture(t, "govet.txt"), "/work", "api")
	require.Len(t, findings, 2)

	assert.Equal(t, "api/handler.go", findings[0].Path)
	assert.Equal(t, 12, findings[0].LineStart)
	assert.Equal(t, "copylocks", findings[0].Code)

	assert.Equal(t, "api/store/file.go", findings[1].Path)
	assert.Equal(t, 33, findings[1].LineStart)
	assert.Equal(t, "printf", findings[1].Code)
}

func TestGoVet_Command(t *testing.T) {
	cmd := linter.NewGoVet(nil, []string{"linux"}).Command("/work", domain.ScanRoot{Path: "."})
	assert.Equal(t, "go", cmd.Name)
	assert.Equal(t, []string{"vet", "-json", "-tags=linux", "./..."}, cmd.Args)
}

func TestParseRustfmt(t *testing.T) {
	findings, err := linter.ParseRustfmt(fixture(t, "rustfmt.json"), "/work", ".")
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, "src/lib.rs", findings[0].Path)
	assert.Equal(t, 1, findings[0].LineStart)
	assert.Equal(t, 1, findings[0].LineEnd)
	assert.Equal(t, "Diff in src/lib.rs at line 1:\n-    pub mod config;\n+pub mod config;\n", findings[0].Message)

	assert.Equal(t, 8, findings[1].LineStart)
	assert.Equal(t, 9, findings[1].LineEnd)
	assert.Equal(t, "Diff in src/lib.rs between lines 8 and 9:\n"+
		"-    this is a test mismatch\n-  the indent is wrong\n"+
		"+this is a test mismatch\n+the indent is wrong\n", findings[1].Message)
}

func TestParseRustfmt_EmptyAndInvalid(t *testing.T) {
	findings, err := linter.ParseRustfmt([]byte("  \n"), "/work", ".")
	require.NoError(t, err)
	assert.Empty(t, findings)

	_, err = linter.ParseRustfmt([]byte("{oops"), "/work", ".")
	assert.Error(t, err)
}

func TestRustfmt_Heal(t *testing.T) {
	runner := &fakeRunner{}
	r := linter.NewRustfmt(runner)

	err := r.Heal("/work", []domain.Finding{
		{Path: "src/lib.rs", LineStart: 1, LineEnd: 1},
		{Path: "src/lib.rs", LineStart: 8, LineEnd: 9},
	})
	require.NoError(t, err)
	require.Len(t, runner.cmds, 1)
	assert.Equal(t, []string{
		"+nightly", "fmt", "--", "--unstable-features", "--file-lines",
		`[{"file":"src/lib.rs","range":[1,1]},{"file":"src/lib.rs","range":[8,9]}]`,
		"--skip-children",
	}, runner.cmds[0].Args)

	require.NoError(t, r.Heal("/work", nil))
	assert.Len(t, runner.cmds, 1, "nothing to heal runs nothing")
}

func TestGofmt_Heal(t *testing.T) {
	runner := &fakeRunner{}
	g := linter.NewGofmt(runner)

	require.NoError(t, g.Heal("/work", []domain.Finding{
		{Path: "a.go", LineStart: 1, LineEnd: 1},
		{Path: "a.go", LineStart: 9, LineEnd: 9},
		{Path: "pkg/b.go", LineStart: 2, LineEnd: 2},
		{Path: "README.md", LineStart: 2, LineEnd: 2},
	}))
	require.Len(t, runner.cmds, 1)
	assert.Equal(t, []string{"-w", "a.go", filepath.FromSlash("pkg/b.go")}, runner.cmds[0].Args)

	require.NoError(t, g.Heal("/work", nil))
	assert.Len(t, runner.cmds, 1)
}

func TestParseSARIF(t *testing.T) {
	findings, err := linter.ParseSARIF(fixture(t, "semgrep.sarif"), "/work", ".")
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, domain.Finding{
		Tool:      "Semgrep OSS",
		Code:      "go.lang.security.audit.crypto.math_random.math-random-used",
		Severity:  domain.SeverityWarning,
		Message:   "Do not use math/rand. Use crypto/rand instead.",
		Path:      "internal/token/token.go",
		LineStart: 14,
		LineEnd:   15,
	}, findings[0])

	assert.Equal(t, "config/dev.go", findings[1].Path)
	assert.Equal(t, 3, findings[1].LineEnd)
	assert.Equal(t, domain.SeverityError, findings[1].Severity)
}

func TestSARIFCommand(t *testing.T) {
	runner := &fakeRunner{result: linter.Result{Stdout: fixture(t, "semgrep.sarif")}}
	s := linter.NewSARIFCommand(runner, domain.SARIFCommand{Command: []string{"semgrep", "scan", "--sarif"}})
	assert.Equal(t, "semgrep", s.Name())

	findings, err := s.Lints("/work", domain.ScanRoot{Path: "."})
	require.NoError(t, err)
	assert.Len(t, findings, 2)
	assert.Equal(t, []string{"scan", "--sarif"}, runner.cmds[0].Args)

	runner.result = linter.Result{Stdout: []byte("<html>")}
	_, err = s.Lints("/work", domain.ScanRoot{Path: "."})
	var toolErr *domain.ToolError
	assert.True(t, errors.As(err, &toolErr))
}

func TestNew_SelectsAdapter(t *testing.T) {
	tests := []struct {
		cfg  domain.ProjectConfig
		name string
	}{
		{domain.ProjectConfig{Tool: domain.ToolGolangciLint}, domain.ToolGolangciLint},
		{domain.ProjectConfig{Tool: domain.ToolGoVet}, domain.ToolGoVet},
		{domain.ProjectConfig{Tool: domain.ToolClippy}, domain.ToolClippy},
		{domain.ProjectConfig{Tool: domain.ToolRustfmt}, domain.ToolRustfmt},
		{domain.ProjectConfig{Tool: domain.ToolSARIF, SARIF: &domain.SARIFCommand{Name: "gosec", Command: []string{"gosec"}}}, "gosec"},
	}
	for _, tt := range tests {
		l, err := linter.New(tt.cfg, &fakeRunner{}, false)
		require.NoError(t, err)
		assert.Equal(t, tt.name, l.Name())
	}

	_, err := linter.New(domain.ProjectConfig{Tool: domain.ToolSARIF}, &fakeRunner{}, false)
	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = linter.New(domain.ProjectConfig{Tool: "pylint"}, &fakeRunner{}, false)
	assert.Error(t, err)
}

func TestNewHealer(t *testing.T) {
	h, err := linter.NewHealer(domain.ProjectConfig{Language: domain.LanguageRust}, &fakeRunner{})
	require.NoError(t, err)
	assert.IsType(t, &linter.Rustfmt{}, h)

	h, err = linter.NewHealer(domain.ProjectConfig{Language: domain.LanguageGo}, &fakeRunner{})
	require.NoError(t, err)
	assert.IsType(t, &linter.Gofmt{}, h)
}

func TestExecRunner_ReportsExitCode(t *testing.T) {
	r := linter.NewExecRunner(nil)

	res, err := r.Run(linter.Command{Dir: t.TempDir(), Name: "git", Args: []string{"--version"}})
	require.NoError(t, err)
	assert.Zero(t, res.ExitCode)
	assert.Contains(t, string(res.Stdout), "git version")

	res, err = r.Run(linter.Command{Dir: t.TempDir(), Name: "git", Args: []string{"rev-parse", "HEAD"}})
	require.NoError(t, err)
	assert.NotZero(t, res.ExitCode)

	_, err = r.Run(linter.Command{Name: "definitely-not-a-real-binary-xyz"})
	assert.Error(t, err)
}
