package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scoutlint/scout/internal/adapters/inbound/cli"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

// findingsSARIF flags line 5 (added on the branch) and line 1 (unchanged).
const findingsSARIF = `{
  "version": "2.1.0",
  "runs": [{
    "tool": {"driver": {"name": "gosec"}},
    "results": [
      {"ruleId": "G404", "level": "warning", "message": {"text": "weak random number generator"},
       "locations": [{"physicalLocation": {"artifactLocation": {"uri": "main.go"}, "region": {"startLine": 5}}}]},
      {"ruleId": "G101", "level": "error", "message": {"text": "pre-existing credential"},
       "locations": [{"physicalLocation": {"artifactLocation": {"uri": "main.go"}, "region": {"startLine": 1}}}]}
    ]
  }]
}`

const sarifConfig = "language: go\ntool: sarif\nsarif:\n  name: gosec\n  command: [cat, findings.sarif]\n"

// projectWithChanges returns a Go repository whose working tree adds lines
// 4-5 of main.go on top of master. The configured tool prints findingsSARIF.
func projectWithChanges(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/master")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test")
	runGit(t, dir, "config", "commit.gpgsign", "false")

	writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, dir, ".scout.yaml", sarifConfig)
	writeFile(t, dir, "findings.sarif", findingsSARIF)
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-q", "-m", "init")

	writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n\nvar n = rand.Int()\n")
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
