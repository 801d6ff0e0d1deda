package cli_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlint/scout/internal/adapters/outbound/config"
	"github.com/scoutlint/scout/internal/domain"
)

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "scout dev")
}

func TestMCPCommandExists(t *testing.T) {
	_, err := execute(t, "", "mcp", "--help")
	assert.NoError(t, err)
}

func TestMCPServeCommandExists(t *testing.T) {
	_, err := execute(t, "", "mcp", "serve", "--help")
	assert.NoError(t, err)
}

func TestSectionsCommand(t *testing.T) {
	dir := projectWithChanges(t)

	out, err := execute(t, "", "sections", "--path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "L4-5")
}

func TestSectionsCommand_JSON(t *testing.T) {
	dir := projectWithChanges(t)

	out, err := execute(t, "", "sections", "--path", dir, "--json")
	require.NoError(t, err)

	var plan struct {
		Target   string           `json:"target"`
		Sections []domain.Section `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, "master", plan.Target)
	assert.Equal(t, []domain.Section{{Path: "main.go", LineStart: 4, LineEnd: 5}}, plan.Sections)
}

func TestSectionsCommand_PerRootFlagOverridesFile(t *testing.T) {
	dir := projectWithChanges(t)
	writeFile(t, dir, "go.mod", "module example.com/app\n")
	writeFile(t, dir, ".scout.yaml", sarifConfig+"per_root: true\n")

	var plan struct {
		Workspace domain.Workspace `json:"workspace"`
	}
	out, err := execute(t, "", "sections", "--path", dir, "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, domain.WorkspaceFound, plan.Workspace.Kind)

	out, err = execute(t, "", "sections", "--path", dir, "--json", "--per-root=false")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, domain.WorkspaceSingle, plan.Workspace.Kind)
}

func TestFilterCommand_Stdin(t *testing.T) {
	dir := projectWithChanges(t)
	input := `[
		{"tool": "staticcheck", "path": "main.go", "line_start": 5, "line_end": 5, "message": "SA4006"},
		{"tool": "staticcheck", "path": "main.go", "line_start": 3, "line_end": 3, "message": "old"}
	]`

	out, err := execute(t, input, "filter", "--path", dir)
	assert.True(t, errors.Is(err, domain.ErrDirtyResult))

	var kept []domain.Finding
	require.NoError(t, json.Unmarshal([]byte(out), &kept))
	require.Len(t, kept, 1)
	assert.Equal(t, "SA4006", kept[0].Message)
}

func TestFilterCommand_FileInput(t *testing.T) {
	dir := projectWithChanges(t)
	writeFile(t, dir, "lint.json", `[{"path": "main.go", "line_start": 1, "line_end": 2, "message": "old"}]`)

	out, err := execute(t, "", "filter", "--path", dir, "-i", filepath.Join(dir, "lint.json"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestFilterCommand_RejectsBadFindings(t *testing.T) {
	dir := projectWithChanges(t)

	_, err := execute(t, `[{"path": "", "line_start": 1, "line_end": 1}]`, "filter", "--path", dir)
	assert.ErrorContains(t, err, "valid line range")

	_, err = execute(t, `{"not": "an array"}`, "filter", "--path", dir)
	assert.ErrorContains(t, err, "decoding findings")
}

func TestFixCommand_DryRunCached(t *testing.T) {
	dir := projectWithChanges(t)
	_, err := execute(t, "", "check", "--path", dir, "-w")
	require.NoError(t, err)

	out, err := execute(t, "", "fix", "--path", dir, "--cached", "--dry-run")
	require.NoError(t, err)
	var findings []domain.Finding
	require.NoError(t, json.Unmarshal([]byte(out), &findings))
	assert.Len(t, findings, 1)
}

func TestFixCommand_CachedWithoutReport(t *testing.T) {
	_, err := execute(t, "", "fix", "--path", t.TempDir(), "--cached")
	assert.ErrorContains(t, err, "no cached report")
}

func TestInitCmd_CreatesConfigFile(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "init", "--path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created .scout.yaml")

	data, err := os.ReadFile(filepath.Join(dir, ".scout.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "language: go")
	assert.Contains(t, string(data), "tool: golangci-lint")

	cfg, err := config.New().Load(dir)
	require.NoError(t, err, "generated config must load")
	assert.Equal(t, domain.LanguageGo, cfg.Language)
}

func TestInitCmd_DetectsRust(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Cargo.toml", "[workspace]\nmembers = [\"member1\"]\n")

	_, err := execute(t, "", "init", "--path", dir)
	require.NoError(t, err)

	cfg, err := config.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageRust, cfg.Language)
	assert.Equal(t, domain.ToolClippy, cfg.Tool)
}

func TestInitCmd_FailsIfExists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".scout.yaml", "existing")

	_, err := execute(t, "", "init", "--path", dir)
	assert.ErrorContains(t, err, "already exists")
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".scout.yaml", "old")

	_, err := execute(t, "", "init", "--path", dir, "--force", "--language", "rust")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".scout.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "language: rust")
}

func TestInitCmd_UnknownLanguage(t *testing.T) {
	_, err := execute(t, "", "init", "--path", t.TempDir(), "--language", "cobol")
	assert.ErrorContains(t, err, "unknown language")
}

func TestHistoryCommand_Empty(t *testing.T) {
	out, err := execute(t, "", "history", "--path", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No run history found.")
}
