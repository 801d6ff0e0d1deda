package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	appconfig "github.com/scoutlint/scout/internal/adapters/outbound/config"
	"github.com/scoutlint/scout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".scout.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
language: rust
target: develop
members:
  - member1
  - member2
features:
  all: true
exclude_paths:
  - "benches/**"
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageRust, cfg.Language)
	assert.Equal(t, "develop", cfg.Target)
	assert.Equal(t, []string{"member1", "member2"}, cfg.Members)
	assert.True(t, cfg.Features.All)
	assert.Equal(t, []string{"benches/**"}, cfg.ExcludePaths)
}

func TestYAMLLoader_LanguageMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `language: rust`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.ToolClippy, cfg.Tool)
	assert.Equal(t, []string{".rs"}, cfg.Extensions)
	assert.Equal(t, domain.DefaultTarget, cfg.Target)
}

func TestYAMLLoader_ExplicitValuesOverrideDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
language: go
tool: go-vet
backend: go-git
extensions: [".go", ".tmpl"]
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.ToolGoVet, cfg.Tool)
	assert.Equal(t, domain.BackendGoGit, cfg.Backend)
	assert.Equal(t, []string{".go", ".tmpl"}, cfg.Extensions)
	assert.Equal(t, "go.work", cfg.Manifest)
}

func TestYAMLLoader_SARIFCommand(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
tool: sarif
sarif:
  name: semgrep
  command: ["semgrep", "scan", "--sarif", "--quiet"]
`)
	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.SARIF)
	assert.Equal(t, "semgrep", cfg.SARIF.Name)
	assert.Equal(t, []string{"semgrep", "scan", "--sarif", "--quiet"}, cfg.SARIF.Command)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .scout.yaml")

	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestYAMLLoader_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `tool: pylint`)

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .scout.yaml")
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestYAMLLoader_EmptyFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Language)
}

func TestResolve_DetectsRustFromManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"x\"\n"), 0644))

	cfg := appconfig.Resolve(dir, domain.DefaultConfig())
	assert.Equal(t, domain.LanguageRust, cfg.Language)
	assert.Equal(t, domain.ToolClippy, cfg.Tool)
}

func TestResolve_DefaultsToGo(t *testing.T) {
	cfg := appconfig.Resolve(t.TempDir(), domain.ProjectConfig{Target: "main"})
	assert.Equal(t, domain.LanguageGo, cfg.Language)
	assert.Equal(t, domain.ToolGolangciLint, cfg.Tool)
	assert.Equal(t, "main", cfg.Target)
}

func TestMerge_FlagsAreSticky(t *testing.T) {
	base := domain.DefaultConfigForLanguage(domain.LanguageRust)
	got := appconfig.Merge(base, domain.ProjectConfig{PerRoot: true, Features: domain.FeatureConfig{List: []string{"tls"}}})
	assert.True(t, got.PerRoot)
	assert.Equal(t, []string{"tls"}, got.Features.List)
	assert.Equal(t, domain.ToolClippy, got.Tool)
}

func TestResolve_ToolImpliesLanguage(t *testing.T) {
	cfg := appconfig.Resolve(t.TempDir(), domain.ProjectConfig{Tool: domain.ToolRustfmt})
	assert.Equal(t, domain.LanguageRust, cfg.Language)
	assert.Equal(t, domain.ToolRustfmt, cfg.Tool)
	assert.NoError(t, cfg.Validate())
}
