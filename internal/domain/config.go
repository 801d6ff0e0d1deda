package domain

import (
	"fmt"
	"strings"
)

// Language identifies the source language whose changes are tracked.
type Language string

const (
	LanguageGo   Language = "go"
	LanguageRust Language = "rust"
)

// ValidLanguages enumerates all recognized languages.
var ValidLanguages = []Language{LanguageGo, LanguageRust}

const (
	ToolGolangciLint = "golangci-lint"
	ToolGoVet        = "go-vet"
	ToolClippy       = "clippy"
	ToolRustfmt      = "rustfmt"
	ToolSARIF        = "sarif"
)

// ValidTools enumerates all analysis-tool adapters.
var ValidTools = []string{ToolGolangciLint, ToolGoVet, ToolClippy, ToolRustfmt, ToolSARIF}

const (
	BackendGitCLI = "git"
	BackendGoGit  = "go-git"
	BackendPatch  = "patch" // reads DiffFile instead of a repository
)

// ValidBackends enumerates the VCS backends.
var ValidBackends = []string{BackendGitCLI, BackendGoGit, BackendPatch}

// DefaultTarget is the ref compared against when none is configured.
const DefaultTarget = "master"

// ProjectConfig holds project-level configuration loaded from .scout.yaml.
type ProjectConfig struct {
	Language     Language       `yaml:"language"      json:"language,omitempty"`
	Target       string         `yaml:"target"        json:"target,omitempty"`
	Tool         string         `yaml:"tool"          json:"tool,omitempty"`
	Backend      string         `yaml:"backend"       json:"backend,omitempty"`
	DiffFile     string         `yaml:"diff_file"     json:"diff_file,omitempty"`
	Extensions   []string       `yaml:"extensions"    json:"extensions,omitempty"`
	Manifest     string         `yaml:"manifest"      json:"manifest,omitempty"`
	Members      []string       `yaml:"members"       json:"members,omitempty"`
	PerRoot      bool           `yaml:"per_root"      json:"per_root,omitempty"`
	ExcludePaths []string       `yaml:"exclude_paths" json:"exclude_paths,omitempty"`
	Features     FeatureConfig  `yaml:"features"      json:"features,omitempty"`
	BuildTags    []string       `yaml:"build_tags"    json:"build_tags,omitempty"`
	SARIF        *SARIFCommand  `yaml:"sarif,omitempty" json:"sarif,omitempty"`
	Preview      bool           `yaml:"preview"       json:"preview,omitempty"`
}

// FeatureConfig mirrors the cargo feature flags passed to clippy.
type FeatureConfig struct {
	All       bool     `yaml:"all"        json:"all,omitempty"`
	NoDefault bool     `yaml:"no_default" json:"no_default,omitempty"`
	List      []string `yaml:"list"       json:"list,omitempty"`
}

// Active reports whether any flag changes the tool's per-root output.
func (f FeatureConfig) Active() bool {
	return f.All || f.NoDefault || len(f.List) > 0
}

// SARIFCommand is an arbitrary command printing a SARIF 2.1.0 log to stdout.
type SARIFCommand struct {
	Command []string `yaml:"command" json:"command"`
	Name    string   `yaml:"name"    json:"name,omitempty"`
}

// DefaultConfig returns a zero-value config that changes nothing.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{}
}

// DefaultConfigForLanguage returns sensible defaults for a language.
func DefaultConfigForLanguage(lang Language) ProjectConfig {
	cfg := ProjectConfig{
		Language: lang,
		Target:   DefaultTarget,
		Backend:  BackendGitCLI,
	}

	switch lang {
	case LanguageRust:
		cfg.Tool = ToolClippy
		cfg.Extensions = []string{".rs"}
		cfg.Manifest = "Cargo.toml"
	default: // go or unrecognized
		cfg.Language = LanguageGo
		cfg.Tool = ToolGolangciLint
		cfg.Extensions = []string{".go"}
		cfg.Manifest = "go.work"
	}

	return cfg
}

// MatchesExtension reports whether path has one of the configured extensions.
// An empty extension list matches everything.
func (c ProjectConfig) MatchesExtension(path string) bool {
	if len(c.Extensions) == 0 {
		return true
	}
	for _, ext := range c.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	if c.Language != "" && !contains(languageNames(), string(c.Language)) {
		return fmt.Errorf("unknown language %q (valid: go, rust)", c.Language)
	}

	if c.Tool != "" {
		if !contains(ValidTools, c.Tool) {
			return fmt.Errorf("unknown tool %q (valid: %s)", c.Tool, strings.Join(ValidTools, ", "))
		}
		if lang := ToolLanguage(c.Tool); lang != "" && c.Language != "" && lang != c.Language {
			return fmt.Errorf("tool %q cannot analyze %s sources", c.Tool, c.Language)
		}
	}

	if c.Backend != "" && !contains(ValidBackends, c.Backend) {
		return fmt.Errorf("unknown backend %q (valid: %s)", c.Backend, strings.Join(ValidBackends, ", "))
	}

	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extensions[%d] = %q must start with a dot", i, ext)
		}
	}

	for i, m := range c.Members {
		if strings.TrimSpace(m) == "" {
			return fmt.Errorf("members[%d] must not be empty", i)
		}
	}

	if c.Tool == ToolSARIF && (c.SARIF == nil || len(c.SARIF.Command) == 0) {
		return fmt.Errorf("tool %q requires sarif.command", ToolSARIF)
	}

	if c.Language == LanguageGo && c.Features.Active() {
		return fmt.Errorf("features only apply to rust projects")
	}

	return nil
}

// ToolLanguage returns the language a tool analyzes, or "" for any.
func ToolLanguage(tool string) Language {
	switch tool {
	case ToolGolangciLint, ToolGoVet:
		return LanguageGo
	case ToolClippy, ToolRustfmt:
		return LanguageRust
	}
	return ""
}

func languageNames() []string {
	names := make([]string, len(ValidLanguages))
	for i, l := range ValidLanguages {
		names[i] = string(l)
	}
	return names
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
