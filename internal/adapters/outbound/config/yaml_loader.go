package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scoutlint/scout/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file read from the project root.
const FileName = ".scout.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .scout.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .scout.yaml from projectPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	path := filepath.Join(projectPath, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, &domain.ConfigError{Path: path, Err: err}
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, &domain.ConfigError{Path: path, Err: fmt.Errorf("parsing %s: %w", FileName, err)}
	}

	// Validate before merging; catches typos in the user's raw input.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, &domain.ConfigError{Path: path, Err: fmt.Errorf("invalid %s: %w", FileName, err)}
	}

	if cfg.Language != "" {
		cfg = Merge(domain.DefaultConfigForLanguage(cfg.Language), cfg)
	}

	return cfg, nil
}

// Resolve fills every unset field of cfg from the defaults of its language.
// Without an explicit language, the tool decides, then a Cargo.toml at the
// project root means rust.
func Resolve(projectPath string, cfg domain.ProjectConfig) domain.ProjectConfig {
	lang := cfg.Language
	if lang == "" {
		lang = domain.ToolLanguage(cfg.Tool)
	}
	if lang == "" {
		lang = DetectLanguage(projectPath)
	}
	return Merge(domain.DefaultConfigForLanguage(lang), cfg)
}

// DetectLanguage guesses the project language from its root manifest.
func DetectLanguage(projectPath string) domain.Language {
	if _, err := os.Stat(filepath.Join(projectPath, "Cargo.toml")); err == nil {
		return domain.LanguageRust
	}
	return domain.LanguageGo
}

// Merge overlays explicit overrides on top of language defaults.
// Explicit (non-zero) values always win.
func Merge(base, override domain.ProjectConfig) domain.ProjectConfig {
	result := base

	if override.Language != "" {
		result.Language = override.Language
	}
	if override.Target != "" {
		result.Target = override.Target
	}
	if override.Tool != "" {
		result.Tool = override.Tool
	}
	if override.Backend != "" {
		result.Backend = override.Backend
	}
	if override.DiffFile != "" {
		result.DiffFile = override.DiffFile
	}
	if override.Manifest != "" {
		result.Manifest = override.Manifest
	}

	// Explicit lists replace the defaults entirely.
	if len(override.Extensions) > 0 {
		result.Extensions = override.Extensions
	}
	if len(override.Members) > 0 {
		result.Members = override.Members
	}
	if len(override.ExcludePaths) > 0 {
		result.ExcludePaths = override.ExcludePaths
	}
	if len(override.BuildTags) > 0 {
		result.BuildTags = override.BuildTags
	}

	result.PerRoot = base.PerRoot || override.PerRoot
	result.Preview = base.Preview || override.Preview
	if override.Features.Active() {
		result.Features = override.Features
	}
	if override.SARIF != nil {
		result.SARIF = override.SARIF
	}

	return result
}
