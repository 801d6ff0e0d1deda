package linter

import (
	"fmt"
	"path/filepath"

	"github.com/scoutlint/scout/internal/domain"
)

// New builds the linter named by cfg.Tool.
func New(cfg domain.ProjectConfig, runner Runner, verbose bool) (domain.Linter, error) {
	switch cfg.Tool {
	case domain.ToolGolangciLint:
		return NewGolangciLint(runner, cfg.BuildTags), nil
	case domain.ToolGoVet:
		return NewGoVet(runner, cfg.BuildTags), nil
	case domain.ToolClippy:
		return NewClippy(runner, ClippyOptions{
			Features:     cfg.Features,
			Preview:      cfg.Preview,
			Verbose:      verbose,
			WorkspaceDir: manifestDir(cfg.Manifest),
		}), nil
	case domain.ToolRustfmt:
		return NewRustfmt(runner), nil
	case domain.ToolSARIF:
		if cfg.SARIF == nil || len(cfg.SARIF.Command) == 0 {
			return nil, &domain.ConfigError{Err: fmt.Errorf("tool %q requires sarif.command", domain.ToolSARIF)}
		}
		return NewSARIFCommand(runner, *cfg.SARIF), nil
	}
	return nil, &domain.ConfigError{Err: fmt.Errorf("unknown tool %q", cfg.Tool)}
}

// NewHealer builds the auto-fixer for cfg.Language: rustfmt for rust, gofmt
// for go.
func NewHealer(cfg domain.ProjectConfig, runner Runner) (domain.Healer, error) {
	switch cfg.Language {
	case domain.LanguageRust:
		return NewRustfmt(runner), nil
	case domain.LanguageGo, "":
		return NewGofmt(runner), nil
	}
	return nil, &domain.ConfigError{Err: fmt.Errorf("no fixer for language %q", cfg.Language)}
}

func manifestDir(manifest string) string {
	if manifest == "" {
		return "."
	}
	return filepath.ToSlash(filepath.Dir(manifest))
}
