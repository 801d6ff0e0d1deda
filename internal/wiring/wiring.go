// Package wiring assembles the scout pipeline from project configuration and
// command-line overrides. It is shared by the CLI and the MCP server.
package wiring

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/scoutlint/scout/internal/adapters/outbound/config"
	"github.com/scoutlint/scout/internal/adapters/outbound/gitdiff"
	"github.com/scoutlint/scout/internal/adapters/outbound/gitinfo"
	"github.com/scoutlint/scout/internal/adapters/outbound/linter"
	"github.com/scoutlint/scout/internal/adapters/outbound/patchfile"
	"github.com/scoutlint/scout/internal/adapters/outbound/workspace"
	"github.com/scoutlint/scout/internal/application"
	"github.com/scoutlint/scout/internal/domain"
)

// Options are per-invocation overrides of .scout.yaml. Zero values keep the
// file's setting; a nil switch keeps it too, a non-nil one replaces it.
type Options struct {
	Target    string
	Tool      string
	Backend   string
	DiffFile  string
	Manifest  string
	Features  domain.FeatureConfig
	BuildTags []string
	Preview   *bool
	PerRoot   *bool
	Verbose   bool

	// Runner executes external tools; nil means subprocesses.
	Runner linter.Runner
}

func (o Options) config() domain.ProjectConfig {
	cfg := domain.ProjectConfig{
		Target:    o.Target,
		Tool:      o.Tool,
		Backend:   o.Backend,
		DiffFile:  o.DiffFile,
		Manifest:  o.Manifest,
		Features:  o.Features,
		BuildTags: o.BuildTags,
	}
	if o.DiffFile != "" && o.Backend == "" {
		cfg.Backend = domain.BackendPatch
	}
	return cfg
}

// switches applies the boolean overrides, which may also turn a setting off.
func (o Options) switches(cfg domain.ProjectConfig) domain.ProjectConfig {
	if o.Preview != nil {
		cfg.Preview = *o.Preview
	}
	if o.PerRoot != nil {
		cfg.PerRoot = *o.PerRoot
	}
	return cfg
}

// Pipeline is a fully resolved configuration and the services built from it.
type Pipeline struct {
	ProjectPath string
	Config      domain.ProjectConfig
	Scout       *application.ScoutService

	runner linter.Runner
	logger hclog.Logger
}

// Build loads .scout.yaml from projectPath, applies opts on top and wires
// every adapter the configuration names.
func Build(projectPath string, opts Options, logger hclog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.New().Load(absPath)
	if err != nil {
		return nil, err
	}
	cfg = config.Resolve(absPath, opts.switches(config.Merge(cfg, opts.config())))
	if err := cfg.Validate(); err != nil {
		return nil, &domain.ConfigError{Err: err}
	}
	logger.Debug("configuration resolved",
		"language", cfg.Language, "tool", cfg.Tool, "backend", cfg.Backend, "target", cfg.Target)

	vcs, err := NewVCS(cfg, logger)
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = linter.NewExecRunner(logger.Named("exec"))
	}
	lint, err := linter.New(cfg, runner, opts.Verbose)
	if err != nil {
		return nil, err
	}

	scoutOpts := []application.ScoutOption{application.WithExcludes(cfg.ExcludePaths)}
	if cfg.Backend != domain.BackendPatch {
		scoutOpts = append(scoutOpts, application.WithCommit(gitinfo.New(nil, logger).ShortCommit))
	}

	return &Pipeline{
		ProjectPath: absPath,
		Config:      cfg,
		Scout:       application.NewScoutService(vcs, workspace.New(cfg), lint, logger, scoutOpts...),
		runner:      runner,
		logger:      logger,
	}, nil
}

// NewVCS returns the diff source named by cfg.Backend.
func NewVCS(cfg domain.ProjectConfig, logger hclog.Logger) (domain.VCS, error) {
	switch cfg.Backend {
	case domain.BackendGitCLI, "":
		return gitdiff.New(cfg.Extensions, logger), nil
	case domain.BackendGoGit:
		return gitinfo.New(cfg.Extensions, logger), nil
	case domain.BackendPatch:
		if cfg.DiffFile == "" {
			return nil, &domain.ConfigError{Err: fmt.Errorf("backend %q requires a diff file", domain.BackendPatch)}
		}
		return patchfile.New(cfg.DiffFile, cfg.Extensions, logger), nil
	}
	return nil, &domain.ConfigError{Err: fmt.Errorf("unknown backend %q", cfg.Backend)}
}

// Healer returns the fix service for the project's language.
func (p *Pipeline) Healer() (*application.HealService, error) {
	h, err := linter.NewHealer(p.Config, p.runner)
	if err != nil {
		return nil, err
	}
	return application.NewHealService(h, p.logger), nil
}
