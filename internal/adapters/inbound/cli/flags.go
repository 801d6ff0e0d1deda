package cli

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scoutlint/scout/internal/domain"
	"github.com/scoutlint/scout/internal/wiring"
)

// pipelineFlags are the overrides shared by every command that runs the
// pipeline.
type pipelineFlags struct {
	branch            string
	tool              string
	backend           string
	diffFile          string
	manifest          string
	allFeatures       bool
	noDefaultFeatures bool
	features          []string
	tags              []string
	preview           bool
	perRoot           bool
}

func (f *pipelineFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.branch, "branch", "b", "", "Target branch or ref to diff against (default from config, or master)")
	fs.StringVar(&f.tool, "tool", "", "Analysis tool (golangci-lint, go-vet, clippy, rustfmt, sarif)")
	fs.StringVar(&f.backend, "backend", "", "Diff backend (git, go-git, patch)")
	fs.StringVar(&f.diffFile, "diff-file", "", "Read changes from a unified diff instead of the repository")
	fs.StringVar(&f.manifest, "manifest", "", "Workspace manifest (go.work or Cargo.toml)")
	fs.BoolVar(&f.allFeatures, "all-features", false, "Pass --all-features to cargo")
	fs.BoolVar(&f.noDefaultFeatures, "no-default-features", false, "Pass --no-default-features to cargo")
	fs.StringSliceVar(&f.features, "features", nil, "Cargo features to enable")
	fs.StringSliceVar(&f.tags, "tags", nil, "Go build tags")
	fs.BoolVar(&f.preview, "preview", false, "Use nightly clippy-preview (--preview=false overrides the config file)")
	fs.BoolVar(&f.perRoot, "per-root", false, "Run the tool once per touched workspace root (--per-root=false overrides the config file)")
}

func (f *pipelineFlags) options(fs *pflag.FlagSet, verbose bool) wiring.Options {
	opts := wiring.Options{
		Target:   f.branch,
		Tool:     f.tool,
		Backend:  f.backend,
		DiffFile: f.diffFile,
		Manifest: f.manifest,
		Features: domain.FeatureConfig{
			All:       f.allFeatures,
			NoDefault: f.noDefaultFeatures,
			List:      f.features,
		},
		BuildTags: f.tags,
		Verbose:   verbose,
	}
	// Only flags given on the command line override .scout.yaml, so
	// --per-root=false can turn off a per_root set in the file.
	if fs.Changed("preview") {
		opts.Preview = &f.preview
	}
	if fs.Changed("per-root") {
		opts.PerRoot = &f.perRoot
	}
	return opts
}

// build resolves the pipeline for the command's --path.
func (f *pipelineFlags) build(cmd *cobra.Command) (*wiring.Pipeline, hclog.Logger, error) {
	path, _ := cmd.Flags().GetString("path")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger := wiring.NewLogger(cmd.ErrOrStderr(), verbose)
	p, err := wiring.Build(path, f.options(cmd.Flags(), verbose), logger)
	if err != nil {
		return nil, nil, err
	}
	return p, logger, nil
}
