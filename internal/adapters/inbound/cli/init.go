package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scoutlint/scout/internal/adapters/outbound/config"
	"github.com/scoutlint/scout/internal/domain"
)

func newInitCmd() *cobra.Command {
	var (
		language string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .scout.yaml configuration file",
		Long:  "Create a .scout.yaml with the defaults for your project language.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, config.FileName)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			lang := domain.Language(language)
			if language == "" {
				lang = config.DetectLanguage(absPath)
			}
			if err := (domain.ProjectConfig{Language: lang}).Validate(); err != nil {
				return err
			}

			if err := os.WriteFile(dest, []byte(generateConfig(lang)), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "Project language (go, rust); detected when empty")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .scout.yaml")

	return cmd
}

func generateConfig(lang domain.Language) string {
	cfg := domain.DefaultConfigForLanguage(lang)

	var b strings.Builder
	b.WriteString("# scout configuration\n# See: https://github.com/scoutlint/scout\n\n")
	fmt.Fprintf(&b, "language: %s\n", cfg.Language)
	fmt.Fprintf(&b, "target: %s\n", cfg.Target)
	fmt.Fprintf(&b, "tool: %s\n", cfg.Tool)
	fmt.Fprintf(&b, "backend: %s\n", cfg.Backend)
	fmt.Fprintf(&b, "manifest: %s\n", cfg.Manifest)
	b.WriteString("extensions:\n")
	for _, ext := range cfg.Extensions {
		fmt.Fprintf(&b, "  - %s\n", ext)
	}
	b.WriteString("\n")

	b.WriteString(`# Run the tool once per touched workspace root.
# per_root: true

# members:
#   - api
#   - worker

# exclude_paths:
#   - "vendor/**"
#   - "**/*.pb.go"
`)

	if cfg.Language == domain.LanguageRust {
		b.WriteString(`
# features:
#   all: false
#   no_default: false
#   list: [tls]
# preview: false
`)
	} else {
		b.WriteString(`
# build_tags: [integration]

# Any command printing SARIF 2.1.0 can be the tool:
# tool: sarif
# sarif:
#   command: [gosec, -fmt, sarif, ./...]
`)
	}

	return b.String()
}
