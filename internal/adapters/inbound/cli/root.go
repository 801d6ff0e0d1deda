package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scoutlint/scout/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Lint only the lines you changed",
		Long: "scout runs your linter on the parts of the project touched by your branch " +
			"and reports only the findings that overlap lines you added.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("path", ".", "Project path")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging and tool output")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newFixCmd())
	cmd.AddCommand(newSectionsCmd())
	cmd.AddCommand(newFilterCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. Errors other than remaining findings are printed to
// stderr; any error means a non-zero exit.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil && !errors.Is(err, domain.ErrDirtyResult) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
