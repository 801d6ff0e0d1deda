package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/scoutlint/scout/internal/adapters/inbound/mcp"
	"github.com/scoutlint/scout/internal/wiring"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the scout MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start scout MCP server (stdio)",
		Long: "Start the scout MCP server using stdio transport. This lets coding assistants list the " +
			"lines changed on a branch and filter lint findings down to them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			verbose, _ := cmd.Flags().GetBool("verbose")

			// stdout carries the protocol; logs go to stderr.
			logger := wiring.NewLogger(cmd.ErrOrStderr(), verbose)
			s := mcpadapter.NewScoutMCPServer(path, logger)
			return server.ServeStdio(s)
		},
	}
	return cmd
}
