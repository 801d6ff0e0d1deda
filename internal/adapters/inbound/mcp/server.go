package mcp

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/server"
)

// NewScoutMCPServer creates a new MCP server with all scout tools and
// resources registered. The projectPath is the root directory of the project
// whose changes are inspected.
func NewScoutMCPServer(projectPath string, logger hclog.Logger) *server.MCPServer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := server.NewMCPServer(
		"scout",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, logger.Named("mcp"))
	registerResources(s, projectPath)

	return s
}
