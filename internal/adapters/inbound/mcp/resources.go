package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/scoutlint/scout/internal/adapters/outbound/cache"
	"github.com/scoutlint/scout/internal/adapters/outbound/history"
	"github.com/scoutlint/scout/internal/wiring"
)

// registerResources registers all scout MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. scout://config - resolved configuration
	s.AddResource(
		mcplib.NewResource(
			"scout://config",
			"Configuration",
			mcplib.WithResourceDescription("The .scout.yaml configuration with language defaults applied"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)

	// 2. scout://report - last check report
	s.AddResource(
		mcplib.NewResource(
			"scout://report",
			"Last Report",
			mcplib.WithResourceDescription("Findings of the last scout check, filtered to changed lines"),
			mcplib.WithMIMEType("application/json"),
		),
		handleReportResource(projectPath),
	)

	// 3. scout://history - run history
	s.AddResource(
		mcplib.NewResource(
			"scout://history",
			"Run History",
			mcplib.WithResourceDescription("Summary of every past check run"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(projectPath),
	)
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		p, err := wiring.Build(projectPath, wiring.Options{}, nil)
		if err != nil {
			return nil, fmt.Errorf("loading config failed: %w", err)
		}
		return jsonContents("scout://config", p.Config)
	}
}

func handleReportResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		report, err := cache.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading report failed: %w", err)
		}
		if report == nil {
			return nil, fmt.Errorf("no report yet; call scout_check first")
		}
		return jsonContents("scout://report", report)
	}
}

func handleHistoryResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries, err := history.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading history failed: %w", err)
		}
		return jsonContents("scout://history", entries)
	}
}

func jsonContents(uri string, v interface{}) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
