package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/scoutlint/scout/internal/adapters/outbound/cache"
	"github.com/scoutlint/scout/internal/adapters/outbound/history"
	"github.com/scoutlint/scout/internal/domain"
	"github.com/scoutlint/scout/internal/wiring"
)

// registerTools registers all scout MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, logger hclog.Logger) {
	// 1. scout_sections
	s.AddTool(
		mcplib.NewTool("scout_sections",
			mcplib.WithDescription("Returns the line ranges added on the current branch against a target ref, and the workspace roots they touch"),
			mcplib.WithString("target", mcplib.Description("Branch or ref to diff against (default from .scout.yaml, or master)")),
		),
		handleSections(projectPath, logger),
	)

	// 2. scout_filter
	s.AddTool(
		mcplib.NewTool("scout_filter",
			mcplib.WithDescription("Keeps only the findings that overlap lines added against the target ref. Findings are a JSON array of {path, line_start, line_end, message}."),
			mcplib.WithString("findings",
				mcplib.Required(),
				mcplib.Description("JSON array of findings with repo-relative paths"),
			),
			mcplib.WithString("target", mcplib.Description("Branch or ref to diff against")),
		),
		handleFilter(projectPath, logger),
	)

	// 3. scout_check
	s.AddTool(
		mcplib.NewTool("scout_check",
			mcplib.WithDescription("Runs the configured linter on the touched roots and returns only the findings on changed lines"),
			mcplib.WithString("target", mcplib.Description("Branch or ref to diff against")),
			mcplib.WithString("tool", mcplib.Description("Override the analysis tool (golangci-lint, go-vet, clippy, rustfmt, sarif)")),
		),
		handleCheck(projectPath, logger),
	)

	// 4. scout_fix
	s.AddTool(
		mcplib.NewTool("scout_fix",
			mcplib.WithDescription("Applies the language's auto-fixer to the findings of the last scout_check"),
		),
		handleFix(projectPath, logger),
	)
}

func pipeline(projectPath string, request mcplib.CallToolRequest, logger hclog.Logger) (*wiring.Pipeline, error) {
	args := request.GetArguments()
	opts := wiring.Options{}
	opts.Target, _ = args["target"].(string)
	opts.Tool, _ = args["tool"].(string)
	return wiring.Build(projectPath, opts, logger)
}

func handleSections(projectPath string, logger hclog.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		p, err := pipeline(projectPath, request, logger)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		plan, err := p.Scout.Plan(p.ProjectPath, p.Config.Target)
		if err != nil {
			return errorResult(fmt.Sprintf("computing sections failed: %v", err)), nil
		}
		return jsonResult(plan)
	}
}

func handleFilter(projectPath string, logger hclog.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		raw, err := request.RequireString("findings")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		var findings []domain.Finding
		if err := json.Unmarshal([]byte(raw), &findings); err != nil {
			return errorResult(fmt.Sprintf("findings must be a JSON array: %v", err)), nil
		}

		p, err := pipeline(projectPath, request, logger)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		kept, err := p.Scout.Filter(p.ProjectPath, p.Config.Target, findings)
		if err != nil {
			return errorResult(fmt.Sprintf("filter failed: %v", err)), nil
		}
		return jsonResult(kept)
	}
}

func handleCheck(projectPath string, logger hclog.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		p, err := pipeline(projectPath, request, logger)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		report, err := p.Scout.Run(p.ProjectPath, p.Config.Target)
		if err != nil {
			return errorResult(fmt.Sprintf("check failed: %v", err)), nil
		}

		if err := cache.New().Save(p.ProjectPath, report); err != nil {
			logger.Warn("caching report", "error", err)
		}
		if err := history.New().Save(p.ProjectPath, history.EntryFor(report)); err != nil {
			logger.Warn("saving history", "error", err)
		}
		return jsonResult(report)
	}
}

func handleFix(projectPath string, logger hclog.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		p, err := pipeline(projectPath, request, logger)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		store := cache.New()
		report, err := store.Load(p.ProjectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading cached report failed: %v", err)), nil
		}
		if report == nil {
			return errorResult("no cached report; call scout_check first"), nil
		}

		heal, err := p.Healer()
		if err != nil {
			return errorResult(err.Error()), nil
		}
		n, err := heal.Apply(p.ProjectPath, report.Findings)
		if err != nil {
			return errorResult(fmt.Sprintf("fix failed: %v", err)), nil
		}
		if n > 0 {
			if err := store.Invalidate(p.ProjectPath); err != nil {
				logger.Warn("invalidating cached report", "error", err)
			}
		}
		return jsonResult(map[string]int{"fixed": n})
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
