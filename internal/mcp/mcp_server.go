// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/petrabarus/actions-committer-coverage-stats/core"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
)

// NewMCPServer initializes and configures the ccstats MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	return newServer(&toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		report:  core.GetReportResults,
	})
}

func newServer(h *toolHandler) *server.MCPServer {
	s := server.NewMCPServer(
		"Committer Coverage Stats Server",
		"1.0.0",
		server.WithLogging(),
	)

	// --- 1. Tool: get_committer_coverage ---
	s.AddTool(mcp.NewTool("get_committer_coverage",
		mcp.WithDescription("Attribute line coverage to the committers who last touched each line, ranked by covered percentage."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
		mcp.WithString("files", mcp.Description("Comma-separated coverage report paths. Defaults to the configured files.")),
		mcp.WithString("format", mcp.Description("Coverage report format. Defaults to 'auto'."), mcp.Enum("auto", "cobertura", "gocover", "clover")),
		mcp.WithNumber("min_threshold", mcp.Description("Minimum covered percentage a committer needs to pass.")),
	), h.handleGetCommitterCoverage)

	// --- 2. Tool: get_analysis_history ---
	s.AddTool(mcp.NewTool("get_analysis_history",
		mcp.WithDescription("List previously recorded analysis runs, newest first."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of runs returned. Defaults to 10.")),
	), h.handleGetAnalysisHistory)

	return s
}

// StartMCPServer starts the ccstats MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
