package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

const defaultHistoryLimit = 10

type reportFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.ReportResult, error)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	report  reportFunc
}

func (h *toolHandler) handleGetCommitterCoverage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if f := request.GetString("files", ""); f != "" {
		cfg.CoverageFiles = contract.SplitList(f)
	}
	if f := request.GetString("format", ""); f != "" {
		format := schema.CoverageFormat(f)
		if _, ok := schema.ValidCoverageFormats[format]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid format %q", f)), nil
		}
		cfg.Format = format
	}
	if args := request.GetArguments(); args["min_threshold"] != nil {
		threshold := request.GetFloat("min_threshold", cfg.MinThreshold)
		if threshold < 0 || threshold > 100 {
			return mcp.NewToolResultError("--min-threshold must be between 0 and 100"), nil
		}
		cfg.MinThreshold = threshold
	}
	if len(cfg.CoverageFiles) == 0 {
		return mcp.NewToolResultError("--files is required"), nil
	}

	result, err := h.report(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetAnalysisHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultHistoryLimit)
	if limit < 1 {
		return mcp.NewToolResultError("--limit must be at least 1"), nil
	}

	var store contract.AnalysisStore
	if h.mgr != nil {
		store = h.mgr.GetAnalysisStore()
	}
	if store == nil {
		return mcp.NewToolResultError("analysis tracking is disabled"), nil
	}

	runs, err := store.ListRuns(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}
	if runs == nil {
		runs = []schema.AnalysisRun{}
	}

	jsonData, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
