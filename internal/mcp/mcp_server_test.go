package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/iocache"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, h *toolHandler, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := newServer(h).GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestNewMCPServerRegistersTools(t *testing.T) {
	s := NewMCPServer(&contract.Config{RepoPath: "."}, nil)
	assert.NotNil(t, s.GetTool("get_committer_coverage"))
	assert.NotNil(t, s.GetTool("get_analysis_history"))
}

func TestGetCommitterCoverage(t *testing.T) {
	baseCfg := &contract.Config{
		RepoPath:      "/repo",
		CoverageFiles: []string{"coverage.xml"},
		Format:        schema.AutoFormat,
		MinThreshold:  80,
	}

	t.Run("overrides config", func(t *testing.T) {
		var got *contract.Config
		h := &toolHandler{baseCfg: baseCfg, report: func(_ context.Context, cfg *contract.Config, _ contract.CacheManager) (*schema.ReportResult, error) {
			got = cfg
			s := schema.NewSummary()
			s.Record("a@example.com", true)
			return &schema.ReportResult{Ref: "HEAD", Summary: s, MinThreshold: cfg.MinThreshold}, nil
		}}

		res := callTool(t, h, "get_committer_coverage", map[string]any{
			"repo_path":     "/other",
			"files":         "a.xml, b.out",
			"format":        "gocover",
			"min_threshold": 50.0,
		})
		assert.False(t, res.IsError)
		assert.Contains(t, resultText(res), `"percent_covered": 100`)

		require.NotNil(t, got)
		assert.Equal(t, "/other", got.RepoPath)
		assert.Equal(t, []string{"a.xml", "b.out"}, got.CoverageFiles)
		assert.Equal(t, schema.GoCoverFormat, got.Format)
		assert.Equal(t, 50.0, got.MinThreshold)
		assert.Equal(t, 80.0, baseCfg.MinThreshold, "base config is not mutated")
	})

	t.Run("validation errors", func(t *testing.T) {
		h := &toolHandler{baseCfg: baseCfg, report: func(context.Context, *contract.Config, contract.CacheManager) (*schema.ReportResult, error) {
			t.Fatal("report should not run")
			return nil, nil
		}}

		res := callTool(t, h, "get_committer_coverage", map[string]any{"format": "lcov"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), `invalid format "lcov"`)

		res = callTool(t, h, "get_committer_coverage", map[string]any{"min_threshold": 101.0})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "--min-threshold must be between 0 and 100")
	})

	t.Run("analysis failure", func(t *testing.T) {
		h := &toolHandler{baseCfg: baseCfg, report: func(context.Context, *contract.Config, contract.CacheManager) (*schema.ReportResult, error) {
			return nil, errors.New("not a git repository")
		}}
		res := callTool(t, h, "get_committer_coverage", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "analysis failed: not a git repository")
	})
}

func TestGetAnalysisHistory(t *testing.T) {
	t.Run("tracking disabled", func(t *testing.T) {
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetAnalysisStore").Return(nil)
		res := callTool(t, &toolHandler{baseCfg: &contract.Config{}, mgr: mgr}, "get_analysis_history", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "analysis tracking is disabled")
	})

	t.Run("lists runs", func(t *testing.T) {
		store := &iocache.MockAnalysisStore{}
		store.On("ListRuns", 3).Return([]schema.AnalysisRun{{AnalysisID: 9, Ref: "HEAD", Lines: 4, Covered: 2}}, nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetAnalysisStore").Return(store)

		res := callTool(t, &toolHandler{baseCfg: &contract.Config{}, mgr: mgr}, "get_analysis_history", map[string]any{"limit": 3.0})
		assert.False(t, res.IsError)
		assert.Contains(t, resultText(res), `"analysis_id": 9`)
		store.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		res := callTool(t, &toolHandler{baseCfg: &contract.Config{}}, "get_analysis_history", map[string]any{"limit": 0.0})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "--limit must be at least 1")
	})
}
