// Package core has core logic for attribution, ranking and checking.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/outwriter"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// ErrCheckFailed is returned by ExecuteCheck when coverage is below the threshold.
var ErrCheckFailed = errors.New("coverage check failed")

// ExecutorFunc defines the function signature for executing the commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// GetReportResults runs the full attribution pipeline for the configured repository.
func GetReportResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.ReportResult, error) {
	return getReportResults(ctx, cfg, contract.NewLocalGitClient(), mgr)
}

func getReportResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.ReportResult, error) {
	builder := NewReportResultBuilder(ctx, cfg, client, mgr)

	if _, err := builder.LoadCoverage(); err != nil {
		return nil, err
	}
	if _, err := builder.OpenBlame(); err != nil {
		return nil, err
	}
	if _, err := builder.Attribute(); err != nil {
		return nil, err
	}
	builder.BeginTracking().RankContributors().ResolveUsers().EndTracking()

	return builder.Build(), nil
}

// ExecuteReport prints the committer coverage report and, when configured,
// posts it as a pull request comment.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeReport(ctx, cfg, contract.NewLocalGitClient(), mgr, outwriter.NewOutWriter())
}

func executeReport(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, ow *outwriter.OutWriter) error {
	result, err := getReportResults(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}
	if err := ow.WriteReport(result, cfg); err != nil {
		return err
	}
	if !cfg.Comment {
		return nil
	}

	posted, err := postPullRequestComment(ctx, cfg, result)
	if err != nil {
		return err
	}
	if !posted {
		contract.LogInfo("Not a pull request, skipping summary")
		return nil
	}
	contract.LogInfo("Posted coverage summary to " + cfg.GitHub.Ref)
	return nil
}

// ExecuteCheck runs the check command for CI gating. It returns an error
// wrapping ErrCheckFailed when any contributor, or the total when
// CheckTotal is set, is below the minimum threshold.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeCheck(ctx, cfg, contract.NewLocalGitClient(), mgr, outwriter.NewOutWriter())
}

func executeCheck(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, ow *outwriter.OutWriter) error {
	start := time.Now()
	result, err := getReportResults(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}

	check := buildCheckResult(result, cfg)
	if err := ow.WriteCheck(check, cfg, time.Since(start)); err != nil {
		return err
	}
	if !check.Passed {
		return fmt.Errorf("%w: %d contributors below %.2f%%", ErrCheckFailed, len(check.Failed), cfg.MinThreshold)
	}
	return nil
}

// buildCheckResult gates the report on the minimum threshold.
// A report with no attributed lines has nothing to gate and passes.
func buildCheckResult(result *schema.ReportResult, cfg *contract.Config) *schema.CheckResult {
	lines, covered, _ := result.Summary.Totals()
	totalPassed := lines == 0 || contract.MeetsCoverage(covered, lines, cfg.MinThreshold)
	failed := result.FailedRows()

	passed := len(failed) == 0
	if cfg.CheckTotal && !totalPassed {
		passed = false
	}
	return &schema.CheckResult{
		Passed:       passed,
		TotalPassed:  totalPassed,
		CheckTotal:   cfg.CheckTotal,
		MinThreshold: cfg.MinThreshold,
		Report:       result,
		Failed:       failed,
	}
}
