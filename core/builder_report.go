package core

import (
	"context"
	"fmt"
	"time"

	"github.com/petrabarus/actions-committer-coverage-stats/core/attrib"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/blame"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/coverage"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// ReportResultBuilder builds the report result using a builder pattern.
type ReportResultBuilder struct {
	ctx    context.Context
	cfg    *contract.Config
	client contract.GitClient
	mgr    contract.CacheManager
	start  time.Time

	coverage     *coverage.Report
	blame        *blame.GitSource
	analysisID   int64
	summary      *schema.Summary
	filesSkipped []string
	linesSkipped int
	rows         []schema.ReportRow
}

// NewReportResultBuilder creates a new builder for report results.
func NewReportResultBuilder(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *ReportResultBuilder {
	return &ReportResultBuilder{
		ctx:    ctx,
		cfg:    cfg,
		client: client,
		mgr:    mgr,
		start:  time.Now(),
	}
}

// LoadCoverage reads and merges every configured coverage report.
func (b *ReportResultBuilder) LoadCoverage() (*ReportResultBuilder, error) {
	report, err := coverage.Load(b.ctx, b.cfg.CoverageFiles, coverage.Options{
		Format:        b.cfg.Format,
		RepoRoot:      b.cfg.RepoPath,
		StripPrefixes: b.cfg.StripPrefixes,
		Excludes:      b.cfg.Excludes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load coverage: %w", err)
	}
	b.coverage = report
	return b, nil
}

// OpenBlame resolves the configured ref and prepares the blame source.
func (b *ReportResultBuilder) OpenBlame() (*ReportResultBuilder, error) {
	var opts []blame.Option
	if b.mgr != nil {
		if store := b.mgr.GetBlameStore(); store != nil {
			opts = append(opts, blame.WithCacheStore(store))
		}
	}
	src, err := blame.New(b.ctx, b.client, b.cfg.RepoPath, b.cfg.Ref, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w. Verify the ref exists in the repository", b.cfg.Ref, err)
	}
	b.blame = src
	return b, nil
}

// BeginTracking starts an analysis run when analysis tracking is configured.
// Tracking failures are warnings and never abort the report.
func (b *ReportResultBuilder) BeginTracking() *ReportResultBuilder {
	store := b.analysisStore()
	if store == nil {
		return b
	}
	id, err := store.BeginAnalysis(b.start, b.cfg.Params())
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return b
	}
	b.analysisID = id
	return b
}

// Attribute credits every covered line to its last author.
func (b *ReportResultBuilder) Attribute() (*ReportResultBuilder, error) {
	summary, err := attrib.Attribute(b.ctx, b.coverage, b.blame,
		attrib.WithWorkers(b.cfg.Workers),
		attrib.WithSkipHook(func(path string) {
			b.filesSkipped = append(b.filesSkipped, path)
		}),
		attrib.WithLineSkipHook(func(string, int) {
			b.linesSkipped++
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to attribute coverage: %w", err)
	}
	b.summary = summary
	return b, nil
}

// RankContributors orders contributors and labels them against the threshold.
func (b *ReportResultBuilder) RankContributors() *ReportResultBuilder {
	b.rows = Rank(b.summary.Contributors(), b.cfg.MinThreshold)
	return b
}

// ResolveUsers fills in platform usernames when configured.
func (b *ReportResultBuilder) ResolveUsers() *ReportResultBuilder {
	if b.cfg.ResolveUsers {
		resolveUsernames(b.ctx, b.cfg, b.rows)
	}
	return b
}

// EndTracking records the contributor totals and closes the analysis run.
func (b *ReportResultBuilder) EndTracking() *ReportResultBuilder {
	store := b.analysisStore()
	if store == nil || b.analysisID <= 0 {
		return b
	}
	if err := store.RecordContributorStats(b.analysisID, b.summary.Contributors()); err != nil {
		logTrackingError("RecordContributorStats", b.analysisID, err)
	}
	if err := store.EndAnalysis(b.analysisID, time.Now(), b.summary, b.filesAnalyzed(), len(b.filesSkipped)); err != nil {
		logTrackingError("EndAnalysis", b.analysisID, err)
	}
	return b
}

// Build finalizes the construction and returns the completed report.
func (b *ReportResultBuilder) Build() *schema.ReportResult {
	return &schema.ReportResult{
		RepoPath:      b.cfg.RepoPath,
		Ref:           b.cfg.Ref,
		CommitHash:    b.blame.Commit(),
		CoverageFiles: b.cfg.CoverageFiles,
		MinThreshold:  b.cfg.MinThreshold,
		FilesAnalyzed: b.filesAnalyzed(),
		FilesSkipped:  b.filesSkipped,
		LinesSkipped:  b.linesSkipped,
		Summary:       b.summary,
		Rows:          b.rows,
		AnalysisID:    b.analysisID,
		Duration:      time.Since(b.start),
	}
}

func (b *ReportResultBuilder) filesAnalyzed() int {
	return b.coverage.Len() - len(b.filesSkipped)
}

func (b *ReportResultBuilder) analysisStore() contract.AnalysisStore {
	if b.mgr == nil {
		return nil
	}
	return b.mgr.GetAnalysisStore()
}

// logTrackingError logs database tracking errors to stderr without disrupting the report.
func logTrackingError(operation string, analysisID int64, err error) {
	contract.LogWarn(fmt.Sprintf("Analysis tracking failed for %s on run %d", operation, analysisID), err)
}
