// Package contract provides interfaces and shared utilities for the internal architecture of ccstats.
package contract

import (
	"context"
	"time"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// CoverageSource yields the per-line coverage of every file named by one or
// more coverage reports.
type CoverageSource interface {
	// Files returns the covered files. A failure to read or decode a report
	// is returned as a *schema.SourceError.
	Files(ctx context.Context) ([]schema.FileCoverage, error)
}

// BlameSource resolves who last touched each line of a file.
type BlameSource interface {
	// Lookup returns the blame of path. A path outside version control yields
	// a *schema.BlameError of kind schema.BlameNotTracked; any other error is fatal.
	Lookup(ctx context.Context, path string) (*schema.FileBlame, error)
}

// GitClient defines the Git operations needed for attribution.
// This allows the analysis logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its standard output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// ResolveRef returns the full commit hash a reference points to.
	ResolveRef(ctx context.Context, repoPath string, ref string) (string, error)

	// ListFilesAtRef returns every tracked file in the repository at ref.
	ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error)

	// GetFileBlame returns the porcelain blame output of path at ref.
	GetFileBlame(ctx context.Context, repoPath string, ref string, path string) ([]byte, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetBlameStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and their contributor stats.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error)

	// RecordContributorStats stores the per-contributor totals of a run
	RecordContributorStats(analysisID int64, stats []schema.ContributorStat) error

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, summary *schema.Summary, filesAnalyzed, filesSkipped int) error

	// ListRuns returns the most recent runs, newest first. A limit of 0 returns every run.
	ListRuns(limit int) ([]schema.AnalysisRun, error)

	// ListContributorStats returns the stats recorded for a run, or for every run when analysisID is 0
	ListContributorStats(analysisID int64) ([]schema.ContributorStatRecord, error)

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// Close closes the underlying connection
	Close() error
}
