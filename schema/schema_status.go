package schema

import "time"

// CacheStatus represents the status of the blame cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AnalysisStatus represents the status of the analysis store.
type AnalysisStatus struct {
	Backend           string           `json:"backend"`
	Connected         bool             `json:"connected"`
	TotalRuns         int              `json:"total_runs"`
	LastRunID         int64            `json:"last_run_id"`
	LastRunTime       time.Time        `json:"last_run_time"`
	OldestRunTime     time.Time        `json:"oldest_run_time"`
	TotalContributors int              `json:"total_contributors"`
	TableSizes        map[string]int64 `json:"table_sizes"`
}

// AnalysisRun represents a row from the ccstats_analysis_runs table.
type AnalysisRun struct {
	AnalysisID    int64      `json:"analysis_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	RunDurationMs *int64     `json:"run_duration_ms,omitempty"`
	RepoPath      string     `json:"repo_path"`
	Ref           string     `json:"ref"`
	Lines         int        `json:"lines"`
	Covered       int        `json:"covered"`
	FilesAnalyzed int        `json:"files_analyzed"`
	FilesSkipped  int        `json:"files_skipped"`
	ConfigParams  *string    `json:"config_params,omitempty"`
}

// Percent returns the covered percentage of the run.
func (r AnalysisRun) Percent() float64 {
	return Percent(r.Covered, r.Lines)
}

// ContributorStatRecord represents a row from the ccstats_contributor_stats table.
type ContributorStatRecord struct {
	AnalysisID   int64     `json:"analysis_id"`
	Contributor  string    `json:"contributor"`
	Lines        int       `json:"lines"`
	Covered      int       `json:"covered"`
	AnalysisTime time.Time `json:"analysis_time"`
}

// Percent returns the covered percentage of the contributor in that run.
func (r ContributorStatRecord) Percent() float64 {
	return Percent(r.Covered, r.Lines)
}
