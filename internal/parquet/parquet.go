// Package parquet exports committer coverage data to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// ContributorRow is the coverage of one contributor in one run.
// It maps to the ccstats_contributor_stats table and to a ranked report row.
type ContributorRow struct {
	// AnalysisID references the parent analysis run (0 when untracked)
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// Rank is the position in the report, 0 for exported history
	Rank int32 `parquet:"rank,snappy"`

	// Contributor is the attribution key, usually an email
	Contributor string `parquet:"contributor,snappy"`

	// Username is the resolved platform login (nullable)
	Username *string `parquet:"username,optional,snappy"`

	Lines          int32   `parquet:"lines_total,snappy"`
	Covered        int32   `parquet:"lines_covered,snappy"`
	PercentCovered float64 `parquet:"percent_covered,snappy"`

	// Status is "pass" or "fail" against the threshold, empty for history
	Status string `parquet:"status,snappy"`

	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
}

// AnalysisRun is a single tracked run. It maps to the ccstats_analysis_runs table.
type AnalysisRun struct {
	AnalysisID     int64      `parquet:"analysis_id,snappy"`
	StartTime      time.Time  `parquet:"start_time,snappy"`
	EndTime        *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs  *int64     `parquet:"run_duration_ms,optional,snappy"`
	RepoPath       string     `parquet:"repo_path,snappy"`
	Ref            string     `parquet:"ref,snappy"`
	Lines          int32      `parquet:"lines_total,snappy"`
	Covered        int32      `parquet:"lines_covered,snappy"`
	PercentCovered float64    `parquet:"percent_covered,snappy"`
	FilesAnalyzed  int32      `parquet:"files_analyzed,snappy"`
	FilesSkipped   int32      `parquet:"files_skipped,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// writeParquet writes rows to outputPath with a schema inferred from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteContributorRowsParquet writes contributor rows to a Parquet file.
func WriteContributorRowsParquet(data []ContributorRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteAnalysisRunsParquet writes analysis runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertReportRows converts the ranked rows of a report.
func ConvertReportRows(result *schema.ReportResult, at time.Time) []ContributorRow {
	rows := make([]ContributorRow, len(result.Rows))
	for i, r := range result.Rows {
		var username *string
		if r.Username != "" {
			u := r.Username
			username = &u
		}
		rows[i] = ContributorRow{
			AnalysisID:     result.AnalysisID,
			Rank:           int32(r.Rank),
			Contributor:    r.Key,
			Username:       username,
			Lines:          int32(r.Lines),
			Covered:        int32(r.Covered),
			PercentCovered: r.Percent(),
			Status:         string(r.Status),
			AnalysisTime:   at,
		}
	}
	return rows
}

// ConvertContributorStatRecords converts stored contributor stats.
func ConvertContributorStatRecords(records []schema.ContributorStatRecord) []ContributorRow {
	rows := make([]ContributorRow, len(records))
	for i, r := range records {
		rows[i] = ContributorRow{
			AnalysisID:     r.AnalysisID,
			Contributor:    r.Contributor,
			Lines:          int32(r.Lines),
			Covered:        int32(r.Covered),
			PercentCovered: r.Percent(),
			AnalysisTime:   r.AnalysisTime,
		}
	}
	return rows
}

// ConvertAnalysisRuns converts stored analysis runs.
func ConvertAnalysisRuns(records []schema.AnalysisRun) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, r := range records {
		result[i] = AnalysisRun{
			AnalysisID:     r.AnalysisID,
			StartTime:      r.StartTime,
			EndTime:        r.EndTime,
			RunDurationMs:  r.RunDurationMs,
			RepoPath:       r.RepoPath,
			Ref:            r.Ref,
			Lines:          int32(r.Lines),
			Covered:        int32(r.Covered),
			PercentCovered: r.Percent(),
			FilesAnalyzed:  int32(r.FilesAnalyzed),
			FilesSkipped:   int32(r.FilesSkipped),
			ConfigParams:   r.ConfigParams,
		}
	}
	return result
}
