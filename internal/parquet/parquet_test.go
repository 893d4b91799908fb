package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll reads every row of a Parquet file written by this package.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{
			name:    "contributor row",
			model:   new(ContributorRow),
			columns: []string{"analysis_id", "rank", "contributor", "username", "lines_total", "lines_covered", "percent_covered", "status", "analysis_time"},
		},
		{
			name:    "analysis run",
			model:   new(AnalysisRun),
			columns: []string{"analysis_id", "start_time", "end_time", "run_duration_ms", "repo_path", "ref", "lines_total", "lines_covered", "percent_covered", "files_analyzed", "files_skipped", "config_params"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteContributorRowsParquet(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	result := &schema.ReportResult{
		AnalysisID: 7,
		Rows: []schema.ReportRow{
			{Rank: 1, Username: "alice", Status: schema.PassStatus, ContributorStat: schema.ContributorStat{Key: "alice@example.com", Lines: 4, Covered: 4}},
			{Rank: 2, Status: schema.FailStatus, ContributorStat: schema.ContributorStat{Key: "bob@example.com", Lines: 4, Covered: 1}},
		},
	}
	rows := ConvertReportRows(result, at)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Username)
	assert.Nil(t, rows[1].Username)

	path := filepath.Join(t.TempDir(), "rows.parquet")
	require.NoError(t, WriteContributorRowsParquet(rows, path))

	got := readAll[ContributorRow](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, int64(7), got[0].AnalysisID)
	assert.Equal(t, "alice@example.com", got[0].Contributor)
	assert.Equal(t, "alice", *got[0].Username)
	assert.Equal(t, 100.0, got[0].PercentCovered)
	assert.Equal(t, "pass", got[0].Status)
	assert.Nil(t, got[1].Username)
	assert.Equal(t, 25.0, got[1].PercentCovered)
	assert.Equal(t, "fail", got[1].Status)
	assert.True(t, at.Equal(got[1].AnalysisTime))
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)
	duration := int64(3000)
	params := `{"ref":"HEAD"}`
	records := []schema.AnalysisRun{
		{AnalysisID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, RepoPath: "/repo", Ref: "HEAD",
			Lines: 10, Covered: 5, FilesAnalyzed: 3, FilesSkipped: 1, ConfigParams: &params},
		{AnalysisID: 2, StartTime: start.Add(time.Hour)},
	}

	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteAnalysisRunsParquet(ConvertAnalysisRuns(records), path))

	got := readAll[AnalysisRun](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, 50.0, got[0].PercentCovered)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Nanosecond)
	assert.Equal(t, duration, *got[0].RunDurationMs)
	assert.Equal(t, params, *got[0].ConfigParams)
	assert.Equal(t, int32(1), got[0].FilesSkipped)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestConvertContributorStatRecords(t *testing.T) {
	at := time.Now()
	rows := ConvertContributorStatRecords([]schema.ContributorStatRecord{
		{AnalysisID: 3, Contributor: "a@example.com", Lines: 3, Covered: 2, AnalysisTime: at},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, int32(0), rows[0].Rank)
	assert.InDelta(t, 66.67, rows[0].PercentCovered, 0.01)
	assert.Empty(t, rows[0].Status)
}

func TestWriteParquetEmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAnalysisRunsParquet([]AnalysisRun{}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "file should contain the schema")
}

func TestWriteParquetInvalidPath(t *testing.T) {
	err := WriteContributorRowsParquet(nil, "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}
