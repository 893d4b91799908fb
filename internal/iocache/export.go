package iocache

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/parquet"
)

// Output file suffixes written by ExportAnalysis.
const (
	analysisRunsSuffix     = ".analysis_runs.parquet"
	contributorStatsSuffix = ".contributor_stats.parquet"
)

// ExecuteAnalysisExport exports the analysis history of the global manager.
func ExecuteAnalysisExport(outputFile string, w io.Writer) error {
	return ExportAnalysis(Manager.GetAnalysisStore(), outputFile, w)
}

// ExportAnalysis writes every run and contributor record of store to two
// Parquet files prefixed by outputFile, reporting progress on w.
func ExportAnalysis(store contract.AnalysisStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is disabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total contributor records: %d\n", status.TableSizes[contributorStatsTable])

	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	stats, err := store.ListContributorStats(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve contributor stats: %w", err)
	}

	runsFile := outputFile + analysisRunsSuffix
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRuns(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	statsFile := outputFile + contributorStatsSuffix
	if err := parquet.WriteContributorRowsParquet(parquet.ConvertContributorStatRecords(stats), statsFile); err != nil {
		return fmt.Errorf("failed to write contributor stats: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d contributor records to: %s\n", len(stats), statsFile)
	_, _ = fmt.Fprintf(w, "Export finished at %s\n", time.Now().Format(time.RFC3339))
	return nil
}
