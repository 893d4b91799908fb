package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// writeHistory dispatches recorded runs based on the output format configured.
func writeHistory(runs []schema.AnalysisRun, cfg *contract.Config, stdout io.Writer) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if runs == nil {
			runs = []schema.AnalysisRun{}
		}
		return writeWithFile(cfg.OutputFile, stdout, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON history")
	case schema.CSVOut:
		header := []string{"analysis_id", "start_time", "duration_ms", "repo_path", "ref", "lines", "covered", "percent_covered", "files_analyzed", "files_skipped"}
		return writeWithFile(cfg.OutputFile, stdout, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
				for _, run := range runs {
					if err := csvWriter.Write([]string{
						strconv.FormatInt(run.AnalysisID, 10),
						run.StartTime.UTC().Format(time.RFC3339),
						formatDurationMs(run.RunDurationMs),
						run.RepoPath,
						run.Ref,
						strconv.Itoa(run.Lines),
						strconv.Itoa(run.Covered),
						fmtFloat(run.Percent()),
						strconv.Itoa(run.FilesAnalyzed),
						strconv.Itoa(run.FilesSkipped),
					}); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV history")
	default:
		return writeWithFile(cfg.OutputFile, stdout, func(w io.Writer) error {
			return writeHistoryTable(w, runs, fmtPercent)
		}, "Wrote history table")
	}
}

func writeHistoryTable(w io.Writer, runs []schema.AnalysisRun, fmtPercent func(float64) string) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No analysis runs recorded")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Started", "Duration", "Ref", "Lines", "Covered", "% Covered", "Files"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, run := range runs {
		data = append(data, []string{
			strconv.FormatInt(run.AnalysisID, 10),
			run.StartTime.Local().Format(time.DateTime),
			formatDurationMs(run.RunDurationMs),
			run.Ref,
			strconv.Itoa(run.Lines),
			strconv.Itoa(run.Covered),
			fmtPercent(run.Percent()),
			strconv.Itoa(run.FilesAnalyzed),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func formatDurationMs(ms *int64) string {
	if ms == nil {
		return ""
	}
	return strconv.FormatInt(*ms, 10)
}
