package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/parquet"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// ErrParquetNeedsFile is returned when parquet output is requested without an output file.
var ErrParquetNeedsFile = errors.New("parquet output requires --output-file")

// writeReport dispatches a report based on the output format configured.
func writeReport(result *schema.ReportResult, cfg *contract.Config, stdout io.Writer) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, stdout, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON report"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, stdout, func(w io.Writer) error {
			return writeReportCSV(w, result, fmtFloat)
		}, "Wrote CSV report"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.MarkdownOut:
		if err := writeWithFile(cfg.OutputFile, stdout, func(w io.Writer) error {
			_, err := io.WriteString(w, RenderMarkdown(result))
			return err
		}, "Wrote markdown report"); err != nil {
			return fmt.Errorf("error writing markdown output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return ErrParquetNeedsFile
		}
		rows := parquet.ConvertReportRows(result, time.Now())
		if err := parquet.WriteContributorRowsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		contract.LogInfo(fmt.Sprintf("Wrote parquet report to %s", cfg.OutputFile))
	default:
		if err := writeWithFile(cfg.OutputFile, stdout, func(w io.Writer) error {
			return writeReportTable(w, result, cfg, fmtPercent)
		}, "Wrote table"); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// writeReportCSV writes one row per ranked contributor.
func writeReportCSV(w io.Writer, result *schema.ReportResult, fmtFloat func(float64) string) error {
	header := []string{"rank", "contributor", "username", "lines", "covered", "percent_covered", "status"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, row := range result.Rows {
			rec := []string{
				strconv.Itoa(row.Rank),
				row.Key,
				row.Username,
				strconv.Itoa(row.Lines),
				strconv.Itoa(row.Covered),
				fmtFloat(row.Percent()),
				string(row.Status),
			}
			if err := csvWriter.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeReportTable writes the human-readable table with a totals footer.
func writeReportTable(w io.Writer, result *schema.ReportResult, cfg *contract.Config, fmtPercent func(float64) string) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Contributor"}
	if cfg.ResolveUsers {
		headers = append(headers, "User")
	}
	headers = append(headers, "Lines", "Covered", "% Covered", "Status")
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}

	keyWidth := GetMaxTableKeyWidth(cfg)
	var data [][]string
	for _, row := range result.Rows {
		rec := []string{strconv.Itoa(row.Rank), contract.TruncateKey(row.Key, keyWidth)}
		if cfg.ResolveUsers {
			rec = append(rec, row.Username)
		}
		rec = append(rec,
			strconv.Itoa(row.Lines),
			strconv.Itoa(row.Covered),
			fmtPercent(row.Percent()),
			label(row.Percent(), result.MinThreshold),
		)
		data = append(data, rec)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	lines, covered, percent := totals(result)
	if _, err := fmt.Fprintf(w, "Total coverage: %d / %d (%s) across %d contributors\n",
		covered, lines, fmtPercent(percent), len(result.Rows)); err != nil {
		return err
	}
	if len(result.FilesSkipped) > 0 {
		if _, err := fmt.Fprintf(w, "Skipped %d files (%d lines) not attributable to a commit\n",
			len(result.FilesSkipped), result.LinesSkipped); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Analyzed %d files in %v with %d workers. Cache backend: %s\n",
		result.FilesAnalyzed, result.Duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
	return err
}

func totals(result *schema.ReportResult) (lines, covered int, percent float64) {
	if result.Summary == nil {
		return 0, 0, 0
	}
	return result.Summary.Totals()
}
