// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"os"
	"time"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct {
	Stdout io.Writer // Destination when no output file is configured
}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{Stdout: os.Stdout}
}

func (ow *OutWriter) stdout() io.Writer {
	if ow.Stdout == nil {
		return os.Stdout
	}
	return ow.Stdout
}

// WriteReport prints a committer coverage report using the configured output format.
func (ow *OutWriter) WriteReport(result *schema.ReportResult, cfg *contract.Config) error {
	return writeReport(result, cfg, ow.stdout())
}

// WriteCheck prints the outcome of a CI coverage gate.
func (ow *OutWriter) WriteCheck(check *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return writeCheck(check, cfg, duration, ow.stdout())
}

// WriteHistory prints previously recorded analysis runs.
func (ow *OutWriter) WriteHistory(runs []schema.AnalysisRun, cfg *contract.Config) error {
	return writeHistory(runs, cfg, ow.stdout())
}
