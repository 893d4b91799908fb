package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// writeCheck prints a concise summary suited to CI logs.
func writeCheck(check *schema.CheckResult, cfg *contract.Config, duration time.Duration, w io.Writer) error {
	_, fmtPercent := createFormatters(cfg.Precision)
	lines, covered, percent := totals(check.Report)

	status := contract.FailValue
	if check.Passed {
		status = contract.PassValue
	}
	if cfg.UseColors {
		c := contract.FailColor
		if check.Passed {
			c = contract.PassColor
		}
		status = c.Sprint(status)
	}

	if _, err := fmt.Fprintf(w, "Coverage check %s (threshold %s)\n", status, fmtPercent(check.MinThreshold)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total coverage: %d / %d (%s)\n", covered, lines, fmtPercent(percent)); err != nil {
		return err
	}
	if check.CheckTotal && !check.TotalPassed {
		if _, err := fmt.Fprintln(w, "Total coverage is below the threshold"); err != nil {
			return err
		}
	}
	if len(check.Failed) > 0 {
		if _, err := fmt.Fprintf(w, "%d contributors below the threshold:\n", len(check.Failed)); err != nil {
			return err
		}
		for _, row := range check.Failed {
			name := row.Key
			if row.Username != "" {
				name = row.Username
			}
			if _, err := fmt.Fprintf(w, "  - %s: %d / %d (%s)\n", name, row.Covered, row.Lines, fmtPercent(row.Percent())); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "Check completed in %v\n", duration.Round(time.Millisecond))
	return err
}
