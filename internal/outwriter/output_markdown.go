package outwriter

import (
	"fmt"
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

const markdownFooter = "⭐ [github-action-committer-coverage-stats](https://github.com/petrabarus/github-action-committer-coverage-stats)"

// RenderMarkdown renders the report as the pull request comment body.
func RenderMarkdown(result *schema.ReportResult) string {
	var sb strings.Builder

	lines, covered, percent := totals(result)
	sb.WriteString("# Committer Coverage Report\n")
	fmt.Fprintf(&sb, "Total coverage: %d / %d (%.2f%%)\n\n", covered, lines, percent)

	sb.WriteString("| **user** | **lines** | **covered** | **% covered** |\n")
	sb.WriteString("|------|-------:|---------:|-----------|\n")
	for _, row := range result.Rows {
		user := row.Key
		if row.Username != "" {
			user = row.Username
		}
		user = strings.ReplaceAll(user, "|", `\|`)
		mark := "❌"
		if contract.MeetsCoverage(row.Covered, row.Lines, result.MinThreshold) {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "| %s | %d | %d | %.2f %s |\n", user, row.Lines, row.Covered, row.Percent(), mark)
	}

	sb.WriteString("\n")
	sb.WriteString(markdownFooter)
	return sb.String()
}
