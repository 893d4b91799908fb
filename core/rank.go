package core

import (
	"sort"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// Rank sorts contributors by covered percentage in descending order, then by
// lines descending, then by key, and labels each one against threshold.
// Ranks start at 1.
func Rank(stats []schema.ContributorStat, threshold float64) []schema.ReportRow {
	sorted := make([]schema.ContributorStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		// Cross-multiplied so equal ratios compare equal.
		lhs, rhs := a.Covered*b.Lines, b.Covered*a.Lines
		if lhs != rhs {
			return lhs > rhs
		}
		if a.Lines != b.Lines {
			return a.Lines > b.Lines
		}
		return a.Key < b.Key
	})

	rows := make([]schema.ReportRow, len(sorted))
	for i, s := range sorted {
		status := schema.FailStatus
		if contract.MeetsCoverage(s.Covered, s.Lines, threshold) {
			status = schema.PassStatus
		}
		rows[i] = schema.ReportRow{Rank: i + 1, Status: status, ContributorStat: s}
	}
	return rows
}
