package schema

import (
	"encoding/json"
	"time"
)

// ReportRow is one ranked contributor in a report.
type ReportRow struct {
	Rank     int    `json:"rank"`
	Username string `json:"username,omitempty"` // Resolved platform login, when available
	Status   Status `json:"status"`
	ContributorStat
}

// MarshalJSON flattens the row so the embedded stat does not take over encoding.
func (r ReportRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rank           int     `json:"rank"`
		Contributor    string  `json:"contributor"`
		Username       string  `json:"username,omitempty"`
		Lines          int     `json:"lines"`
		Covered        int     `json:"covered"`
		PercentCovered float64 `json:"percent_covered"`
		Status         Status  `json:"status"`
	}{r.Rank, r.Key, r.Username, r.Lines, r.Covered, r.Percent(), r.Status})
}

// ReportResult is the output of one analysis run, ready for rendering.
type ReportResult struct {
	RepoPath      string        `json:"repo_path"`
	Ref           string        `json:"ref"`
	CommitHash    string        `json:"commit_hash,omitempty"`
	CoverageFiles []string      `json:"coverage_files"`
	MinThreshold  float64       `json:"min_threshold"`
	FilesAnalyzed int           `json:"files_analyzed"`
	FilesSkipped  []string      `json:"files_skipped,omitempty"`
	LinesSkipped  int           `json:"lines_skipped"`
	Summary       *Summary      `json:"summary"`
	Rows          []ReportRow   `json:"rows"`
	AnalysisID    int64         `json:"analysis_id,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
}

// Passed reports whether every contributor meets the minimum threshold.
func (r *ReportResult) Passed() bool {
	for _, row := range r.Rows {
		if row.Status == FailStatus {
			return false
		}
	}
	return true
}

// FailedRows returns the rows below the minimum threshold.
func (r *ReportResult) FailedRows() []ReportRow {
	var failed []ReportRow
	for _, row := range r.Rows {
		if row.Status == FailStatus {
			failed = append(failed, row)
		}
	}
	return failed
}

// CheckResult holds the result of a CI coverage gate.
type CheckResult struct {
	Passed       bool
	TotalPassed  bool
	CheckTotal   bool
	MinThreshold float64
	Report       *ReportResult
	Failed       []ReportRow
}
