// Package schema has configs, models and shared types for all parts of ccstats.
package schema

import "sort"

// UnknownContributor is the contributor key used when a blame line carries
// neither an author email nor an author name.
const UnknownContributor = "unknown"

// FileCoverage is the per-line coverage of a single source file as reported
// by a coverage tool. Lines maps a positive line number to whether it was
// executed during the test run.
type FileCoverage struct {
	Path  string       `json:"path"`
	Lines map[int]bool `json:"lines"`
}

// NewFileCoverage creates an empty FileCoverage for the given path.
func NewFileCoverage(path string) FileCoverage {
	return FileCoverage{Path: path, Lines: make(map[int]bool)}
}

// AddLine records coverage for a line. A line reported more than once is
// covered if any report covered it.
func (fc FileCoverage) AddLine(line int, covered bool) {
	if line <= 0 {
		return
	}
	fc.Lines[line] = fc.Lines[line] || covered
}

// LineNumbers returns the line numbers in ascending order.
func (fc FileCoverage) LineNumbers() []int {
	nums := make([]int, 0, len(fc.Lines))
	for n := range fc.Lines {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// CoveredCount returns how many lines of the file are covered.
func (fc FileCoverage) CoveredCount() int {
	n := 0
	for _, c := range fc.Lines {
		if c {
			n++
		}
	}
	return n
}

// Attribution is the resolved authorship of one line: the commit that last
// touched it and, when known, that commit's author.
type Attribution struct {
	CommitID    string `json:"commit_id"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
}

// FileBlame is the blame of a single file at a given revision.
type FileBlame struct {
	Path  string              `json:"path"`
	Lines map[int]Attribution `json:"lines"`
}

// NewFileBlame creates an empty FileBlame for the given path.
func NewFileBlame(path string) *FileBlame {
	return &FileBlame{Path: path, Lines: make(map[int]Attribution)}
}

// AddLine sets the attribution of a line.
func (fb *FileBlame) AddLine(line int, attr Attribution) {
	fb.Lines[line] = attr
}

// Line returns the attribution of a line, if blame tracked it.
func (fb *FileBlame) Line(line int) (Attribution, bool) {
	attr, ok := fb.Lines[line]
	return attr, ok
}
