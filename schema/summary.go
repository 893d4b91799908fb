package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Percent returns covered/lines as a percentage, or 0 when lines is zero.
func Percent(covered, lines int) float64 {
	if lines <= 0 {
		return 0.0
	}
	return float64(covered) * 100.0 / float64(lines)
}

// ContributorStat holds the coverage totals of the lines last modified by one contributor.
type ContributorStat struct {
	Key     string `json:"contributor"`
	Lines   int    `json:"lines"`
	Covered int    `json:"covered"`
}

// Percent returns the percentage of the contributor's lines that are covered.
func (s ContributorStat) Percent() float64 {
	return Percent(s.Covered, s.Lines)
}

// MarshalJSON adds the derived percent_covered field.
func (s ContributorStat) MarshalJSON() ([]byte, error) {
	type plain ContributorStat
	return json.Marshal(struct {
		plain
		PercentCovered float64 `json:"percent_covered"`
	}{plain(s), s.Percent()})
}

// Summary aggregates line coverage globally and per contributor for one analysis run.
//
// A Summary is not safe for concurrent mutation. Parallel producers build
// their own partial summaries and combine them with Merge.
type Summary struct {
	lines        int
	covered      int
	contributors map[string]*ContributorStat
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{contributors: make(map[string]*ContributorStat)}
}

// Record attributes one line to key, counting it as covered when covered is true.
// The global and per-contributor totals move together.
func (s *Summary) Record(key string, covered bool) {
	s.add(key, 1, boolToInt(covered))
}

// Merge folds the totals of other into s. Merging is commutative and associative,
// so the result does not depend on the order partial summaries are merged in.
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}
	for key, stat := range other.contributors {
		s.add(key, stat.Lines, stat.Covered)
	}
}

func (s *Summary) add(key string, lines, covered int) {
	if s.contributors == nil {
		s.contributors = make(map[string]*ContributorStat)
	}
	stat, ok := s.contributors[key]
	if !ok {
		stat = &ContributorStat{Key: key}
		s.contributors[key] = stat
	}
	stat.Lines += lines
	stat.Covered += covered
	s.lines += lines
	s.covered += covered
	if stat.Covered > stat.Lines {
		panic(fmt.Sprintf("schema: contributor %q has %d covered of %d lines", key, stat.Covered, stat.Lines))
	}
}

// Get returns the stat for key, if that contributor has any lines.
func (s *Summary) Get(key string) (ContributorStat, bool) {
	stat, ok := s.contributors[key]
	if !ok {
		return ContributorStat{}, false
	}
	return *stat, true
}

// Totals returns the global line count, covered count and covered percentage.
func (s *Summary) Totals() (lines, covered int, percent float64) {
	return s.lines, s.covered, Percent(s.covered, s.lines)
}

// Lines returns the global number of attributed lines.
func (s *Summary) Lines() int { return s.lines }

// Covered returns the global number of attributed lines that are covered.
func (s *Summary) Covered() int { return s.covered }

// Percent returns the global covered percentage.
func (s *Summary) Percent() float64 { return Percent(s.covered, s.lines) }

// Len returns the number of contributors.
func (s *Summary) Len() int { return len(s.contributors) }

// Contributors returns a copy of every contributor stat, sorted by key.
func (s *Summary) Contributors() []ContributorStat {
	stats := make([]ContributorStat, 0, len(s.contributors))
	for _, stat := range s.contributors {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Key < stats[j].Key
	})
	return stats
}

// CheckInvariants verifies that the global totals equal the sum of the
// contributor totals and that no contributor has more covered than total lines.
func (s *Summary) CheckInvariants() error {
	lines, covered := 0, 0
	for key, stat := range s.contributors {
		if stat.Lines < 0 || stat.Covered < 0 || stat.Covered > stat.Lines {
			return fmt.Errorf("contributor %q has invalid totals: %d covered of %d lines", key, stat.Covered, stat.Lines)
		}
		lines += stat.Lines
		covered += stat.Covered
	}
	if lines != s.lines || covered != s.covered {
		return fmt.Errorf("summary totals %d/%d do not match contributor sums %d/%d", s.covered, s.lines, covered, lines)
	}
	return nil
}

// MarshalJSON encodes the summary with its derived percentage and contributors.
func (s *Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lines          int               `json:"lines"`
		Covered        int               `json:"covered"`
		PercentCovered float64           `json:"percent_covered"`
		Contributors   []ContributorStat `json:"contributors"`
	}{s.lines, s.covered, s.Percent(), s.Contributors()})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
