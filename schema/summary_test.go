package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		covered  int
		lines    int
		expected float64
	}{
		{"zero lines", 0, 0, 0.0},
		{"half", 50, 100, 50.0},
		{"all", 7, 7, 100.0},
		{"none", 0, 3, 0.0},
		{"negative lines guarded", 0, -1, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Percent(tt.covered, tt.lines), 1e-9)
		})
	}
}

func TestPercentExactForIntegerRatios(t *testing.T) {
	tests := []struct {
		name     string
		covered  int
		lines    int
		expected float64
	}{
		{"29 of 100", 29, 100, 29.0},
		{"57 of 100", 57, 100, 57.0},
		{"58 of 200", 58, 200, 29.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Percent(tt.covered, tt.lines))
		})
	}
}

func TestContributorStatPercent(t *testing.T) {
	assert.Equal(t, 50.0, ContributorStat{Key: "user@example.com", Lines: 100, Covered: 50}.Percent())
	assert.Equal(t, 0.0, ContributorStat{Key: "user2@example.com"}.Percent())
}

func TestSummaryEmpty(t *testing.T) {
	s := NewSummary()
	lines, covered, percent := s.Totals()
	assert.Equal(t, 0, lines)
	assert.Equal(t, 0, covered)
	assert.Equal(t, 0.0, percent)
	assert.False(t, math.IsNaN(percent))
	assert.Empty(t, s.Contributors())
	_, ok := s.Get("nobody")
	assert.False(t, ok)
	require.NoError(t, s.CheckInvariants())
}

func TestSummaryRecord(t *testing.T) {
	s := NewSummary()
	s.Record("a@example.com", true)
	s.Record("a@example.com", false)
	s.Record("b@example.com", true)

	lines, covered, percent := s.Totals()
	assert.Equal(t, 3, lines)
	assert.Equal(t, 2, covered)
	assert.InDelta(t, 66.666, percent, 0.001)

	a, ok := s.Get("a@example.com")
	require.True(t, ok)
	assert.Equal(t, ContributorStat{Key: "a@example.com", Lines: 2, Covered: 1}, a)
	assert.Equal(t, 50.0, a.Percent())

	b, ok := s.Get("b@example.com")
	require.True(t, ok)
	assert.Equal(t, 1, b.Lines)
	assert.Equal(t, 1, b.Covered)
	assert.Equal(t, 2, s.Len())
}

func TestSummaryTotalsInvariantAfterEveryRecord(t *testing.T) {
	s := NewSummary()
	keys := []string{"a", "b", "c", "a", "unknown", "b"}
	for i := range 60 {
		s.Record(keys[i%len(keys)], i%3 == 0)
		require.NoError(t, s.CheckInvariants(), "after record %d", i)

		sumLines, sumCovered := 0, 0
		for _, c := range s.Contributors() {
			sumLines += c.Lines
			sumCovered += c.Covered
			assert.LessOrEqual(t, c.Covered, c.Lines)
		}
		assert.Equal(t, s.Lines(), sumLines)
		assert.Equal(t, s.Covered(), sumCovered)
	}
}

func TestSummaryContributorsSortedByKey(t *testing.T) {
	s := NewSummary()
	for _, k := range []string{"zed", "amy", "max"} {
		s.Record(k, true)
	}
	var keys []string
	for _, c := range s.Contributors() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"amy", "max", "zed"}, keys)
}

func TestSummaryContributorsReturnsCopies(t *testing.T) {
	s := NewSummary()
	s.Record("a", true)
	stats := s.Contributors()
	stats[0].Lines = 100
	got, _ := s.Get("a")
	assert.Equal(t, 1, got.Lines)
}

func TestSummaryMerge(t *testing.T) {
	first := NewSummary()
	first.Record("a", true)
	first.Record("b", false)

	second := NewSummary()
	second.Record("a", false)
	second.Record("c", true)

	ab := NewSummary()
	ab.Merge(first)
	ab.Merge(second)

	ba := NewSummary()
	ba.Merge(second)
	ba.Merge(first)

	assert.Equal(t, ab.Contributors(), ba.Contributors())
	l1, c1, _ := ab.Totals()
	l2, c2, _ := ba.Totals()
	assert.Equal(t, l1, l2)
	assert.Equal(t, c1, c2)
	assert.Equal(t, 4, l1)
	assert.Equal(t, 2, c1)

	a, _ := ab.Get("a")
	assert.Equal(t, ContributorStat{Key: "a", Lines: 2, Covered: 1}, a)
	require.NoError(t, ab.CheckInvariants())

	ab.Merge(nil)
	assert.Equal(t, 4, ab.Lines())
}

func TestSummaryZeroValueUsable(t *testing.T) {
	var s Summary
	s.Record("a", true)
	assert.Equal(t, 1, s.Lines())
	require.NoError(t, s.CheckInvariants())
}

func TestSummaryCheckInvariantsDetectsCorruption(t *testing.T) {
	s := NewSummary()
	s.Record("a", true)
	s.lines = 5
	assert.Error(t, s.CheckInvariants())

	s = NewSummary()
	s.Record("a", false)
	s.contributors["a"].Covered = 2
	s.covered = 2
	assert.Error(t, s.CheckInvariants())
}

func TestSummaryAddPanicsOnImpossibleTotals(t *testing.T) {
	s := NewSummary()
	assert.Panics(t, func() {
		s.add("a", 1, 2)
	})
}

func TestSummaryMarshalJSON(t *testing.T) {
	s := NewSummary()
	for i := 1; i <= 5; i++ {
		s.Record(fmt.Sprintf("user%d@example.com", i), i%2 == 1)
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded struct {
		Lines          int     `json:"lines"`
		Covered        int     `json:"covered"`
		PercentCovered float64 `json:"percent_covered"`
		Contributors   []struct {
			Contributor    string  `json:"contributor"`
			Lines          int     `json:"lines"`
			Covered        int     `json:"covered"`
			PercentCovered float64 `json:"percent_covered"`
		} `json:"contributors"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 5, decoded.Lines)
	assert.Equal(t, 3, decoded.Covered)
	assert.Equal(t, 60.0, decoded.PercentCovered)
	require.Len(t, decoded.Contributors, 5)
	assert.Equal(t, "user1@example.com", decoded.Contributors[0].Contributor)
	assert.Equal(t, 100.0, decoded.Contributors[0].PercentCovered)
	assert.Equal(t, 0.0, decoded.Contributors[1].PercentCovered)
}
