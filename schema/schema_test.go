package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileCoverageAddLine(t *testing.T) {
	fc := NewFileCoverage("main.go")
	fc.AddLine(3, false)
	fc.AddLine(1, true)
	fc.AddLine(3, true)
	fc.AddLine(1, false)
	fc.AddLine(0, true)
	fc.AddLine(-2, true)

	assert.Equal(t, []int{1, 3}, fc.LineNumbers())
	assert.True(t, fc.Lines[1], "covered stays covered")
	assert.True(t, fc.Lines[3], "any covering report wins")
	assert.Equal(t, 2, fc.CoveredCount())
}

func TestFileBlameLine(t *testing.T) {
	fb := NewFileBlame("main.go")
	fb.AddLine(1, Attribution{CommitID: "abc", AuthorEmail: "a@example.com"})

	attr, ok := fb.Line(1)
	assert.True(t, ok)
	assert.Equal(t, "a@example.com", attr.AuthorEmail)

	_, ok = fb.Line(2)
	assert.False(t, ok)
}

func TestBlameErrorKinds(t *testing.T) {
	notTracked := NewNotTrackedError("gen/generated.go")
	assert.True(t, IsNotTracked(notTracked))
	assert.Contains(t, notTracked.Error(), "not tracked")
	assert.Equal(t, "not tracked", notTracked.Kind.String())

	cause := errors.New("bad object")
	failure := NewBlameFailure("main.go", cause)
	assert.False(t, IsNotTracked(failure))
	assert.ErrorIs(t, failure, cause)
	assert.Contains(t, failure.Error(), "bad object")
	assert.Equal(t, "failed", failure.Kind.String())

	wrapped := fmt.Errorf("lookup: %w", notTracked)
	assert.True(t, IsNotTracked(wrapped))

	assert.False(t, IsNotTracked(errors.New("the path does not exist in the given tree")))
	assert.False(t, IsNotTracked(nil))
}

func TestSourceError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := &SourceError{Path: "coverage.xml", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "coverage source coverage.xml: unexpected EOF", err.Error())

	var se *SourceError
	assert.ErrorAs(t, fmt.Errorf("load: %w", err), &se)
	assert.Equal(t, "coverage source: unexpected EOF", (&SourceError{Err: cause}).Error())
}

func TestReportResultPassed(t *testing.T) {
	r := &ReportResult{Rows: []ReportRow{
		{Rank: 1, Status: PassStatus, ContributorStat: ContributorStat{Key: "a", Lines: 1, Covered: 1}},
	}}
	assert.True(t, r.Passed())
	assert.Empty(t, r.FailedRows())

	r.Rows = append(r.Rows, ReportRow{Rank: 2, Status: FailStatus, ContributorStat: ContributorStat{Key: "b", Lines: 1}})
	assert.False(t, r.Passed())
	assert.Len(t, r.FailedRows(), 1)
	assert.Equal(t, "b", r.FailedRows()[0].Key)
}

func TestAnalysisRunPercent(t *testing.T) {
	assert.Equal(t, 0.0, AnalysisRun{}.Percent())
	assert.Equal(t, 25.0, AnalysisRun{Lines: 4, Covered: 1}.Percent())
}

func TestReportRowMarshalJSON(t *testing.T) {
	row := ReportRow{Rank: 2, Username: "bob", Status: FailStatus, ContributorStat: ContributorStat{Key: "b@example.com", Lines: 4, Covered: 1}}
	data, err := json.Marshal(row)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"rank":2,"contributor":"b@example.com","username":"bob","lines":4,"covered":1,"percent_covered":25,"status":"fail"}`, string(data))
}
