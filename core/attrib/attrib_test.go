package attrib

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func coverageOf(path string, lines map[int]bool) schema.FileCoverage {
	fc := schema.NewFileCoverage(path)
	for n, c := range lines {
		fc.AddLine(n, c)
	}
	return fc
}

func blameOf(path string, emails map[int]string) *schema.FileBlame {
	fb := schema.NewFileBlame(path)
	for n, email := range emails {
		fb.AddLine(n, schema.Attribution{CommitID: fmt.Sprintf("c%d", n), AuthorEmail: email})
	}
	return fb
}

func coverageSource(files ...schema.FileCoverage) *contract.MockCoverageSource {
	src := new(contract.MockCoverageSource)
	src.On("Files", mock.Anything).Return(files, nil)
	return src
}

func TestAttributeEndToEnd(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			coverage := coverageSource(coverageOf("main.go", map[int]bool{1: true, 2: false, 3: true, 4: false, 5: true}))
			blame := new(contract.MockBlameSource)
			blame.On("Lookup", mock.Anything, "main.go").Return(blameOf("main.go", map[int]string{
				1: "user1@example.com", 2: "user2@example.com", 3: "user3@example.com",
				4: "user4@example.com", 5: "user5@example.com",
			}), nil)

			summary, err := Attribute(context.Background(), coverage, blame, WithWorkers(workers))
			require.NoError(t, err)

			lines, covered, percent := summary.Totals()
			assert.Equal(t, 5, lines)
			assert.Equal(t, 3, covered)
			assert.Equal(t, 60.0, percent)
			require.Equal(t, 5, summary.Len())
			for i := 1; i <= 5; i++ {
				stat, ok := summary.Get(fmt.Sprintf("user%d@example.com", i))
				require.True(t, ok)
				assert.Equal(t, 1, stat.Lines)
				assert.Equal(t, i%2, stat.Covered)
			}
			require.NoError(t, summary.CheckInvariants())
			blame.AssertExpectations(t)
		})
	}
}

func TestAttributeSkipsUntrackedFile(t *testing.T) {
	coverage := coverageSource(coverageOf("generated.go", map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}))
	blame := new(contract.MockBlameSource)
	blame.On("Lookup", mock.Anything, "generated.go").Return(nil, schema.NewNotTrackedError("generated.go"))

	var skipped []string
	summary, err := Attribute(context.Background(), coverage, blame, WithSkipHook(func(path string) {
		skipped = append(skipped, path)
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Lines())
	assert.Equal(t, 0.0, summary.Percent())
	assert.Equal(t, []string{"generated.go"}, skipped)
}

func TestAttributeSkipsLinesMissingFromBlame(t *testing.T) {
	coverage := coverageSource(coverageOf("pkg/a.go", map[int]bool{1: true, 2: false, 3: true}))
	blame := new(contract.MockBlameSource)
	blame.On("Lookup", mock.Anything, "pkg/a.go").Return(blameOf("pkg/a.go", map[int]string{1: "a@example.com", 3: "a@example.com"}), nil)

	var missing []int
	summary, err := Attribute(context.Background(), coverage, blame, WithLineSkipHook(func(path string, line int) {
		assert.Equal(t, "pkg/a.go", path)
		missing = append(missing, line)
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Lines())
	assert.Equal(t, 2, summary.Covered())
	assert.Equal(t, []int{2}, missing)
}

func TestAttributeAbortsOnBlameFailure(t *testing.T) {
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			coverage := coverageSource(
				coverageOf("a.go", map[int]bool{1: true}),
				coverageOf("b.go", map[int]bool{1: true}),
				coverageOf("c.go", map[int]bool{1: true}),
			)
			cause := errors.New("fatal: bad object HEAD")
			blame := new(contract.MockBlameSource)
			blame.On("Lookup", mock.Anything, "a.go").Return(blameOf("a.go", map[int]string{1: "a@example.com"}), nil).Maybe()
			blame.On("Lookup", mock.Anything, "b.go").Return(nil, schema.NewBlameFailure("b.go", cause))
			blame.On("Lookup", mock.Anything, "c.go").Return(blameOf("c.go", map[int]string{1: "c@example.com"}), nil).Maybe()

			summary, err := Attribute(context.Background(), coverage, blame, WithWorkers(workers))
			assert.Nil(t, summary)
			require.Error(t, err)
			assert.ErrorIs(t, err, cause)
			assert.False(t, schema.IsNotTracked(err))
		})
	}
}

func TestAttributeNilBlameIsFailure(t *testing.T) {
	coverage := coverageSource(coverageOf("a.go", map[int]bool{1: true}))
	blame := new(contract.MockBlameSource)
	blame.On("Lookup", mock.Anything, "a.go").Return(nil, nil)

	_, err := Attribute(context.Background(), coverage, blame)
	var be *schema.BlameError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, schema.BlameFailed, be.Kind)
}

func TestAttributeCoverageSourceFailure(t *testing.T) {
	srcErr := &schema.SourceError{Path: "coverage.xml", Err: errors.New("unexpected EOF")}
	coverage := new(contract.MockCoverageSource)
	coverage.On("Files", mock.Anything).Return(nil, srcErr)
	blame := new(contract.MockBlameSource)

	summary, err := Attribute(context.Background(), coverage, blame)
	assert.Nil(t, summary)
	var se *schema.SourceError
	require.ErrorAs(t, err, &se)
	blame.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestAttributeMultiFileAggregation(t *testing.T) {
	coverage := coverageSource(
		coverageOf("a.go", map[int]bool{1: true, 2: false}),
		coverageOf("b.go", map[int]bool{1: true, 2: true, 3: false}),
	)
	blame := new(contract.MockBlameSource)
	blame.On("Lookup", mock.Anything, "a.go").Return(blameOf("a.go", map[int]string{1: "dev@example.com", 2: "dev@example.com"}), nil)
	blame.On("Lookup", mock.Anything, "b.go").Return(blameOf("b.go", map[int]string{1: "dev@example.com", 2: "dev@example.com", 3: "dev@example.com"}), nil)

	summary, err := Attribute(context.Background(), coverage, blame)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Len())
	stat, _ := summary.Get("dev@example.com")
	assert.Equal(t, schema.ContributorStat{Key: "dev@example.com", Lines: 5, Covered: 3}, stat)
}

func TestAttributeUsesNameAndUnknownKeys(t *testing.T) {
	coverage := coverageSource(coverageOf("a.go", map[int]bool{1: true, 2: false, 3: true}))
	fb := schema.NewFileBlame("a.go")
	fb.AddLine(1, schema.Attribution{CommitID: "c1", AuthorName: "Alice", AuthorEmail: "alice@example.com"})
	fb.AddLine(2, schema.Attribution{CommitID: "c2", AuthorName: "Bob"})
	fb.AddLine(3, schema.Attribution{CommitID: "c3"})
	blame := new(contract.MockBlameSource)
	blame.On("Lookup", mock.Anything, "a.go").Return(fb, nil)

	summary, err := Attribute(context.Background(), coverage, blame)
	require.NoError(t, err)
	var keys []string
	for _, c := range summary.Contributors() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"Bob", "alice@example.com", "unknown"}, keys)
}

func TestAttributeParallelMatchesSequential(t *testing.T) {
	var files []schema.FileCoverage
	blame := new(contract.MockBlameSource)
	authors := []string{"a@example.com", "b@example.com", "c@example.com"}
	for f := range 40 {
		path := fmt.Sprintf("pkg/file%02d.go", f)
		lines := map[int]bool{}
		emails := map[int]string{}
		for n := 1; n <= 12; n++ {
			lines[n] = (n+f)%3 != 0
			if (n*f)%7 != 3 {
				emails[n] = authors[(n+f)%len(authors)]
			}
		}
		files = append(files, coverageOf(path, lines))
		if f%9 == 4 {
			blame.On("Lookup", mock.Anything, path).Return(nil, schema.NewNotTrackedError(path))
			continue
		}
		blame.On("Lookup", mock.Anything, path).Return(blameOf(path, emails), nil)
	}
	coverage := coverageSource(files...)

	sequential, err := Attribute(context.Background(), coverage, blame, WithSkipHook(func(string) {}))
	require.NoError(t, err)

	var skips atomic.Int32
	for range 5 {
		parallel, err := Attribute(context.Background(), coverage, blame, WithWorkers(8), WithSkipHook(func(string) { skips.Add(1) }))
		require.NoError(t, err)
		assert.Equal(t, sequential.Contributors(), parallel.Contributors())
		assert.Equal(t, sequential.Lines(), parallel.Lines())
		assert.Equal(t, sequential.Covered(), parallel.Covered())
		require.NoError(t, parallel.CheckInvariants())
	}
	assert.Equal(t, int32(5*4), skips.Load())
}

func TestAttributeHonorsCancelledContext(t *testing.T) {
	coverage := coverageSource(coverageOf("a.go", map[int]bool{1: true}))
	blame := new(contract.MockBlameSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Attribute(ctx, coverage, blame)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAttributeEmptyCoverage(t *testing.T) {
	summary, err := Attribute(context.Background(), coverageSource(), new(contract.MockBlameSource), WithWorkers(4))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Lines())
	assert.Equal(t, 0.0, summary.Percent())
}
