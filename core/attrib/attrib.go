// Package attrib joins line coverage with line blame and aggregates the
// result per contributor.
package attrib

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

type options struct {
	workers    int
	onSkip     func(path string)
	onLineSkip func(path string, line int)
}

// Option configures Attribute.
type Option func(*options)

// WithWorkers sets how many files are attributed concurrently.
// Values below 2 keep the sequential path.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithSkipHook is called with every file skipped because blame does not track it.
func WithSkipHook(fn func(path string)) Option {
	return func(o *options) { o.onSkip = fn }
}

// WithLineSkipHook is called with every line that blame has no attribution for.
func WithLineSkipHook(fn func(path string, line int)) Option {
	return func(o *options) { o.onLineSkip = fn }
}

// fileResult is the outcome of attributing a single file.
type fileResult struct {
	index        int
	path         string
	partial      *schema.Summary
	notTracked   bool
	missingLines []int
	err          error
}

// Attribute credits every line of every file yielded by coverage to the
// contributor that blame names for it, and returns the aggregated Summary.
//
// Files that blame reports as not tracked are skipped. Lines that blame has
// no entry for are left out of the totals. Any other failure aborts the run
// and no Summary is returned. Hooks are always invoked from the calling goroutine.
func Attribute(ctx context.Context, coverage contract.CoverageSource, blame contract.BlameSource, opts ...Option) (*schema.Summary, error) {
	o := &options{
		workers: 1,
		onSkip: func(path string) {
			contract.LogInfo(fmt.Sprintf("skipping %s: not tracked by git", path))
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	files, err := coverage.Files(ctx)
	if err != nil {
		return nil, err
	}

	if o.workers > 1 && len(files) > 1 {
		return attributeParallel(ctx, files, blame, o)
	}

	summary := schema.NewSummary()
	for _, fc := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := attributeFile(ctx, fc, blame, summary)
		if res.err != nil {
			return nil, res.err
		}
		o.report(res)
	}
	return summary, nil
}

// attributeParallel runs a worker pool where every file folds into its own
// partial summary. Partials are merged once all files succeed.
func attributeParallel(ctx context.Context, files []schema.FileCoverage, blame contract.BlameSource, o *options) (*schema.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index int
		fc    schema.FileCoverage
	}
	fileCh := make(chan job, len(files))
	resultCh := make(chan fileResult, len(files))
	var wg sync.WaitGroup

	for range min(o.workers, len(files)) {
		wg.Go(func() {
			for j := range fileCh {
				if ctx.Err() != nil {
					resultCh <- fileResult{index: j.index, path: j.fc.Path, err: ctx.Err()}
					continue
				}
				res := attributeFile(ctx, j.fc, blame, schema.NewSummary())
				res.index = j.index
				if res.err != nil {
					cancel()
				}
				resultCh <- res
			}
		})
	}

	for i, fc := range files {
		fileCh <- job{index: i, fc: fc}
	}
	close(fileCh)

	wg.Wait()
	close(resultCh)

	var firstErr error
	results := make([]fileResult, 0, len(files))
	for res := range resultCh {
		if res.err != nil {
			// A cancellation error is a consequence of the first failure, not its cause.
			if firstErr == nil || (errors.Is(firstErr, context.Canceled) && !errors.Is(res.err, context.Canceled)) {
				firstErr = res.err
			}
			continue
		}
		results = append(results, res)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	summary := schema.NewSummary()
	for _, res := range results {
		summary.Merge(res.partial)
		o.report(res)
	}
	return summary, nil
}

// attributeFile joins the coverage of one file with its blame and records
// each attributed line into summary.
func attributeFile(ctx context.Context, fc schema.FileCoverage, blame contract.BlameSource, summary *schema.Summary) fileResult {
	res := fileResult{path: fc.Path, partial: summary}

	fb, err := blame.Lookup(ctx, fc.Path)
	if err != nil {
		if schema.IsNotTracked(err) {
			res.notTracked = true
			return res
		}
		res.err = err
		return res
	}
	if fb == nil {
		res.err = schema.NewBlameFailure(fc.Path, fmt.Errorf("blame source returned no result"))
		return res
	}

	for _, line := range fc.LineNumbers() {
		attr, ok := fb.Line(line)
		if !ok {
			res.missingLines = append(res.missingLines, line)
			continue
		}
		summary.Record(ResolveKey(attr), fc.Lines[line])
	}
	return res
}

func (o *options) report(res fileResult) {
	if res.notTracked && o.onSkip != nil {
		o.onSkip(res.path)
	}
	if o.onLineSkip != nil {
		for _, line := range res.missingLines {
			o.onLineSkip(res.path, line)
		}
	}
}
