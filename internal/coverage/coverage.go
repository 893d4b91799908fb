// Package coverage decodes coverage reports into per-line file coverage.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// Options controls how report paths are decoded and mapped to repository paths.
type Options struct {
	Format        schema.CoverageFormat
	RepoRoot      string
	StripPrefixes []string
	Excludes      []string

	// ModulePath overrides the Go module path read from RepoRoot/go.mod.
	ModulePath string
}

// Report is the merged coverage of one or more report files.
type Report struct {
	files map[string]schema.FileCoverage
}

var _ contract.CoverageSource = &Report{} // Compile-time check

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{files: make(map[string]schema.FileCoverage)}
}

// Add merges a file into the report. A line covered by any report stays covered.
func (r *Report) Add(fc schema.FileCoverage) {
	existing, ok := r.files[fc.Path]
	if !ok {
		existing = schema.NewFileCoverage(fc.Path)
		r.files[fc.Path] = existing
	}
	for line, covered := range fc.Lines {
		existing.AddLine(line, covered)
	}
}

// Len returns the number of files in the report.
func (r *Report) Len() int {
	return len(r.files)
}

// Files returns the files sorted by path.
func (r *Report) Files(ctx context.Context) ([]schema.FileCoverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, &schema.SourceError{Err: err}
	}
	files := make([]schema.FileCoverage, 0, len(r.files))
	for _, fc := range r.files {
		files = append(files, fc)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Load reads and decodes every report in paths and merges them into one Report.
func Load(ctx context.Context, paths []string, opts Options) (*Report, error) {
	if len(paths) == 0 {
		return nil, &schema.SourceError{Err: errors.New("no coverage files given")}
	}
	if opts.Format == "" {
		opts.Format = schema.AutoFormat
	}
	if opts.ModulePath == "" && opts.RepoRoot != "" {
		opts.ModulePath = readModulePath(opts.RepoRoot)
	}

	report := NewReport()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, &schema.SourceError{Path: path, Err: err}
		}
		data, err := os.ReadFile(resolveReportPath(opts.RepoRoot, path))
		if err != nil {
			return nil, &schema.SourceError{Path: path, Err: err}
		}
		files, err := Decode(data, opts)
		if err != nil {
			return nil, &schema.SourceError{Path: path, Err: err}
		}
		for _, fc := range files {
			fc.Path = normalizePath(fc.Path, opts)
			if fc.Path == "" || fc.Path == "." || contract.ShouldIgnore(fc.Path, opts.Excludes) {
				continue
			}
			report.Add(fc)
		}
	}
	return report, nil
}

// Decode parses a single report. Paths are returned as the report names them,
// except that Cobertura source directories are already joined.
func Decode(data []byte, opts Options) ([]schema.FileCoverage, error) {
	format := opts.Format
	if format == "" || format == schema.AutoFormat {
		detected, err := DetectFormat(data)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	switch format {
	case schema.CoberturaFormat:
		return decodeCobertura(data, opts.RepoRoot)
	case schema.GoCoverFormat:
		return decodeGoCover(data, opts.ModulePath)
	case schema.CloverFormat:
		return decodeClover(data)
	default:
		return nil, fmt.Errorf("unsupported coverage format: %s", format)
	}
}

// resolveReportPath resolves a relative report path against the repository root
// when it does not exist relative to the working directory.
func resolveReportPath(repoRoot, path string) string {
	if filepath.IsAbs(path) || repoRoot == "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return filepath.Join(repoRoot, path)
}

// normalizePath maps a reported path to a repository-relative slash path.
func normalizePath(reported string, opts Options) string {
	p := contract.NormalizeRepoPath(opts.RepoRoot, strings.TrimSpace(reported))
	for _, prefix := range opts.StripPrefixes {
		pfx := strings.TrimSuffix(strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(prefix)), "./"), "/")
		if pfx == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(p, pfx+"/"); ok {
			p = rest
			break
		}
	}
	return strings.TrimPrefix(p, "./")
}
