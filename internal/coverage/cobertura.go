package coverage

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

type coberturaReport struct {
	Sources  []string           `xml:"sources>source"`
	Packages []coberturaPackage `xml:"packages>package"`
}

type coberturaPackage struct {
	Name    string           `xml:"name,attr"`
	Classes []coberturaClass `xml:"classes>class"`
}

type coberturaClass struct {
	Filename string          `xml:"filename,attr"`
	Lines    []coberturaLine `xml:"lines>line"`
}

type coberturaLine struct {
	Number int   `xml:"number,attr"`
	Hits   int64 `xml:"hits,attr"`
}

// decodeCobertura parses a Cobertura XML report. Lines of one file spread
// over several classes are merged.
func decodeCobertura(data []byte, repoRoot string) ([]schema.FileCoverage, error) {
	var report coberturaReport
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&report); err != nil {
		return nil, fmt.Errorf("invalid cobertura report: %w", err)
	}

	sources := make([]string, 0, len(report.Sources))
	for _, s := range report.Sources {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}

	byPath := make(map[string]schema.FileCoverage)
	var order []string
	for _, pkg := range report.Packages {
		for _, class := range pkg.Classes {
			if strings.TrimSpace(class.Filename) == "" {
				continue
			}
			p := resolveCoberturaPath(sources, class.Filename, repoRoot, fileExists)
			fc, ok := byPath[p]
			if !ok {
				fc = schema.NewFileCoverage(p)
				byPath[p] = fc
				order = append(order, p)
			}
			for _, line := range class.Lines {
				fc.AddLine(line.Number, line.Hits > 0)
			}
		}
	}

	files := make([]schema.FileCoverage, 0, len(order))
	for _, p := range order {
		files = append(files, byPath[p])
	}
	return files, nil
}

// resolveCoberturaPath joins a class filename with the first source directory
// under which the file exists. Without a match the first source is used.
func resolveCoberturaPath(sources []string, filename, repoRoot string, exists func(string) bool) string {
	filename = strings.TrimSpace(filename)
	if filepath.IsAbs(filename) || path.IsAbs(filename) || len(sources) == 0 {
		return filename
	}
	for _, src := range sources {
		candidate := filepath.Join(src, filename)
		check := candidate
		if !filepath.IsAbs(check) && repoRoot != "" {
			check = filepath.Join(repoRoot, check)
		}
		if exists(check) {
			return candidate
		}
	}
	if len(sources) == 1 && sources[0] != "." {
		return filepath.Join(sources[0], filename)
	}
	return filename
}
