package coverage

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

type cloverReport struct {
	Project cloverProject `xml:"project"`
}

type cloverProject struct {
	Files    []cloverFile    `xml:"file"`
	Packages []cloverPackage `xml:"package"`
}

type cloverPackage struct {
	Files []cloverFile `xml:"file"`
}

type cloverFile struct {
	Name  string       `xml:"name,attr"`
	Path  string       `xml:"path,attr"`
	Lines []cloverLine `xml:"line"`
}

type cloverLine struct {
	Num   int    `xml:"num,attr"`
	Count int64  `xml:"count,attr"`
	Type  string `xml:"type,attr"`
}

// decodeClover parses a Clover XML report. Only statement lines count.
func decodeClover(data []byte) ([]schema.FileCoverage, error) {
	var report cloverReport
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&report); err != nil {
		return nil, fmt.Errorf("invalid clover report: %w", err)
	}

	all := report.Project.Files
	for _, pkg := range report.Project.Packages {
		all = append(all, pkg.Files...)
	}

	files := make([]schema.FileCoverage, 0, len(all))
	for _, f := range all {
		p := strings.TrimSpace(f.Path)
		if p == "" {
			p = strings.TrimSpace(f.Name)
		}
		if p == "" {
			continue
		}
		fc := schema.NewFileCoverage(p)
		for _, line := range f.Lines {
			if line.Type != "" && line.Type != "stmt" {
				continue
			}
			fc.AddLine(line.Num, line.Count > 0)
		}
		files = append(files, fc)
	}
	return files, nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
