package coverage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/cover"
)

// decodeGoCover parses a Go cover profile. Blocks cover StartLine..EndLine
// and overlapping blocks OR together.
func decodeGoCover(data []byte, modulePath string) ([]schema.FileCoverage, error) {
	profiles, err := cover.ParseProfilesFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid go cover profile: %w", err)
	}

	files := make([]schema.FileCoverage, 0, len(profiles))
	for _, profile := range profiles {
		fc := schema.NewFileCoverage(importPathToRepoPath(profile.FileName, modulePath))
		for _, block := range profile.Blocks {
			for line := block.StartLine; line <= block.EndLine; line++ {
				fc.AddLine(line, block.Count > 0)
			}
		}
		files = append(files, fc)
	}
	return files, nil
}

// importPathToRepoPath strips the module path from a profile file name.
func importPathToRepoPath(fileName, modulePath string) string {
	if modulePath == "" {
		return fileName
	}
	if rest, ok := strings.CutPrefix(fileName, modulePath+"/"); ok {
		return rest
	}
	return fileName
}

// readModulePath returns the module path declared in repoRoot/go.mod, or "".
func readModulePath(repoRoot string) string {
	data, err := os.ReadFile(filepath.Join(repoRoot, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}
