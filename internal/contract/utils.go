package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Threshold label constants.
const (
	PassValue = "PASS"
	FailValue = "FAIL"
)

// Color variables for console output.
var (
	PassColor = color.New(color.FgGreen, color.Bold)
	FailColor = color.New(color.FgRed, color.Bold)
	InfoColor = color.New(color.FgCyan)
)

// MeetsThreshold reports whether percent reaches the minimum threshold.
// A percentage exactly equal to the threshold passes.
func MeetsThreshold(percent, threshold float64) bool {
	return percent >= threshold
}

// MeetsCoverage reports whether covered of lines reaches the threshold,
// compared on counts so integer ratios never lose to rounding.
func MeetsCoverage(covered, lines int, threshold float64) bool {
	return float64(covered)*100.0 >= threshold*float64(lines)
}

// GetPlainLabel returns a plain text label for a percentage measured
// against the threshold. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(percent, threshold float64) string {
	if MeetsThreshold(percent, threshold) {
		return PassValue
	}
	return FailValue
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(percent, threshold float64) string {
	text := GetPlainLabel(percent, threshold)
	if text == PassValue {
		return PassColor.Sprint(text)
	}
	return FailColor.Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' are treated
// as prefixes. Patterns starting with '.' are treated as suffix (extension) matches.
// A user can provide patterns like "vendor/", "testdata/", "*_gen.go".
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// SplitList splits a comma-separated list, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	var items []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs an informational message to stderr.
func LogInfo(msg string) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", InfoColor.Sprint("Info"), msg)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for blame cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ccstats_cache.db"
	}
	return filepath.Join(homeDir, ".ccstats_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ccstats_analysis.db"
	}
	return filepath.Join(homeDir, ".ccstats_analysis.db")
}

// NormalizeRepoPath turns a path reported by a coverage tool into a path
// relative to the repository root, using forward slashes.
// Absolute paths outside of repoRoot are returned cleaned but otherwise unchanged.
func NormalizeRepoPath(repoRoot, reported string) string {
	p := filepath.FromSlash(reported)
	if filepath.IsAbs(p) && repoRoot != "" {
		if rel, err := filepath.Rel(repoRoot, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	normalized := filepath.ToSlash(filepath.Clean(p))
	return strings.TrimPrefix(normalized, "./")
}

// TruncateKey truncates a contributor key to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the ellipsis and at least one character.
func TruncateKey(key string, maxWidth int) string {
	runes := []rune(key)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return key
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
