package contract

import (
	"strings"
	"testing"
)

// FuzzShouldIgnore fuzzes the ShouldIgnore function with random paths and exclude patterns.
func FuzzShouldIgnore(f *testing.F) {
	seeds := []struct {
		path     string
		excludes string // comma-separated
	}{
		{"main.go", "*_test.go"},
		{"vendor/package/file.go", "vendor/"},
		{"api/v1/service.pb.go", ".pb.go"},
		{"", ""},
		{"very/long/path/to/file.go", "**/testdata/**"},
		{"[weird].go", "["},
	}
	for _, seed := range seeds {
		f.Add(seed.path, seed.excludes)
	}

	f.Fuzz(func(_ *testing.T, path string, excludesStr string) {
		_ = ShouldIgnore(path, SplitList(excludesStr))
	})
}

// FuzzNormalizeRepoPath checks that normalized paths never keep a leading "./".
func FuzzNormalizeRepoPath(f *testing.F) {
	f.Add("/repo", "./src/main.go")
	f.Add("/repo", "/repo/pkg/a.go")
	f.Add("", "a//b/../c.go")

	f.Fuzz(func(t *testing.T, root, reported string) {
		got := NormalizeRepoPath(root, reported)
		if strings.HasPrefix(got, "./") {
			t.Errorf("NormalizeRepoPath(%q, %q) = %q keeps a ./ prefix", root, reported, got)
		}
	})
}
