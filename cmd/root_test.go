package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepoPathArg(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		workspace string
		expected  string
	}{
		{"positional wins", []string{"/src/app"}, "/github/workspace", "/src/app"},
		{"actions workspace", nil, "/github/workspace", "/github/workspace"},
		{"empty positional", []string{""}, "/github/workspace", "/github/workspace"},
		{"current directory", nil, "", "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, repoPathArg(tt.args, tt.workspace))
		})
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "MIN_THRESHOLD", envName("min-threshold"))
	assert.Equal(t, "GITHUB_API_URL", envName("github-api-url"))
	assert.Equal(t, "FILES", envName("files"))
}

func TestActionsEnvAliasesAreFlags(t *testing.T) {
	for key := range actionsEnvAliases {
		if key == "workspace" {
			continue
		}
		flag := rootCmd.PersistentFlags().Lookup(key)
		if flag == nil {
			flag = reportCmd.Flags().Lookup(key)
		}
		assert.NotNil(t, flag, "alias key %s has no flag", key)
	}
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"report", "check", "version", "mcp", "cache", "analysis"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub := map[string]bool{}
	for _, c := range analysisCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, want := range []string{"clear", "status", "history", "export", "migrate"} {
		assert.True(t, sub[want], "missing analysis subcommand %s", want)
	}
}
