package cmd

import (
	"github.com/petrabarus/actions-committer-coverage-stats/core"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd attributes coverage to committers and prints the ranking.
var reportCmd = &cobra.Command{
	Use:   "report [repo-path]",
	Short: "Rank committers by how much of their code is covered by tests",
	Long: `Join one or more coverage reports with git blame and rank every committer
by the share of their lines that tests cover.

Each covered or uncovered line is credited to the author who last touched it.
Files that git does not track are skipped, and lines blame cannot attribute
are left out of the totals.

Supported coverage formats: Cobertura XML, Clover XML and Go cover profiles.
The format is detected automatically unless --format is given.

In GitHub Actions, --comment posts the markdown report on the pull request
named by GITHUB_REF.

Examples:
  # Text table for a Cobertura report
  ccstats report --files coverage.xml

  # Merge a Go profile and a Clover report, as JSON
  ccstats report --files cover.out,clover.xml --output json

  # Post the report on the current pull request
  ccstats report --comment --resolve-users`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Report failed", err)
		}
	},
}
