package cmd

import (
	"github.com/petrabarus/actions-committer-coverage-stats/core"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD coverage enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [repo-path]",
	Short: "Fail the build when a committer's coverage is below the threshold",
	Long: `Attribute coverage to committers and exit non-zero when any committer
falls below --min-threshold.

A committer exactly at the threshold passes. With --check-total the overall
coverage must also reach the threshold.

Examples:
  # Gate on 80% per committer (default)
  ccstats check --files coverage.xml

  # Gate on 60% per committer and overall
  ccstats check --files cover.out --min-threshold 60 --check-total`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Coverage check failed", err)
		}
	},
}
