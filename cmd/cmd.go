// Package cmd defines the command-line interface for ccstats.
package cmd

import (
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisHistoryCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("files", contract.DefaultCoverageFiles, "Comma-separated list of coverage reports")
	rootCmd.PersistentFlags().String("format", string(schema.AutoFormat), "Coverage format: auto or cobertura or gocover or clover")
	rootCmd.PersistentFlags().String("strip-prefix", "", "Comma-separated list of path prefixes to strip from report paths")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	rootCmd.PersistentFlags().String("ref", contract.DefaultRef, "Git reference to blame at")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Float64("min-threshold", contract.DefaultMinThreshold, "Minimum covered percentage for each committer")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or markdown or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Blame cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().Bool("resolve-users", false, "Resolve committer emails to GitHub usernames")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub token (prefer the GITHUB_TOKEN env var)")
	rootCmd.PersistentFlags().String("github-repository", "", "GitHub repository in owner/name form")
	rootCmd.PersistentFlags().String("github-ref", "", "Git ref of the workflow run, e.g. refs/pull/1/merge")
	rootCmd.PersistentFlags().String("github-api-url", contract.DefaultGitHubAPIURL, "GitHub REST API base URL")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().Bool("comment", false, "Post the report as a pull request comment")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Bool("check-total", false, "Also fail when total coverage is below the threshold")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of analysisHistoryCmd to Viper
	analysisHistoryCmd.Flags().Int("limit", contract.DefaultHistoryLimit, "Number of runs to display")
	if err := viper.BindPFlags(analysisHistoryCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis history flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
