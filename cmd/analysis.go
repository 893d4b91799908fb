package cmd

import (
	"fmt"
	"os"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/iocache"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/outwriter"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analysisBackendFromConfig reads and validates the analysis backend settings.
func analysisBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("analysis-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("analysis-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// analysisSetup loads minimal configuration needed for analysis operations.
// This is used by commands that need analysis access without full shared setup.
func analysisSetup() error {
	backend, connStr, err := analysisBackendFromConfig()
	if err != nil {
		return err
	}

	// No blame caching for analysis commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup does NOT initialize stores or create tables,
// so migrations can run against a fresh database.
func analysisMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := analysisBackendFromConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}
	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	return nil
}

// analysisHistorySetup also validates the output mode and limit of the history listing.
func analysisHistorySetup(cmd *cobra.Command, args []string) error {
	if err := analysisSetupWrapper(cmd, args); err != nil {
		return err
	}

	output := schema.OutputMode(viper.GetString("output"))
	switch output {
	case schema.TextOut, schema.CSVOut, schema.JSONOut:
	default:
		return fmt.Errorf("invalid history output '%s'. must be text, csv, json", output)
	}

	limit := viper.GetInt("limit")
	if limit < 1 || limit > contract.MaxHistoryLimit {
		return fmt.Errorf("--limit must be between 1 and %d", contract.MaxHistoryLimit)
	}

	precision := viper.GetInt("precision")
	if precision < 0 || precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4")
	}

	cfg.Output = output
	cfg.HistoryLimit = limit
	cfg.Precision = precision
	cfg.Width = viper.GetInt("width")
	return nil
}

// analysisCmd focused on analysis data management.
//
// Note: Analysis subcommands use minimal initialization (analysisSetup) instead of
// the full sharedSetup used by report commands. This avoids Git repo validation
// and coverage config processing for simple analysis operations.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage historical analysis tracking and exports",
	Long: `Manage the history of coverage runs used for trend tracking.

When enabled with --analysis-backend, every report or check run stores:
- Run metadata (timestamp, configuration, duration)
- Overall covered and total lines
- Per-committer covered and total lines

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show analysis tracking statistics
  history - List the most recent runs
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  ccstats analysis status --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  ccstats analysis export --analysis-backend sqlite --output-file ccstats-data`,
}

// analysisClearCmd clears the analysis data.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all historical analysis tracking data",
	Long: `Delete all stored analysis runs and committer coverage history.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  ccstats analysis export --output-file backup
  ccstats analysis clear`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, iocache.AnalysisDBFilePath(cfg.AnalysisDBConnect), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows analysis status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display analysis tracking statistics and connection details",
	Long: `Show detailed information about historical analysis tracking.

Displays:
- Backend type and connection status
- Total number of analysis runs stored
- Last and oldest analysis run timestamps
- Number of distinct committers seen
- Database table sizes

Examples:
  # Check analysis tracking status
  ccstats analysis status`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.GetAnalysisStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

// analysisHistoryCmd lists the most recent analysis runs.
var analysisHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analysis runs with their overall coverage",
	Long: `List the most recent analysis runs, newest first.

Supports text, csv and json output via --output.

Examples:
  # Last 20 runs
  ccstats analysis history

  # Last 5 runs as JSON
  ccstats analysis history --limit 5 --output json`,
	PreRunE: analysisHistorySetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetAnalysisStore()
		if store == nil {
			contract.LogFatal("Failed to list analysis runs", fmt.Errorf("analysis tracking is disabled"))
		}
		runs, err := store.ListRuns(cfg.HistoryLimit)
		if err != nil {
			contract.LogFatal("Failed to list analysis runs", err)
		}
		if err := outwriter.NewOutWriter().WriteHistory(runs, cfg); err != nil {
			contract.LogFatal("Failed to write analysis history", err)
		}
	},
}

// analysisExportCmd exports analysis data to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export historical data to Parquet for BI tools and analytics",
	Long: `Export all stored analysis data to Parquet format for use with analytics tools.

Exports two datasets named after the --output-file prefix:
- <prefix>.analysis_runs.parquet - metadata and totals of each analysis run
- <prefix>.contributor_stats.parquet - per-committer coverage of each run

Requires: --output-file parameter

Examples:
  # Export all data
  ccstats analysis export --output-file ccstats-data

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('ccstats-data.analysis_runs.parquet') LIMIT 10"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAnalysisExport(cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the analysis store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the analysis tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  ccstats analysis migrate --analysis-backend sqlite

  # Rollback everything
  ccstats analysis migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: analysisMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		msg, err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println(msg)
	},
}
