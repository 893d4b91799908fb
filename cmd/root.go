package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/iocache"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// cacheManager is the global persistence manager instance.
var cacheManager contract.CacheManager

// actionsEnvAliases maps config keys to the variables GitHub Actions provides.
// The CCSTATS_ variable always comes first and wins.
var actionsEnvAliases = map[string][]string{
	"files":             {"INPUT_FILES"},
	"min-threshold":     {"INPUT_MIN_THRESHOLD"},
	"comment":           {"INPUT_COMMENT"},
	"github-token":      {"INPUT_GITHUB_TOKEN", "GITHUB_TOKEN"},
	"github-ref":        {"GITHUB_REF"},
	"github-repository": {"GITHUB_REPOSITORY"},
	"github-api-url":    {"GITHUB_API_URL"},
	"workspace":         {"GITHUB_WORKSPACE"},
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "ccstats",
	Short:              "Attribute test coverage to the committers who wrote the code.",
	Long:               `ccstats joins coverage reports with git blame to show how well each committer's lines are covered.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig sets up defaults and environment bindings.
func initConfig() {
	// Set environment variable prefix
	viper.SetEnvPrefix("CCSTATS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	for key, aliases := range actionsEnvAliases {
		names := append([]string{"CCSTATS_" + envName(key)}, aliases...)
		if err := viper.BindEnv(append([]string{key}, names...)...); err != nil {
			contract.LogFatal("Error binding environment for "+key, err)
		}
	}

	// Set defaults in Viper
	viper.SetDefault("files", contract.DefaultCoverageFiles)
	viper.SetDefault("format", schema.AutoFormat)
	viper.SetDefault("ref", contract.DefaultRef)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("min-threshold", contract.DefaultMinThreshold)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("github-api-url", contract.DefaultGitHubAPIURL)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("cache-db-connect", "")
	viper.SetDefault("analysis-backend", "")
	viper.SetDefault("analysis-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("limit", contract.DefaultHistoryLimit)
}

// envName converts a config key to its environment variable suffix.
func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(ctx context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	input.RepoPathStr = repoPathArg(args, viper.GetString("workspace"))

	// 4. Run all validation and complex parsing.
	client := contract.NewLocalGitClient()
	if err := contract.ProcessAndValidate(ctx, cfg, client, input); err != nil {
		return err
	}

	// 5. Initialize persistence layer with validated config
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	cacheManager = iocache.Manager
	return nil
}

// repoPathArg picks the repository path from the positional argument,
// then the Actions workspace, then the current directory.
func repoPathArg(args []string, workspace string) string {
	if len(args) == 1 && args[0] != "" {
		return args[0]
	}
	if workspace != "" {
		return workspace
	}
	return "."
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".ccstats") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
