package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// Default values for configuration.
const (
	DefaultCoverageFiles = "coverage.xml"
	DefaultMinThreshold  = 80.0
	DefaultRef           = "HEAD"
	DefaultPrecision     = 2
	DefaultGitHubAPIURL  = "https://api.github.com"
	DefaultHistoryLimit  = 20
	MaxHistoryLimit      = 1000
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// GitHubConfig holds the settings needed to deliver a report as a pull request comment.
type GitHubConfig struct {
	Token      string // Please use env var as this is plaintext
	Repository string // owner/name
	Ref        string // e.g. refs/pull/123/merge
	APIURL     string
}

// Config holds the runtime configuration for the analysis.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath      string
	Ref           string
	CoverageFiles []string
	Format        schema.CoverageFormat
	StripPrefixes []string
	Excludes      []string
	Workers       int

	MinThreshold float64
	CheckTotal   bool

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	Comment      bool
	ResolveUsers bool
	GitHub       GitHubConfig

	HistoryLimit int

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Files             string  `mapstructure:"files"`
	Format            string  `mapstructure:"format"`
	StripPrefix       string  `mapstructure:"strip-prefix"`
	Exclude           string  `mapstructure:"exclude"`
	Ref               string  `mapstructure:"ref"`
	Workers           int     `mapstructure:"workers"`
	MinThreshold      float64 `mapstructure:"min-threshold"`
	Precision         int     `mapstructure:"precision"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Width             int     `mapstructure:"width"`
	Color             string  `mapstructure:"color"`
	CacheBackend      string  `mapstructure:"cache-backend"`
	CacheDBConnect    string  `mapstructure:"cache-db-connect"`
	AnalysisBackend   string  `mapstructure:"analysis-backend"`
	AnalysisDBConnect string  `mapstructure:"analysis-db-connect"`

	// --- GitHub delivery, usually from the Actions environment ---
	Comment          bool   `mapstructure:"comment"`
	ResolveUsers     bool   `mapstructure:"resolve-users"`
	GitHubToken      string `mapstructure:"github-token"`
	GitHubRepository string `mapstructure:"github-repository"`
	GitHubRef        string `mapstructure:"github-ref"`
	GitHubAPIURL     string `mapstructure:"github-api-url"`

	// --- Fields from checkCmd.Flags() ---
	CheckTotal bool `mapstructure:"check-total"`

	// --- Fields from analysis history ---
	Limit int `mapstructure:"limit"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.CoverageFiles = append([]string(nil), c.CoverageFiles...)
	clone.StripPrefixes = append([]string(nil), c.StripPrefixes...)
	clone.Excludes = append([]string(nil), c.Excludes...)
	return &clone
}

// Params returns the settings recorded with each analysis run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"repo_path":      c.RepoPath,
		"ref":            c.Ref,
		"coverage_files": c.CoverageFiles,
		"format":         string(c.Format),
		"workers":        c.Workers,
		"min_threshold":  c.MinThreshold,
		"excludes":       c.Excludes,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processGitHub(cfg, input); err != nil {
		return err
	}
	return resolveGitPath(ctx, cfg, client, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis-db-connect: %w", err)
	}

	// The two stores keep separate tables but must not share one SQLite file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.CheckTotal = input.CheckTotal
	cfg.StripPrefixes = SplitList(input.StripPrefix)
	cfg.Excludes = SplitList(input.Exclude)

	cfg.CoverageFiles = SplitList(input.Files)
	if len(cfg.CoverageFiles) == 0 {
		return fmt.Errorf("at least one coverage file is required (--files)")
	}

	cfg.Format = schema.CoverageFormat(strings.ToLower(strings.TrimSpace(input.Format)))
	if cfg.Format == "" {
		cfg.Format = schema.AutoFormat
	}
	if _, ok := schema.ValidCoverageFormats[cfg.Format]; !ok {
		return fmt.Errorf("invalid coverage format '%s'. must be auto, cobertura, gocover, clover", input.Format)
	}

	cfg.Ref = strings.TrimSpace(input.Ref)
	if cfg.Ref == "" {
		cfg.Ref = DefaultRef
	}

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.MinThreshold < 0.0 || input.MinThreshold > 100.0 {
		return fmt.Errorf("min-threshold must be between 0 and 100 (received %.2f)", input.MinThreshold)
	}
	cfg.MinThreshold = input.MinThreshold

	if input.Precision < 0 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, markdown, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.HistoryLimit = input.Limit
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.HistoryLimit < 0 || cfg.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxHistoryLimit, input.Limit)
	}
	return nil
}

// processGitHub copies the pull request delivery settings.
func processGitHub(cfg *Config, input *ConfigRawInput) error {
	cfg.Comment = input.Comment
	cfg.ResolveUsers = input.ResolveUsers
	cfg.GitHub = GitHubConfig{
		Token:      strings.TrimSpace(input.GitHubToken),
		Repository: strings.TrimSpace(input.GitHubRepository),
		Ref:        strings.TrimSpace(input.GitHubRef),
		APIURL:     strings.TrimRight(strings.TrimSpace(input.GitHubAPIURL), "/"),
	}
	if cfg.GitHub.APIURL == "" {
		cfg.GitHub.APIURL = DefaultGitHubAPIURL
	}
	if !cfg.Comment && !cfg.ResolveUsers {
		return nil
	}
	if cfg.GitHub.Token == "" {
		return fmt.Errorf("github-token is required to talk to the GitHub API")
	}
	if cfg.Comment {
		owner, name, ok := strings.Cut(cfg.GitHub.Repository, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("github-repository must be in owner/name form (received %q)", cfg.GitHub.Repository)
		}
	}
	return nil
}

// resolveGitPath resolves the Git repository root from the positional path.
func resolveGitPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	gitContextPath := absSearchPath
	if info, statErr := os.Stat(absSearchPath); statErr == nil && !info.IsDir() {
		gitContextPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, gitContextPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot
	return nil
}
