package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// CoverageFormat represents the format of a coverage report.
	CoverageFormat string

	// DatabaseBackend represents the database backend for caching and analysis tracking.
	DatabaseBackend string

	// Status represents whether a contributor meets the coverage threshold.
	Status string
)

// All output modes supported.
const (
	TextOut     OutputMode = "text" // default
	CSVOut      OutputMode = "csv"
	JSONOut     OutputMode = "json"
	MarkdownOut OutputMode = "markdown"
	ParquetOut  OutputMode = "parquet"
)

// All coverage formats supported.
const (
	AutoFormat      CoverageFormat = "auto" // default
	CoberturaFormat CoverageFormat = "cobertura"
	GoCoverFormat   CoverageFormat = "gocover"
	CloverFormat    CoverageFormat = "clover"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All threshold statuses.
const (
	PassStatus Status = "pass"
	FailStatus Status = "fail"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:     {},
	CSVOut:      {},
	JSONOut:     {},
	MarkdownOut: {},
	ParquetOut:  {},
}

// ValidCoverageFormats lists all valid coverage formats.
var ValidCoverageFormats = map[CoverageFormat]struct{}{
	AutoFormat:      {},
	CoberturaFormat: {},
	GoCoverFormat:   {},
	CloverFormat:    {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
