package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable     = "ccstats_analysis_runs"
	contributorStatsTable = "ccstats_contributor_stats"
)

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
// The none backend yields a store that records nothing.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (*AnalysisStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}
	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{contributorStatsTable, getCreateContributorStatsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for ccstats_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(analysisRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				repo_path VARCHAR(1024) NOT NULL DEFAULT '',
				ref VARCHAR(255) NOT NULL DEFAULT '',
				lines_total INT NOT NULL DEFAULT 0,
				lines_covered INT NOT NULL DEFAULT 0,
				percent_covered DOUBLE NOT NULL DEFAULT 0,
				files_analyzed INT NOT NULL DEFAULT 0,
				files_skipped INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				repo_path TEXT NOT NULL DEFAULT '',
				ref TEXT NOT NULL DEFAULT '',
				lines_total INT NOT NULL DEFAULT 0,
				lines_covered INT NOT NULL DEFAULT 0,
				percent_covered DOUBLE PRECISION NOT NULL DEFAULT 0,
				files_analyzed INT NOT NULL DEFAULT 0,
				files_skipped INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				repo_path TEXT NOT NULL DEFAULT '',
				ref TEXT NOT NULL DEFAULT '',
				lines_total INTEGER NOT NULL DEFAULT 0,
				lines_covered INTEGER NOT NULL DEFAULT 0,
				percent_covered REAL NOT NULL DEFAULT 0,
				files_analyzed INTEGER NOT NULL DEFAULT 0,
				files_skipped INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)
	}
}

// getCreateContributorStatsQuery returns the CREATE TABLE query for ccstats_contributor_stats.
func getCreateContributorStatsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(contributorStatsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				contributor VARCHAR(320) NOT NULL,
				analysis_time DATETIME(6) NOT NULL,
				lines_total INT NOT NULL,
				lines_covered INT NOT NULL,
				percent_covered DOUBLE NOT NULL,
				PRIMARY KEY (analysis_id, contributor)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				contributor TEXT NOT NULL,
				analysis_time TIMESTAMPTZ NOT NULL,
				lines_total INT NOT NULL,
				lines_covered INT NOT NULL,
				percent_covered DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (analysis_id, contributor)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				contributor TEXT NOT NULL,
				analysis_time TEXT NOT NULL,
				lines_total INTEGER NOT NULL,
				lines_covered INTEGER NOT NULL,
				percent_covered REAL NOT NULL,
				PRIMARY KEY (analysis_id, contributor)
			);
		`, quoted)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
// The "repo_path" and "ref" params, when strings, are also stored in their own columns.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error) {
	if as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}
	repoPath, _ := configParams["repo_path"].(string)
	ref, _ := configParams["ref"].(string)

	quoted := quoteTableName(analysisRunsTable, as.backend)
	args := []any{formatTime(startTime, as.backend), repoPath, ref, string(configJSON)}

	var analysisID int64
	if as.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, repo_path, ref, config_params) VALUES ($1, $2, $3, $4) RETURNING analysis_id`, quoted)
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, repo_path, ref, config_params) VALUES (?, ?, ?, ?)`, quoted)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// RecordContributorStats stores the per-contributor totals of a run in one transaction.
func (as *AnalysisStoreImpl) RecordContributorStats(analysisID int64, stats []schema.ContributorStat) error {
	if as.db == nil || len(stats) == 0 {
		return nil
	}

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (analysis_id, contributor, analysis_time, lines_total, lines_covered, percent_covered) VALUES (%s)`,
		quoteTableName(contributorStatsTable, as.backend), placeholders(as.backend, 6))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare contributor insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := formatTime(time.Now(), as.backend)
	for _, s := range stats {
		if _, err := stmt.Exec(analysisID, s.Key, now, s.Lines, s.Covered, s.Percent()); err != nil {
			return fmt.Errorf("failed to insert stats for %s: %w", s.Key, err)
		}
	}
	return tx.Commit()
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, summary *schema.Summary, filesAnalyzed, filesSkipped int) error {
	if as.db == nil {
		return nil
	}

	quoted := quoteTableName(analysisRunsTable, as.backend)
	var start timeScanner
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quoted, bind(as.backend, 1))
	if err := as.db.QueryRow(query, analysisID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	lines, covered, percent := 0, 0, 0.0
	if summary != nil {
		lines, covered, percent = summary.Totals()
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, lines_total = %s, lines_covered = %s,
		percent_covered = %s, files_analyzed = %s, files_skipped = %s WHERE analysis_id = %s`,
		quoted,
		bind(as.backend, 1), bind(as.backend, 2), bind(as.backend, 3), bind(as.backend, 4),
		bind(as.backend, 5), bind(as.backend, 6), bind(as.backend, 7), bind(as.backend, 8))
	_, err := as.db.Exec(update, formatTime(endTime, as.backend), durationMs, lines, covered, percent, filesAnalyzed, filesSkipped, analysisID)
	if err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of 0 returns every run.
func (as *AnalysisStoreImpl) ListRuns(limit int) ([]schema.AnalysisRun, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, start_time, end_time, run_duration_ms, repo_path, ref,
		lines_total, lines_covered, files_analyzed, files_skipped, config_params
		FROM %s ORDER BY analysis_id DESC`, quoteTableName(analysisRunsTable, as.backend))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRun
	for rows.Next() {
		var run schema.AnalysisRun
		var start, end timeScanner
		var duration sql.NullInt64
		var params sql.NullString
		if err := rows.Scan(&run.AnalysisID, &start, &end, &duration, &run.RepoPath, &run.Ref,
			&run.Lines, &run.Covered, &run.FilesAnalyzed, &run.FilesSkipped, &params); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		run.StartTime = start.Time
		if end.Valid {
			run.EndTime = &end.Time
		}
		if duration.Valid {
			run.RunDurationMs = &duration.Int64
		}
		if params.Valid {
			run.ConfigParams = &params.String
		}
		results = append(results, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// ListContributorStats returns the stats recorded for a run, or for every run when analysisID is 0.
func (as *AnalysisStoreImpl) ListContributorStats(analysisID int64) ([]schema.ContributorStatRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, contributor, analysis_time, lines_total, lines_covered FROM %s`,
		quoteTableName(contributorStatsTable, as.backend))
	var args []any
	if analysisID > 0 {
		query += " WHERE analysis_id = " + bind(as.backend, 1)
		args = append(args, analysisID)
	}
	query += " ORDER BY analysis_id, contributor"

	rows, err := as.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributor stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ContributorStatRecord
	for rows.Next() {
		var rec schema.ContributorStatRecord
		var at timeScanner
		if err := rows.Scan(&rec.AnalysisID, &rec.Contributor, &at, &rec.Lines, &rec.Covered); err != nil {
			return nil, fmt.Errorf("failed to scan contributor stats: %w", err)
		}
		rec.AnalysisTime = at.Time
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributor stats: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	runs := quoteTableName(analysisRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest timeScanner
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT COUNT(DISTINCT contributor) FROM %s", quoteTableName(contributorStatsTable, as.backend)))
		if err := row.Scan(&status.TotalContributors); err != nil {
			return status, fmt.Errorf("failed to get total contributors: %w", err)
		}
	}

	for _, table := range []string{analysisRunsTable, contributorStatsTable} {
		var count int64
		row := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}
