package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// blameTable is the name of the table for blame caching.
const blameTable = "blame_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with separate cache and analysis stores.
// An empty backend leaves the corresponding store disabled.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, analysisBackend schema.DatabaseBackend, analysisConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		blame, analysis, err := openStores(cacheBackend, cacheConnStr, analysisBackend, analysisConnStr)
		if err != nil {
			initErr = err
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.blame = blame
		Manager.analysis = analysis
	})

	return initErr
}

// NewManager builds a standalone manager, for callers that should not share the global one.
func NewManager(cacheBackend schema.DatabaseBackend, cacheConnStr string, analysisBackend schema.DatabaseBackend, analysisConnStr string) (*CacheStoreManager, error) {
	blame, analysis, err := openStores(cacheBackend, cacheConnStr, analysisBackend, analysisConnStr)
	if err != nil {
		return nil, err
	}
	return &CacheStoreManager{blame: blame, analysis: analysis}, nil
}

func openStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, analysisBackend schema.DatabaseBackend, analysisConnStr string) (contract.CacheStore, contract.AnalysisStore, error) {
	var blame contract.CacheStore
	if cacheBackend != "" {
		store, err := NewCacheStore(blameTable, cacheBackend, cacheConnStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize blame caching: %w", err)
		}
		blame = store
	}

	var analysis contract.AnalysisStore
	if analysisBackend != "" {
		store, err := NewAnalysisStore(analysisBackend, analysisConnStr)
		if err != nil {
			if blame != nil {
				_ = blame.Close()
			}
			return nil, nil, fmt.Errorf("failed to initialize analysis store: %w", err)
		}
		analysis = store
	}
	return blame, analysis, nil
}

// Close closes both stores of the manager.
func (mgr *CacheStoreManager) Close() {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.blame != nil {
		_ = mgr.blame.Close()
	}
	if mgr.analysis != nil {
		_ = mgr.analysis.Close()
	}
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(Manager.Close)
}

// ClearCache clears the blame cache for the specified backend.
// SQLite deletes the database file, MySQL and PostgreSQL drop the table,
// and the none backend does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, blameTable)
}

// ClearAnalysis clears the analysis history for the specified backend.
func ClearAnalysis(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, contributorStatsTable, analysisRunsTable, "schema_migrations")
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return errors.New("dbFilePath cannot be empty for SQLite backend")
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, tables...)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// dropSQLTables connects to the SQL database and drops the tables if they exist.
func dropSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	db, err := sql.Open(driverName(backend), connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
