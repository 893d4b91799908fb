package iocache

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationsDir returns the embedded migrations directory for backend.
func migrationsDir(backend schema.DatabaseBackend) (fs.FS, error) {
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return fs.Sub(migrationsFS, "migrations/"+string(backend))
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// MigrateAnalysis runs database migrations for the analysis store and returns
// a one-line description of what happened.
//   - If targetVersion < 0, it migrates to the latest version.
//   - If targetVersion == 0, it rolls back all migrations.
//   - If targetVersion > 0, it migrates to the specified version.
func MigrateAnalysis(backend schema.DatabaseBackend, connStr string, targetVersion int) (string, error) {
	if backend == schema.NoneBackend {
		return "", errors.New("migrations are not supported for the none backend")
	}

	dir, err := migrationsDir(backend)
	if err != nil {
		return "", err
	}
	db, err := openDB(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	var driver database.Driver
	switch backend {
	case schema.SQLiteBackend:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case schema.MySQLBackend:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	}
	if err != nil {
		return "", fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	sourceDriver, err := iofs.New(dir, ".")
	if err != nil {
		return "", fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "ccstats", driver)
	if err != nil {
		return "", fmt.Errorf("failed to create migrate instance: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return "", fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return "", fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			return "No migration needed. Database is already at the latest version.", nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to migrate to latest version: %w", err)
		}
		newVersion, _, _ := m.Version()
		return fmt.Sprintf("Successfully migrated from version %d to version %d", currentVersion, newVersion), nil

	case targetVersion == 0:
		err = m.Down()
		if errors.Is(err, migrate.ErrNoChange) {
			return "No migration needed. Database is already at version 0", nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to roll back to version 0: %w", err)
		}
		return fmt.Sprintf("Successfully rolled back from version %d to version 0", currentVersion), nil

	default:
		err = m.Migrate(uint(targetVersion))
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Sprintf("No migration needed. Database is already at version %d", targetVersion), nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
		}
		return fmt.Sprintf("Successfully migrated from version %d to version %d", currentVersion, targetVersion), nil
	}
}
