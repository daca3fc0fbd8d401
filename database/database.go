// Package database provides database connectivity and schema management.
package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // Register pgx5:// migrations
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // Import pgx driver
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Import sqlite3 driver
)

// Supported database/sql driver names
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DB wraps the SQL database connection
type DB struct {
	*sqlx.DB
	dataSourceName string
}

// NewDB creates a new database connection
func NewDB(driver, dataSourceName string) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// each sqlite connection to :memory: is its own database
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, dataSourceName: dataSourceName}, nil
}

// InitSchema applies the embedded migrations
func (db *DB) InitSchema() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var m *migrate.Migrate
	switch db.DriverName() {
	case DriverSQLite:
		// migrate must share the connection, otherwise :memory: databases stay empty
		driver, err := sqlite3.WithInstance(db.DB.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, DriverSQLite, driver)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
	default:
		url, err := migrationURL(db.dataSourceName)
		if err != nil {
			return err
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, url)
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
		defer func() { _, _ = m.Close() }()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// migrationURL rewrites a postgres URL to the scheme registered by migrate's pgx/v5 driver.
func migrationURL(dsn string) (string, error) {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix), nil
		}
	}
	return "", fmt.Errorf("postgres migrations require a postgres:// URL")
}
