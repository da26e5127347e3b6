// Package database holds the planner's SQLite file: the key-value table
// behind the sqlite plan store and the generation metrics table.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ai-study-planner/internal/config"
	"ai-study-planner/internal/storage"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the planner database, migrated and ready for use.
type DB struct {
	SQL *sql.DB
}

// NewDB creates the file at dbPath if needed, brings its schema up to date
// and opens it.
func NewDB(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}
	// one writer at a time: the bot saves plans and metrics from many goroutines
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}
	return &DB{SQL: conn}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.SQL.Close()
}

// PlanKV returns the key-value store plans are kept in for the given
// backend: the kv_entries table for sqlite, one file per key in dataDir
// otherwise.
func (d *DB) PlanKV(backend, dataDir string) (storage.KV, error) {
	switch backend {
	case config.StoreSQLite:
		return NewKVStore(d.SQL), nil
	case config.StoreFile:
		return storage.NewFileStore(dataDir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// RunMigrations applies the embedded migrations to the file at dbPath.
// An up-to-date schema is not an error.
func RunMigrations(dbPath string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	// golang-migrate's sqlite driver runs on modernc and wants a sqlite:// URL
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		return nil
	case err != nil:
		return fmt.Errorf("failed to migrate %s: %w", dbPath, err)
	}

	version, _, _ := m.Version()
	log.Printf("Planner database migrated to version %d", version)
	return nil
}
