// Package dbpkg provides helpers to make db initialization and testing easier.
package dbpkg

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"

	"github.com/bankofkat/ledger/db/migration"
)

// SQLInterface provides necessary db methods to perform queries. It is
// satisfied by both *sql.DB and *sql.Tx so repositories can run standalone or
// inside a transaction.
type SQLInterface interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Setup sets up connection with database.
func Setup(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies all pending schema migrations.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migration.FS, ".")
	if err != nil {
		return err
	}

	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// IsContention reports whether err is a storage-level lock conflict that a
// caller may retry.
func IsContention(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	return false
}

// TestSource returns a SQLite source string for the given database path with
// the durability settings the application runs with.
func TestSource(path string) string {
	return "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"
}

// SetupTest opens a migrated throwaway database for a test. The database lives
// in a per-test temporary directory and is closed on cleanup.
func SetupTest(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Setup("sqlite3", TestSource(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("dbpkg.Setup() failed: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("dbpkg.Migrate() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return db
}
