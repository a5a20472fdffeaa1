// Package sqlite provides SQLite-based storage implementations for mangawatch services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string

	// Now returns the current time. Overridable in tests.
	Now func() time.Time
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path, Now: time.Now}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Wait for locks instead of failing with "database is locked".
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

func (db *DB) now() time.Time {
	return db.Now().UTC().Truncate(time.Second)
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tracked_items (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			cover_url TEXT NOT NULL DEFAULT '',
			domain TEXT NOT NULL,
			last_checked_at TEXT,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chapters (
			tracked_item_id TEXT NOT NULL REFERENCES tracked_items(id) ON DELETE CASCADE,
			number REAL NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			release_date TEXT,
			created_at TEXT NOT NULL,
			PRIMARY KEY (tracked_item_id, number)
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			user_id TEXT NOT NULL,
			tracked_item_id TEXT NOT NULL REFERENCES tracked_items(id) ON DELETE CASCADE,
			notifications_enabled INTEGER NOT NULL DEFAULT 1,
			reading_status TEXT NOT NULL DEFAULT 'reading',
			last_read_chapter REAL,
			PRIMARY KEY (user_id, tracked_item_id)
		);

		CREATE TABLE IF NOT EXISTS push_subscribers (
			user_id TEXT PRIMARY KEY,
			push_token TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS domain_strategies (
			domain TEXT PRIMARY KEY,
			strategy TEXT NOT NULL,
			last_success_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tracked_items_domain ON tracked_items(domain);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_tracked_item_id ON subscriptions(tracked_item_id);
	`

	_, err := db.db.Exec(schema)
	return err
}
