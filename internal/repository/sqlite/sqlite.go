// Package sqlite implements repository.FavoriteRepository on an embedded
// SQLite database.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite, so the binary builds without CGo and
// cross-compiles like any other Go program. Tests run against ":memory:".
//
// ONE COLLECTION:
// Every favorite lives in a single `favorites` table. There is deliberately no
// UNIQUE(user_id, character_id) constraint: uniqueness is an application rule
// enforced by the service through Exists, and the store accepts whatever it is
// given.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// registers the "sqlite" driver with database/sql
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a sql.DB connection pool.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs migrations.
//
//   - "data/marvel.db" → file-backed, parent directory created on demand
//   - ":memory:"       → in-memory, lost on Close
func New(dbPath string) (*DB, error) {
	if dbPath != MemoryPath {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: creating directory %s: %w", dir, err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each pooled connection to ":memory:" would otherwise see its own empty
	// database.
	if dbPath == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate is idempotent: CREATE ... IF NOT EXISTS on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS favorites (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			character_id   INTEGER NOT NULL,
			character_name TEXT NOT NULL,
			added_at       TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating favorites table: %w", err)
	}
	return nil
}
