// Package cache persists fetched template repositories under the user cache
// directory and indexes them in SQLite.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"
)

// Cache errors.
var (
	ErrNotFound = errors.New("template not found in cache")
)

// DefaultDir returns the cache root, e.g. ~/.cache/petridish.
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, "petridish")
}

// DB wraps the sqlite handle backing the cache index.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the cache index at dir/index.db and runs
// migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	handle, err := sql.Open("sqlite", filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("open cache index: %w", err)
	}

	db := &DB{DB: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// OpenInMemory opens a private in-memory index, used in tests.
func OpenInMemory() (*DB, error) {
	handle, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory index: %w", err)
	}

	db := &DB{DB: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS templates (
			name       TEXT PRIMARY KEY,
			location   TEXT NOT NULL,
			path       TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate cache index: %w", err)
	}
	return nil
}
