package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// Entry is one cached template.
type Entry struct {
	Name      string
	Location  string
	Path      string
	FetchedAt time.Time
}

// Store handles template index persistence.
type Store struct {
	db *DB
}

// NewStore creates a new Store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Put inserts or replaces an entry keyed by name.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if entry.Name == "" {
		return fmt.Errorf("cache entry name is required")
	}
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (name, location, path, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			location = excluded.location,
			path = excluded.path,
			fetched_at = excluded.fetched_at
	`, entry.Name, entry.Location, entry.Path, entry.FetchedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put cache entry %q: %w", entry.Name, err)
	}
	return nil
}

// Get returns the entry for name, or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, location, path, fetched_at
		FROM templates WHERE name = ?
	`, name)

	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry %q: %w", name, err)
	}
	return entry, nil
}

// List returns all entries ordered by name.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, location, path, fetched_at
		FROM templates ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, scanErr := scanEntry(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan cache entry: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Delete removes the index row for name and its template directory on disk.
// Returns ErrNotFound when the name is unknown.
func (s *Store) Delete(ctx context.Context, name string) error {
	entry, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	if entry.Path != "" {
		if err := os.RemoveAll(entry.Path); err != nil {
			return fmt.Errorf("remove cached template %q: %w", name, err)
		}
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete cache entry %q: %w", name, err)
	}
	return nil
}

func scanEntry(scan func(...any) error) (*Entry, error) {
	var entry Entry
	var fetchedAt string
	if err := scan(&entry.Name, &entry.Location, &entry.Path, &fetchedAt); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parse fetched_at: %w", err)
	}
	entry.FetchedAt = parsed
	return &entry, nil
}
