// Package cache persists conditional-request metadata and bodies for fetched
// calendars, so unchanged sources are replayed from disk instead of being
// transferred again. Only raw bytes are stored; parsed events never are.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const defaultDBName = "fetchcache.db"

// Store is the sqlite-backed calendar cache.
type Store struct {
	DB *sql.DB
}

// Entry is one cached calendar response.
type Entry struct {
	URL          string
	ETag         string
	LastModified string
	Body         []byte
	UpdatedAt    time.Time
}

// Open opens (creating if needed) the cache database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", filepath.Join(dir, defaultDBName))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	s := &Store{DB: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running cache migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) migrate() error {
	_, err := s.DB.Exec(`CREATE TABLE IF NOT EXISTS calendars (
		url TEXT PRIMARY KEY,
		etag TEXT NOT NULL DEFAULT '',
		last_modified TEXT NOT NULL DEFAULT '',
		body BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Get returns the cached entry for url, if any.
func (s *Store) Get(ctx context.Context, url string) (Entry, bool, error) {
	e := Entry{URL: url}
	var updated string
	err := s.DB.QueryRowContext(ctx,
		`SELECT etag, last_modified, body, updated_at FROM calendars WHERE url = ?`, url).
		Scan(&e.ETag, &e.LastModified, &e.Body, &updated)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("querying cache: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339, updated); perr == nil {
		e.UpdatedAt = t
	}
	return e, true, nil
}

// Put stores or replaces the cached entry for e.URL.
func (s *Store) Put(ctx context.Context, e Entry) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO calendars (url, etag, last_modified, body, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		e.URL, e.ETag, e.LastModified, e.Body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}
