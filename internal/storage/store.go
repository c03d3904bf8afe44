// Package storage is the only package that touches the relational
// store. Every read and write on owned entities is scoped by the owning
// user id; a row is only ever visible to mutations and lookups that
// carry both its id and its owner's id.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite connection. A Store constructed via
// Unavailable (or after a failed Open handled by the caller) carries a
// nil handle: reads return empty results, writes return
// core.ErrStorageUnavailable. The process keeps serving either way.
type Store struct {
	db          *sql.DB
	ownerOpenID string
}

// Open opens (and if needed creates) the SQLite database at dbPath and
// runs pending migrations. ownerOpenID is the external identity that
// gets auto-promoted to admin on upsert; it may be empty.
func Open(dbPath, ownerOpenID string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, ownerOpenID: ownerOpenID}, nil
}

// Unavailable returns a store with no backing connection.
func Unavailable() *Store {
	return &Store{}
}

// Available reports whether a usable connection exists.
func (s *Store) Available() bool {
	return s.db != nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// now returns the single timestamp representation persisted everywhere:
// UTC, truncated to whole seconds so values round-trip through SQLite
// and compare correctly as text.
func now() time.Time {
	return normalizeTime(time.Now())
}

// normalizeTime is applied to every bound timestamp. SQLite compares
// TIMESTAMP columns lexically, so mixed sub-second precision would
// break range filters and ordering.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
