// Package sqlite implements the storage layer on an embedded SQLite
// database. One file on disk holds the whole shop, which is what makes
// file-copy backups and restores possible.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// dsnOptions enables foreign keys, WAL journaling and a busy timeout so
// concurrent HTTP handlers queue instead of failing on SQLITE_BUSY.
const dsnOptions = "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"

// Store owns the database handle. The mutex guards the swap during a
// restore; normal queries take the read lock through conn().
type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// Open opens (creating if needed) the database file and applies pragmas.
func Open(path string) (*Store, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, db: db}, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids lock contention
	// between pooled connections of the same process.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// conn returns the live handle under the read lock.
func (s *Store) conn() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Checkpoint flushes the WAL into the main database file so a plain file
// copy sees all committed data.
func (s *Store) Checkpoint(ctx context.Context) error {
	_, err := s.conn().ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	if err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}

// Close closes the handle. Used during restore and shutdown.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Swap replaces the database file with data. The mutex is held for the
// whole close, overwrite, reopen cycle, so concurrent queries wait on
// conn() instead of reaching a closed handle.
func (s *Store) Swap(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
		s.db = nil
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		// Come back up on whatever is on disk.
		if db, openErr := open(s.path); openErr == nil {
			s.db = db
		}
		return fmt.Errorf("overwrite database file: %w", err)
	}
	// Stale WAL side files would shadow the fresh file's contents.
	_ = os.Remove(s.path + "-wal")
	_ = os.Remove(s.path + "-shm")

	db, err := open(s.path)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Reopen opens a fresh handle on the same path after a restore swap.
func (s *Store) Reopen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		_ = s.db.Close()
	}
	db, err := open(s.path)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}
