// Package backup provides database backup, restore and retention.
// A backup is a copy of the SQLite file, optionally zipped together with a
// manifest and the current shop settings.
package backup

import (
	"context"
	"time"
)

// Backup describes one stored backup file.
type Backup struct {
	ID         int64     `db:"id" json:"id"`
	FileName   string    `db:"file_name" json:"fileName"`
	Path       string    `db:"path" json:"path"`
	SizeBytes  int64     `db:"size_bytes" json:"sizeBytes"`
	Compressed bool      `db:"compressed" json:"compressed"`
	Automatic  bool      `db:"automatic" json:"automatic"`
	UserID     int64     `db:"user_id" json:"userId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Manifest is embedded in zipped backups as manifest.json.
type Manifest struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	AppVersion string    `json:"app_version"`
}

// Repository defines storage operations for backup history.
type Repository interface {
	Create(ctx context.Context, b *Backup) error
	List(ctx context.Context, limit int) ([]Backup, error)
	DeleteByPath(ctx context.Context, path string) error
}

// DatabaseController is the slice of the store the backup service needs:
// flushing before a copy and swapping the file during a restore.
type DatabaseController interface {
	// Path returns the live database file path.
	Path() string

	// Checkpoint flushes pending writes into the main database file.
	Checkpoint(ctx context.Context) error

	// Swap atomically replaces the database file with data, closing the
	// live pool for the overwrite and reopening it after. Concurrent
	// queries block for the duration instead of failing.
	Swap(data []byte) error
}
