// Package audit provides the append-only audit trail.
// Writes are best-effort: a failed audit write is logged and swallowed so
// it can never roll back the business transaction it describes.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"hussiny/internal/core/appctx"
	"hussiny/pkg/logger"
)

// Entry is one audit log row.
type Entry struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Action    string    `db:"action" json:"action"`
	Module    string    `db:"module" json:"module"`
	RecordID  string    `db:"record_id" json:"recordId,omitempty"`
	Details   string    `db:"details" json:"details,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Repository defines storage operations for audit entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, error)
}

// Filter narrows audit listings.
type Filter struct {
	UserID   *int64
	Module   string
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Recorder writes audit entries.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a new audit recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record writes one audit entry. The actor is taken from context when not
// set. Errors are logged, never returned.
func (r *Recorder) Record(ctx context.Context, action, module, recordID string, details any) {
	entry := &Entry{
		UserID:   appctx.GetUserID(ctx),
		Action:   action,
		Module:   module,
		RecordID: recordID,
	}

	if details != nil {
		if s, ok := details.(string); ok {
			entry.Details = s
		} else if data, err := json.Marshal(details); err == nil {
			entry.Details = string(data)
		}
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		logger.Warn(ctx, "audit write failed",
			"action", action,
			"module", module,
			"record_id", recordID,
			"error", err,
		)
	}
}

// List returns audit entries matching the filter, newest first.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return r.repo.List(ctx, filter)
}
