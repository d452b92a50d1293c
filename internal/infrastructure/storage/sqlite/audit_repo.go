package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/domain/audit"
)

const auditTable = "audit_logs"

// Compile-time check that AuditRepo implements audit.Repository.
var _ audit.Repository = (*AuditRepo)(nil)

// AuditRepo implements audit.Repository.
type AuditRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewAuditRepo creates an audit log repository.
func NewAuditRepo(txManager *TxManager) *AuditRepo {
	return &AuditRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create appends one audit entry.
func (r *AuditRepo) Create(ctx context.Context, e *audit.Entry) error {
	sql, args, err := r.builder.Insert(auditTable).
		Columns("user_id", "action", "module", "record_id", "details").
		Values(e.UserID, e.Action, e.Module, e.RecordID, e.Details).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("audit id: %w", err)
	}
	return nil
}

// List returns audit entries matching the filter, newest first.
func (r *AuditRepo) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	q := r.builder.Select("id", "user_id", "action", "module", "record_id", "details", "created_at").
		From(auditTable)

	if filter.UserID != nil {
		q = q.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Module != "" {
		q = q.Where(squirrel.Eq{"module": filter.Module})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []audit.Entry
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}
	return entries, nil
}
