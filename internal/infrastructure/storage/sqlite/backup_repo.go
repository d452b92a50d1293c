package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/domain/backup"
)

const backupsTable = "backups"

// Compile-time check that BackupRepo implements backup.Repository.
var _ backup.Repository = (*BackupRepo)(nil)

// BackupRepo implements backup.Repository. History rows are advisory:
// the files on disk are the source of truth.
type BackupRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewBackupRepo creates a backup history repository.
func NewBackupRepo(txManager *TxManager) *BackupRepo {
	return &BackupRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create inserts a history row and fills in its id.
func (r *BackupRepo) Create(ctx context.Context, b *backup.Backup) error {
	sql, args, err := r.builder.Insert(backupsTable).
		Columns("file_name", "path", "size_bytes", "compressed", "automatic", "user_id").
		Values(b.FileName, b.Path, b.SizeBytes, b.Compressed, b.Automatic, b.UserID).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert backup: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("backup id: %w", err)
	}
	return nil
}

// List returns history rows, newest first.
func (r *BackupRepo) List(ctx context.Context, limit int) ([]backup.Backup, error) {
	q := r.builder.Select("id", "file_name", "path", "size_bytes", "compressed", "automatic", "user_id", "created_at").
		From(backupsTable).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var backups []backup.Backup
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &backups, sql, args...); err != nil {
		return nil, fmt.Errorf("select backups: %w", err)
	}
	return backups, nil
}

// DeleteByPath removes the history row for a pruned file.
func (r *BackupRepo) DeleteByPath(ctx context.Context, path string) error {
	sql, args, err := r.builder.Delete(backupsTable).
		Where(squirrel.Eq{"path": path}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete backup row: %w", err)
	}
	return nil
}
