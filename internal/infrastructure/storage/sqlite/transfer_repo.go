package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
	"hussiny/internal/domain/transfers"
)

const transfersTable = "transfers"

var transferColumns = []string{
	"id", "reference", "channel", "direction", "customer_name", "phone",
	"wallet_number", "amount", "commission", "note", "user_id", "created_at",
}

// Compile-time check that TransferRepo implements transfers.Repository.
var _ transfers.Repository = (*TransferRepo)(nil)

// TransferRepo implements transfers.Repository.
type TransferRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewTransferRepo creates a transfer repository.
func NewTransferRepo(txManager *TxManager) *TransferRepo {
	return &TransferRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create inserts a transfer and fills in its id.
func (r *TransferRepo) Create(ctx context.Context, t *transfers.Transfer) error {
	q := r.builder.Insert(transfersTable).
		Columns("reference", "channel", "direction", "customer_name", "phone",
			"wallet_number", "amount", "commission", "note", "user_id").
		Values(t.Reference, t.Channel, t.Direction, t.CustomerName, t.Phone,
			t.WalletNumber, t.Amount, t.Commission, t.Note, t.UserID)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "transfer", t.Reference)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transfer id: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a transfer.
func (r *TransferRepo) Update(ctx context.Context, t *transfers.Transfer) error {
	q := r.builder.Update(transfersTable).
		Set("channel", t.Channel).
		Set("direction", t.Direction).
		Set("customer_name", t.CustomerName).
		Set("phone", t.Phone).
		Set("wallet_number", t.WalletNumber).
		Set("amount", t.Amount).
		Set("commission", t.Commission).
		Set("note", t.Note).
		Where(squirrel.Eq{"id": t.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("transfer", t.ID)
	}
	return nil
}

// Delete removes a transfer row.
func (r *TransferRepo) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.builder.Delete(transfersTable).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("transfer", id)
	}
	return nil
}

// GetByID returns a transfer by id.
func (r *TransferRepo) GetByID(ctx context.Context, id int64) (*transfers.Transfer, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id)
}

// GetByReference returns a transfer by its reference.
func (r *TransferRepo) GetByReference(ctx context.Context, ref string) (*transfers.Transfer, error) {
	return r.getOne(ctx, squirrel.Eq{"reference": ref}, ref)
}

func (r *TransferRepo) getOne(ctx context.Context, where any, id any) (*transfers.Transfer, error) {
	sql, args, err := r.builder.Select(transferColumns...).From(transfersTable).
		Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t transfers.Transfer
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &t, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("transfer", id)
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return &t, nil
}

// List returns transfers matching the filter, newest first.
func (r *TransferRepo) List(ctx context.Context, filter transfers.Filter) ([]transfers.Transfer, error) {
	q := r.builder.Select(transferColumns...).From(transfersTable)

	if filter.Channel != "" {
		q = q.Where(squirrel.Eq{"channel": filter.Channel})
	}
	if filter.Direction != "" {
		q = q.Where(squirrel.Eq{"direction": filter.Direction})
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.Like{"reference": like},
			squirrel.Like{"customer_name": like},
			squirrel.Like{"phone": like},
			squirrel.Like{"wallet_number": like},
		})
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

	var result []transfers.Transfer
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &result, sql, args...); err != nil {
		return nil, fmt.Errorf("select transfers: %w", err)
	}
	return result, nil
}

// SumCommission sums commission within [from, to).
func (r *TransferRepo) SumCommission(ctx context.Context, from, to time.Time) (types.Money, error) {
	const q = `SELECT COALESCE(SUM(commission), 0) FROM transfers WHERE created_at >= ? AND created_at < ?`

	var total float64
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q, from, to).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum commission: %w", err)
	}
	return types.RoundMoney(types.NewMoney(total)), nil
}
