package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/core/apperror"
	"hussiny/internal/domain/ledger"
)

const movementsTable = "stock_movements"

var movementColumns = []string{
	"id", "product_id", "change_qty", "movement_type",
	"reference_id", "user_id", "note", "created_at",
}

// Compile-time check that MovementRepo implements ledger.Repository.
var _ ledger.Repository = (*MovementRepo)(nil)

// MovementRepo implements ledger.Repository.
type MovementRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewMovementRepo creates a stock movement repository.
func NewMovementRepo(txManager *TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// CreateMovement appends one movement row.
func (r *MovementRepo) CreateMovement(ctx context.Context, m *ledger.Movement) error {
	sql, args, err := r.builder.Insert(movementsTable).
		Columns("product_id", "change_qty", "movement_type", "reference_id", "user_id", "note").
		Values(m.ProductID, m.ChangeQty, m.Type, m.ReferenceID, m.UserID, m.Note).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("movement id: %w", err)
	}
	return nil
}

// AdjustQuantity applies delta to the product quantity and returns the
// resulting value in one statement, so concurrent adjustments serialize on
// the row instead of racing a read-modify-write.
func (r *MovementRepo) AdjustQuantity(ctx context.Context, productID int64, delta int) (int, error) {
	const q = `UPDATE products SET quantity = quantity + ? WHERE id = ? RETURNING quantity`

	var resulting int
	err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q, delta, productID).Scan(&resulting)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.NewNotFound("product", productID)
		}
		return 0, fmt.Errorf("adjust quantity: %w", err)
	}
	return resulting, nil
}

// GetQuantity returns the current stored quantity.
func (r *MovementRepo) GetQuantity(ctx context.Context, productID int64) (int, error) {
	query, args, err := r.builder.Select("quantity").From(productsTable).
		Where(squirrel.Eq{"id": productID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var qty int
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, query, args...).Scan(&qty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.NewNotFound("product", productID)
		}
		return 0, fmt.Errorf("get quantity: %w", err)
	}
	return qty, nil
}

// ListByProduct returns movements for a product, newest first.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID int64, filter ledger.HistoryFilter) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
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

	var movements []ledger.Movement
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

// SumByProduct returns the signed sum of all movements for a product.
func (r *MovementRepo) SumByProduct(ctx context.Context, productID int64) (int, error) {
	const q = `SELECT COALESCE(SUM(change_qty), 0) FROM stock_movements WHERE product_id = ?`

	var sum int
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q, productID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
