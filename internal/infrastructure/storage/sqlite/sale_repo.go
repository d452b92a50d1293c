package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
	"hussiny/internal/domain/sales"
)

const (
	salesTable     = "sales"
	saleItemsTable = "sale_items"
	returnsTable   = "returns"
)

var saleColumns = []string{
	"id", "invoice_number", "customer_id", "subtotal",
	"discount_mode", "discount_value", "discount",
	"tax_rate", "tax", "total", "paid", "change_due",
	"payment_method", "user_id", "note", "created_at",
}

// Compile-time check that SaleRepo implements sales.Repository.
var _ sales.Repository = (*SaleRepo)(nil)

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewSaleRepo creates a sale repository.
func NewSaleRepo(txManager *TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// CreateSale inserts the sale header and fills in its id.
func (r *SaleRepo) CreateSale(ctx context.Context, s *sales.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns("invoice_number", "customer_id", "subtotal",
			"discount_mode", "discount_value", "discount",
			"tax_rate", "tax", "total", "paid", "change_due",
			"payment_method", "user_id", "note").
		Values(s.InvoiceNumber, s.CustomerID, s.Subtotal,
			s.DiscountMode, s.DiscountValue, s.Discount,
			s.TaxRate, s.Tax, s.Total, s.Paid, s.Change,
			s.PaymentMethod, s.UserID, s.Note)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "sale", s.InvoiceNumber)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sale id: %w", err)
	}
	return nil
}

// CreateItems batch inserts the invoice lines.
func (r *SaleRepo) CreateItems(ctx context.Context, items []sales.SaleItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.builder.Insert(saleItemsTable).
		Columns("sale_id", "product_id", "name", "quantity", "unit_price", "unit_cost", "line_total")
	for _, it := range items {
		q = q.Values(it.SaleID, it.ProductID, it.Name, it.Quantity, it.UnitPrice, it.UnitCost, it.LineTotal)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

// GetByID returns the sale header by id.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*sales.Sale, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id)
}

// GetByInvoiceNumber returns the sale header by invoice number.
func (r *SaleRepo) GetByInvoiceNumber(ctx context.Context, number string) (*sales.Sale, error) {
	return r.getOne(ctx, squirrel.Eq{"invoice_number": number}, number)
}

func (r *SaleRepo) getOne(ctx context.Context, where any, id any) (*sales.Sale, error) {
	sql, args, err := r.builder.Select(saleColumns...).From(salesTable).
		Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s sales.Sale
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &s, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", id)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}

// ListItems returns the invoice lines for a sale.
func (r *SaleRepo) ListItems(ctx context.Context, saleID int64) ([]sales.SaleItem, error) {
	sql, args, err := r.builder.Select(
		"id", "sale_id", "product_id", "name", "quantity", "unit_price", "unit_cost", "line_total").
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []sales.SaleItem
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

// List returns sale headers matching the filter, newest first.
func (r *SaleRepo) List(ctx context.Context, filter sales.Filter) ([]sales.Sale, error) {
	q := r.builder.Select(saleColumns...).From(salesTable)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.UserID != nil {
		q = q.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.InvoiceNumber != "" {
		q = q.Where(squirrel.Like{"invoice_number": "%" + filter.InvoiceNumber + "%"})
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

	var result []sales.Sale
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &result, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	return result, nil
}

// CreateReturn inserts a return row and fills in its id.
func (r *SaleRepo) CreateReturn(ctx context.Context, ret *sales.Return) error {
	sql, args, err := r.builder.Insert(returnsTable).
		Columns("sale_id", "product_id", "quantity", "amount", "reason", "user_id").
		Values(ret.SaleID, ret.ProductID, ret.Quantity, ret.Amount, ret.Reason, ret.UserID).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert return: %w", err)
	}
	ret.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("return id: %w", err)
	}
	return nil
}

// ListReturnsBySale returns all returns recorded against a sale.
func (r *SaleRepo) ListReturnsBySale(ctx context.Context, saleID int64) ([]sales.Return, error) {
	sql, args, err := r.builder.Select(
		"id", "sale_id", "product_id", "quantity", "amount", "reason", "user_id", "created_at").
		From(returnsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var returns []sales.Return
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &returns, sql, args...); err != nil {
		return nil, fmt.Errorf("select returns: %w", err)
	}
	return returns, nil
}

// ListReturns returns returns within [from, to), newest first.
func (r *SaleRepo) ListReturns(ctx context.Context, from, to time.Time, limit int) ([]sales.Return, error) {
	q := r.builder.Select(
		"id", "sale_id", "product_id", "quantity", "amount", "reason", "user_id", "created_at").
		From(returnsTable).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var returns []sales.Return
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &returns, sql, args...); err != nil {
		return nil, fmt.Errorf("select returns: %w", err)
	}
	return returns, nil
}

// TotalForRange sums sale totals within [from, to).
func (r *SaleRepo) TotalForRange(ctx context.Context, from, to time.Time) (types.Money, error) {
	const q = `SELECT COALESCE(SUM(total), 0) FROM sales WHERE created_at >= ? AND created_at < ?`

	var total float64
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q, from, to).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum sales: %w", err)
	}
	return types.RoundMoney(types.NewMoney(total)), nil
}

// CountForRange counts sales within [from, to).
func (r *SaleRepo) CountForRange(ctx context.Context, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM sales WHERE created_at >= ? AND created_at < ?`

	var count int
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return count, nil
}
