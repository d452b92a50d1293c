package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/core/types"
	"hussiny/internal/domain/repairs"
	"hussiny/internal/domain/reports"
)

// Compile-time check that ReportRepo implements reports.Repository.
var _ reports.Repository = (*ReportRepo)(nil)

// ReportRepo implements reports.Repository with raw aggregate queries.
// Reports read committed history, so everything here is plain SQL over the
// same tables the domain repositories write.
type ReportRepo struct {
	txManager *TxManager
}

// NewReportRepo creates a report repository.
func NewReportRepo(txManager *TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// SalesAggregates returns count and money sums for sales within [from, to).
// Cost of goods comes from the unit cost captured on each line.
func (r *ReportRepo) SalesAggregates(ctx context.Context, from, to time.Time) (int, types.Money, types.Money, types.Money, types.Money, error) {
	const q = `
		SELECT
			COUNT(*),
			COALESCE(SUM(total), 0),
			COALESCE(SUM(discount), 0),
			COALESCE(SUM(tax), 0),
			COALESCE((
				SELECT SUM(i.unit_cost * i.quantity)
				FROM sale_items i
				JOIN sales s2 ON s2.id = i.sale_id
				WHERE s2.created_at >= ? AND s2.created_at < ?
			), 0)
		FROM sales
		WHERE created_at >= ? AND created_at < ?`

	var (
		count                        int
		revenue, discount, tax, cost float64
	)
	err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q, from, to, from, to).
		Scan(&count, &revenue, &discount, &tax, &cost)
	if err != nil {
		return 0, types.Zero(), types.Zero(), types.Zero(), types.Zero(),
			fmt.Errorf("sales aggregates: %w", err)
	}

	return count,
		types.NewMoney(revenue), types.NewMoney(discount),
		types.NewMoney(tax), types.NewMoney(cost), nil
}

// ReturnsTotal sums refunded amounts within [from, to).
func (r *ReportRepo) ReturnsTotal(ctx context.Context, from, to time.Time) (types.Money, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM returns WHERE created_at >= ? AND created_at < ?`

	var total float64
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q, from, to).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("returns total: %w", err)
	}
	return types.NewMoney(total), nil
}

// TopProducts returns the best sellers by quantity within [from, to).
func (r *ReportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]reports.ProductSales, error) {
	const q = `
		SELECT
			i.product_id AS product_id,
			i.name AS name,
			SUM(i.quantity) AS quantity,
			SUM(i.line_total) AS revenue
		FROM sale_items i
		JOIN sales s ON s.id = i.sale_id
		WHERE s.created_at >= ? AND s.created_at < ?
		GROUP BY i.product_id, i.name
		ORDER BY quantity DESC, revenue DESC
		LIMIT ?`

	var rows []reports.ProductSales
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, q, from, to, limit); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return rows, nil
}

// DailySeries returns per-day sales totals within [from, to). Days with no
// sales are absent from the result.
func (r *ReportRepo) DailySeries(ctx context.Context, from, to time.Time) ([]reports.DailyPoint, error) {
	const q = `
		SELECT
			strftime('%Y-%m-%d', created_at) AS day,
			COUNT(*) AS count,
			COALESCE(SUM(total), 0) AS revenue
		FROM sales
		WHERE created_at >= ? AND created_at < ?
		GROUP BY day
		ORDER BY day`

	var points []reports.DailyPoint
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &points, q, from, to); err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}
	return points, nil
}

// InventoryValuation sums stock on hand for active products.
func (r *ReportRepo) InventoryValuation(ctx context.Context) (*reports.InventoryValuation, error) {
	const q = `
		SELECT
			COUNT(*) AS product_count,
			COALESCE(SUM(quantity), 0) AS units_on_hand,
			COALESCE(SUM(quantity * cost_price), 0) AS cost_value,
			COALESCE(SUM(quantity * sale_price), 0) AS sale_value
		FROM products
		WHERE active = 1`

	var v reports.InventoryValuation
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &v, q); err != nil {
		return nil, fmt.Errorf("inventory valuation: %w", err)
	}
	return &v, nil
}

// LowStockCount counts active products at or below their threshold.
func (r *ReportRepo) LowStockCount(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM products WHERE active = 1 AND quantity <= min_quantity`

	var count int
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q).Scan(&count); err != nil {
		return 0, fmt.Errorf("low stock count: %w", err)
	}
	return count, nil
}

// CustomerCount counts customers.
func (r *ReportRepo) CustomerCount(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM customers`

	var count int
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q).Scan(&count); err != nil {
		return 0, fmt.Errorf("customer count: %w", err)
	}
	return count, nil
}

// PendingRepairCount counts open repair tickets.
func (r *ReportRepo) PendingRepairCount(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM repairs WHERE status IN (?, ?, ?)`

	var count int
	err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q,
		repairs.StatusInspection, repairs.StatusInProgress, repairs.StatusWaitingParts).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pending repair count: %w", err)
	}
	return count, nil
}

// CommissionTotal sums transfer commission within [from, to).
func (r *ReportRepo) CommissionTotal(ctx context.Context, from, to time.Time) (types.Money, error) {
	const q = `SELECT COALESCE(SUM(commission), 0) FROM transfers WHERE created_at >= ? AND created_at < ?`

	var total float64
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q, from, to).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("commission total: %w", err)
	}
	return types.NewMoney(total), nil
}
