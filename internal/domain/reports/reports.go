// Package reports provides sales, profit and inventory reporting.
package reports

import (
	"context"
	"time"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
)

// SalesSummary aggregates sales within a period.
type SalesSummary struct {
	From        time.Time   `json:"from"`
	To          time.Time   `json:"to"`
	SalesCount  int         `json:"salesCount"`
	Revenue     types.Money `json:"revenue"`
	Discount    types.Money `json:"discount"`
	Tax         types.Money `json:"tax"`
	CostOfGoods types.Money `json:"costOfGoods"`
	Returns     types.Money `json:"returns"`
	Profit      types.Money `json:"profit"`
}

// ProductSales is one row of the top-products report.
type ProductSales struct {
	ProductID int64       `db:"product_id" json:"productId"`
	Name      string      `db:"name" json:"name"`
	Quantity  int         `db:"quantity" json:"quantity"`
	Revenue   types.Money `db:"revenue" json:"revenue"`
}

// DailyPoint is one day of the sales time series.
type DailyPoint struct {
	Day     string      `db:"day" json:"day"` // yyyy-mm-dd
	Count   int         `db:"count" json:"count"`
	Revenue types.Money `db:"revenue" json:"revenue"`
}

// InventoryValuation sums stock on hand at cost and at sale price.
type InventoryValuation struct {
	ProductCount int         `db:"product_count" json:"productCount"`
	UnitsOnHand  int         `db:"units_on_hand" json:"unitsOnHand"`
	CostValue    types.Money `db:"cost_value" json:"costValue"`
	SaleValue    types.Money `db:"sale_value" json:"saleValue"`
}

// Dashboard carries the landing-page counters.
type Dashboard struct {
	TodaySales      types.Money `json:"todaySales"`
	TodayCount      int         `json:"todayCount"`
	PendingRepairs  int         `json:"pendingRepairs"`
	LowStockCount   int         `json:"lowStockCount"`
	CustomerCount   int         `json:"customerCount"`
	TodayCommission types.Money `json:"todayCommission"`
}

// Repository defines the aggregate queries behind the reports.
type Repository interface {
	SalesAggregates(ctx context.Context, from, to time.Time) (count int, revenue, discount, tax, cost types.Money, err error)
	ReturnsTotal(ctx context.Context, from, to time.Time) (types.Money, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
	DailySeries(ctx context.Context, from, to time.Time) ([]DailyPoint, error)
	InventoryValuation(ctx context.Context) (*InventoryValuation, error)
	LowStockCount(ctx context.Context) (int, error)
	CustomerCount(ctx context.Context) (int, error)
	PendingRepairCount(ctx context.Context) (int, error)
	CommissionTotal(ctx context.Context, from, to time.Time) (types.Money, error)
}

// Service computes reports.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new reports service. A nil clock defaults to time.Now.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// SalesReport aggregates sales for [from, to). Profit is revenue minus the
// cost of goods sold at the captured unit cost, deliberately also minus
// refunded returns: money paid back in the period is not profit, even
// though the sale that produced it still counts toward revenue.
func (s *Service) SalesReport(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	if !to.After(from) {
		return nil, apperror.NewValidation("period end must be after start")
	}

	count, revenue, discount, tax, cost, err := s.repo.SalesAggregates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	returns, err := s.repo.ReturnsTotal(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &SalesSummary{
		From:        from,
		To:          to,
		SalesCount:  count,
		Revenue:     types.RoundMoney(revenue),
		Discount:    types.RoundMoney(discount),
		Tax:         types.RoundMoney(tax),
		CostOfGoods: types.RoundMoney(cost),
		Returns:     types.RoundMoney(returns),
		Profit:      types.RoundMoney(revenue.Sub(cost).Sub(returns)),
	}, nil
}

// TodayReport aggregates today's sales.
func (s *Service) TodayReport(ctx context.Context) (*SalesSummary, error) {
	from, to := s.today()
	return s.SalesReport(ctx, from, to)
}

// TopProducts returns the best sellers within a period.
func (s *Service) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopProducts(ctx, from, to, limit)
}

// DailySeries returns the per-day sales series within a period.
func (s *Service) DailySeries(ctx context.Context, from, to time.Time) ([]DailyPoint, error) {
	if !to.After(from) {
		return nil, apperror.NewValidation("period end must be after start")
	}
	return s.repo.DailySeries(ctx, from, to)
}

// Valuation returns the current stock valuation for active products.
func (s *Service) Valuation(ctx context.Context) (*InventoryValuation, error) {
	return s.repo.InventoryValuation(ctx)
}

// Dashboard collects the landing-page counters.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	from, to := s.today()

	count, revenue, _, _, _, err := s.repo.SalesAggregates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.PendingRepairCount(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.LowStockCount(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.CustomerCount(ctx)
	if err != nil {
		return nil, err
	}
	commission, err := s.repo.CommissionTotal(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TodaySales:      types.RoundMoney(revenue),
		TodayCount:      count,
		PendingRepairs:  pending,
		LowStockCount:   lowStock,
		CustomerCount:   customers,
		TodayCommission: types.RoundMoney(commission),
	}, nil
}

func (s *Service) today() (time.Time, time.Time) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, 1)
}
