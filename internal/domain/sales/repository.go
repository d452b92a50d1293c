package sales

import (
	"context"
	"time"

	"hussiny/internal/core/types"
)

// Repository defines storage operations for sales and returns.
type Repository interface {
	CreateSale(ctx context.Context, s *Sale) error
	CreateItems(ctx context.Context, items []SaleItem) error
	GetByID(ctx context.Context, id int64) (*Sale, error)
	GetByInvoiceNumber(ctx context.Context, number string) (*Sale, error)
	ListItems(ctx context.Context, saleID int64) ([]SaleItem, error)
	List(ctx context.Context, filter Filter) ([]Sale, error)

	CreateReturn(ctx context.Context, r *Return) error
	ListReturnsBySale(ctx context.Context, saleID int64) ([]Return, error)
	ListReturns(ctx context.Context, from, to time.Time, limit int) ([]Return, error)

	// TotalForRange sums sale totals within [from, to).
	TotalForRange(ctx context.Context, from, to time.Time) (types.Money, error)
	CountForRange(ctx context.Context, from, to time.Time) (int, error)
}

// Filter narrows sale listings.
type Filter struct {
	CustomerID    *int64
	UserID        *int64
	InvoiceNumber string
	FromDate      *time.Time
	ToDate        *time.Time
	Limit         int
	Offset        int
}
