package ledger

import (
	"context"
	"time"
)

// Repository defines storage operations for the stock ledger.
type Repository interface {
	// CreateMovement appends one movement row.
	CreateMovement(ctx context.Context, m *Movement) error

	// AdjustQuantity applies the signed delta to the product row and
	// returns the resulting quantity. Must run in the ambient transaction.
	AdjustQuantity(ctx context.Context, productID int64, delta int) (int, error)

	// GetQuantity returns the product's current on-hand quantity.
	GetQuantity(ctx context.Context, productID int64) (int, error)

	// ListByProduct returns movement history for a product, newest first.
	ListByProduct(ctx context.Context, productID int64, filter HistoryFilter) ([]Movement, error)

	// SumByProduct returns the sum of all movement deltas for a product.
	SumByProduct(ctx context.Context, productID int64) (int, error)
}

// HistoryFilter narrows movement history queries.
type HistoryFilter struct {
	Type     *MovementType
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
