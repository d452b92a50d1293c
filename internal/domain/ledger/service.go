package ledger

import (
	"context"
	"fmt"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/tx"
	"hussiny/pkg/logger"
)

// ApplyInput describes one stock movement to record.
type ApplyInput struct {
	ProductID   int64
	Delta       int
	Type        MovementType
	ReferenceID string
	UserID      int64
	Note        string
}

// Service records stock movements and keeps product quantities in sync.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Apply records a movement and adjusts the product quantity atomically.
// Fails with NEGATIVE_STOCK if the resulting quantity would drop below
// zero; the ambient transaction is rolled back in that case.
//
// Callers already inside a transaction (composers) are joined; standalone
// calls get their own transaction.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (*Movement, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	var movement *Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		resulting, err := s.repo.AdjustQuantity(ctx, in.ProductID, in.Delta)
		if err != nil {
			return fmt.Errorf("adjust quantity: %w", err)
		}
		if resulting < 0 {
			return apperror.NewNegativeStock(in.ProductID, resulting)
		}

		m := &Movement{
			ProductID:   in.ProductID,
			ChangeQty:   in.Delta,
			Type:        in.Type,
			ReferenceID: in.ReferenceID,
			UserID:      in.UserID,
			Note:        in.Note,
		}
		if err := s.repo.CreateMovement(ctx, m); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "stock movement applied",
		"product_id", in.ProductID,
		"delta", in.Delta,
		"type", in.Type,
		"reference", in.ReferenceID,
	)

	return movement, nil
}

func (s *Service) validate(in ApplyInput) error {
	if in.ProductID == 0 {
		return apperror.NewValidation("product is required")
	}
	if in.Delta == 0 {
		return apperror.NewValidation("movement delta cannot be zero")
	}
	if !in.Type.Valid() {
		return apperror.NewValidation("unknown movement type").
			WithDetail("type", string(in.Type))
	}
	return nil
}

// History returns movement history for a product, newest first.
func (s *Service) History(ctx context.Context, productID int64, filter HistoryFilter) ([]Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.ListByProduct(ctx, productID, filter)
}

// VerifyInvariant checks that the product quantity equals the sum of its
// movements. Used by tests and the consistency report.
func (s *Service) VerifyInvariant(ctx context.Context, productID int64) (bool, error) {
	qty, err := s.repo.GetQuantity(ctx, productID)
	if err != nil {
		return false, err
	}
	sum, err := s.repo.SumByProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return qty == sum, nil
}
