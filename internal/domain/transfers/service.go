package transfers

import (
	"context"
	"time"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/appctx"
	"hussiny/internal/core/sequence"
	"hussiny/internal/core/tx"
	"hussiny/internal/core/types"
	"hussiny/internal/domain/audit"
	"hussiny/pkg/logger"
)

const numberRetries = 3

// Repository defines storage operations for transfers.
type Repository interface {
	Create(ctx context.Context, t *Transfer) error
	Update(ctx context.Context, t *Transfer) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Transfer, error)
	GetByReference(ctx context.Context, ref string) (*Transfer, error)
	List(ctx context.Context, filter Filter) ([]Transfer, error)
	SumCommission(ctx context.Context, from, to time.Time) (types.Money, error)
}

// Filter narrows transfer listings.
type Filter struct {
	Channel   Channel
	Direction Direction
	Query     string // matches reference, customer name, phone or wallet
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}

// Service records balance transfers.
type Service struct {
	repo      Repository
	numbers   *sequence.Generator
	txManager tx.Manager
	audit     *audit.Recorder
}

// NewService creates a new transfers service.
func NewService(repo Repository, numbers *sequence.Generator, txManager tx.Manager, auditRec *audit.Recorder) *Service {
	return &Service{repo: repo, numbers: numbers, txManager: txManager, audit: auditRec}
}

// Create records a transfer under a freshly allocated reference.
func (s *Service) Create(ctx context.Context, t *Transfer) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.UserID = appctx.GetUserID(ctx)

	for attempt := 1; ; attempt++ {
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			ref, err := s.numbers.NextTransferRef(ctx)
			if err != nil {
				return err
			}
			t.Reference = ref
			return s.repo.Create(ctx, t)
		})
		if err == nil {
			break
		}
		if !apperror.IsCode(err, apperror.CodeDuplicate) {
			return err
		}
		if attempt >= numberRetries {
			return apperror.NewSequenceConflict(sequence.TransferConfig.Prefix)
		}
		logger.Warn(ctx, "transfer reference collision, retrying", "attempt", attempt)
	}

	s.audit.Record(ctx, "create", "transfers", t.Reference, map[string]any{
		"channel":   t.Channel,
		"direction": t.Direction,
		"amount":    t.Amount,
	})
	logger.Info(ctx, "transfer recorded",
		"reference", t.Reference,
		"channel", t.Channel,
		"amount", t.Amount,
	)
	return nil
}

// Update rewrites an existing transfer. The reference and creation stamp
// are kept from the stored record.
func (s *Service) Update(ctx context.Context, t *Transfer) error {
	if err := t.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Reference = existing.Reference
	t.UserID = existing.UserID
	t.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}

	s.audit.Record(ctx, "update", "transfers", t.Reference, map[string]any{
		"channel": t.Channel,
		"amount":  t.Amount,
	})
	return nil
}

// Delete removes a transfer record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, "delete", "transfers", existing.Reference, nil)
	logger.Info(ctx, "transfer deleted", "reference", existing.Reference)
	return nil
}

// Get returns a transfer by id.
func (s *Service) Get(ctx context.Context, id int64) (*Transfer, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByReference returns a transfer by its reference.
func (s *Service) GetByReference(ctx context.Context, ref string) (*Transfer, error) {
	return s.repo.GetByReference(ctx, ref)
}

// List returns transfers matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Transfer, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Channel != "" && !filter.Channel.Valid() {
		return nil, apperror.NewValidation("unknown transfer channel").
			WithDetail("channel", string(filter.Channel))
	}
	return s.repo.List(ctx, filter)
}

// CommissionForRange sums commission earned within [from, to).
func (s *Service) CommissionForRange(ctx context.Context, from, to time.Time) (types.Money, error) {
	return s.repo.SumCommission(ctx, from, to)
}
