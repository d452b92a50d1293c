package repairs

import (
	"context"
	"strings"
	"time"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/appctx"
	"hussiny/internal/core/sequence"
	"hussiny/internal/core/tx"
	"hussiny/internal/core/types"
	"hussiny/internal/domain/audit"
	"hussiny/internal/domain/catalog"
	"hussiny/pkg/logger"
)

const numberRetries = 3

// UpdateInput carries the editable fields of a ticket. Nil pointers leave
// the current value untouched.
type UpdateInput struct {
	Diagnosis   *string      `json:"diagnosis,omitempty"`
	DeviceModel *string      `json:"deviceModel,omitempty"`
	Status      *Status      `json:"status,omitempty"`
	PartsCost   *types.Money `json:"partsCost,omitempty"`
	LaborCost   *types.Money `json:"laborCost,omitempty"`
	Deposit     *types.Money `json:"deposit,omitempty"`
}

// Service manages repair tickets.
type Service struct {
	repo      Repository
	customers catalog.CustomerRepository
	numbers   *sequence.Generator
	txManager tx.Manager
	audit     *audit.Recorder
	now       func() time.Time
}

// NewService creates a new repairs service. A nil clock defaults to time.Now.
func NewService(
	repo Repository,
	customers catalog.CustomerRepository,
	numbers *sequence.Generator,
	txManager tx.Manager,
	auditRec *audit.Recorder,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      repo,
		customers: customers,
		numbers:   numbers,
		txManager: txManager,
		audit:     auditRec,
		now:       now,
	}
}

// Create opens a ticket: allocates a ticket number, links or creates the
// customer and stores the ticket in the default inspection status.
func (s *Service) Create(ctx context.Context, t *Ticket) error {
	if err := t.Validate(); err != nil {
		return err
	}

	t.Status = StatusInspection
	t.TotalCost = types.RoundMoney(t.PartsCost.Add(t.LaborCost))
	t.UserID = appctx.GetUserID(ctx)
	t.EntryDate = s.now()
	t.ExitDate = nil

	customerID, err := s.resolveCustomer(ctx, t.CustomerName, t.Phone)
	if err != nil {
		return err
	}
	t.CustomerID = customerID

	for attempt := 1; ; attempt++ {
		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			number, err := s.numbers.NextTicketNumber(ctx)
			if err != nil {
				return err
			}
			t.TicketNumber = number
			return s.repo.Create(ctx, t)
		})
		if err == nil {
			break
		}
		if !apperror.IsCode(err, apperror.CodeDuplicate) {
			return err
		}
		if attempt >= numberRetries {
			return apperror.NewSequenceConflict(sequence.TicketConfig.Prefix)
		}
		logger.Warn(ctx, "ticket number collision, retrying", "attempt", attempt)
	}

	s.audit.Record(ctx, "create", "repairs", t.TicketNumber, t.DeviceType)
	logger.Info(ctx, "repair ticket created",
		"ticket", t.TicketNumber,
		"device", t.DeviceType,
		"customer", t.CustomerName,
	)
	return nil
}

// Update applies the editable fields. Total cost is recomputed from parts
// and labor on every edit. A transition into a terminal status stamps the
// exit date exactly once; later transitions never overwrite it.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Ticket, error) {
	var updated *Ticket
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Diagnosis != nil {
			t.Diagnosis = *in.Diagnosis
		}
		if in.DeviceModel != nil {
			t.DeviceModel = *in.DeviceModel
		}
		if in.PartsCost != nil {
			if in.PartsCost.IsNegative() {
				return apperror.NewValidation("parts cost cannot be negative")
			}
			t.PartsCost = *in.PartsCost
		}
		if in.LaborCost != nil {
			if in.LaborCost.IsNegative() {
				return apperror.NewValidation("labor cost cannot be negative")
			}
			t.LaborCost = *in.LaborCost
		}
		if in.Deposit != nil {
			if in.Deposit.IsNegative() {
				return apperror.NewValidation("deposit cannot be negative")
			}
			t.Deposit = *in.Deposit
		}
		t.TotalCost = types.RoundMoney(t.PartsCost.Add(t.LaborCost))

		if in.Status != nil && *in.Status != t.Status {
			if !in.Status.Valid() {
				return apperror.NewBusinessRule(apperror.CodeInvalidTransition, "unknown status").
					WithDetail("status", string(*in.Status))
			}
			if t.Status == StatusDelivered {
				return apperror.NewBusinessRule(apperror.CodeInvalidTransition,
					"delivered tickets cannot change status")
			}
			t.Status = *in.Status
			if t.Status.Terminal() && t.ExitDate == nil {
				exit := s.now()
				t.ExitDate = &exit
			}
		}

		if err := s.repo.Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "update", "repairs", updated.TicketNumber, string(updated.Status))
	return updated, nil
}

func (s *Service) resolveCustomer(ctx context.Context, name, phone string) (*int64, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	existing, err := s.customers.FindByNamePhone(ctx, name, phone)
	if err == nil && existing != nil {
		return &existing.ID, nil
	}
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	c := &catalog.Customer{Name: name, Phone: phone}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return &c.ID, nil
}

// Get returns a ticket by id.
func (s *Service) Get(ctx context.Context, id int64) (*Ticket, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByNumber returns a ticket by its ticket number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Ticket, error) {
	return s.repo.GetByNumber(ctx, number)
}

// List returns tickets matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Ticket, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.NewValidation("unknown status").
			WithDetail("status", string(filter.Status))
	}
	return s.repo.List(ctx, filter)
}

// PendingCount returns the number of tickets still under inspection or
// repair, used by the dashboard.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	total := 0
	for _, st := range []Status{StatusInspection, StatusInProgress, StatusWaitingParts} {
		n, err := s.repo.CountByStatus(ctx, st)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
