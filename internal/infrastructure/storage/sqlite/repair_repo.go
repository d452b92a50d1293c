package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/core/apperror"
	"hussiny/internal/domain/repairs"
)

const repairsTable = "repairs"

var repairColumns = []string{
	"id", "ticket_number", "customer_id", "customer_name", "phone",
	"device_type", "device_model", "serial_number", "problem", "diagnosis",
	"status", "parts_cost", "labor_cost", "total_cost", "deposit",
	"user_id", "entry_date", "exit_date", "created_at",
}

// Compile-time check that RepairRepo implements repairs.Repository.
var _ repairs.Repository = (*RepairRepo)(nil)

// RepairRepo implements repairs.Repository.
type RepairRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewRepairRepo creates a repair ticket repository.
func NewRepairRepo(txManager *TxManager) *RepairRepo {
	return &RepairRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create inserts a ticket and fills in its id.
func (r *RepairRepo) Create(ctx context.Context, t *repairs.Ticket) error {
	q := r.builder.Insert(repairsTable).
		Columns("ticket_number", "customer_id", "customer_name", "phone",
			"device_type", "device_model", "serial_number", "problem", "diagnosis",
			"status", "parts_cost", "labor_cost", "total_cost", "deposit",
			"user_id", "entry_date", "exit_date").
		Values(t.TicketNumber, t.CustomerID, t.CustomerName, t.Phone,
			t.DeviceType, t.DeviceModel, t.SerialNumber, t.Problem, t.Diagnosis,
			t.Status, t.PartsCost, t.LaborCost, t.TotalCost, t.Deposit,
			t.UserID, t.EntryDate, t.ExitDate)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "repair", t.TicketNumber)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("repair id: %w", err)
	}
	return nil
}

// Update rewrites the editable ticket fields.
func (r *RepairRepo) Update(ctx context.Context, t *repairs.Ticket) error {
	q := r.builder.Update(repairsTable).
		Set("customer_name", t.CustomerName).
		Set("phone", t.Phone).
		Set("device_model", t.DeviceModel).
		Set("serial_number", t.SerialNumber).
		Set("diagnosis", t.Diagnosis).
		Set("status", t.Status).
		Set("parts_cost", t.PartsCost).
		Set("labor_cost", t.LaborCost).
		Set("total_cost", t.TotalCost).
		Set("deposit", t.Deposit).
		Set("exit_date", t.ExitDate).
		Where(squirrel.Eq{"id": t.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update repair: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("repair", t.ID)
	}
	return nil
}

// GetByID returns a ticket by id.
func (r *RepairRepo) GetByID(ctx context.Context, id int64) (*repairs.Ticket, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id)
}

// GetByNumber returns a ticket by its ticket number.
func (r *RepairRepo) GetByNumber(ctx context.Context, number string) (*repairs.Ticket, error) {
	return r.getOne(ctx, squirrel.Eq{"ticket_number": number}, number)
}

func (r *RepairRepo) getOne(ctx context.Context, where any, id any) (*repairs.Ticket, error) {
	sql, args, err := r.builder.Select(repairColumns...).From(repairsTable).
		Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t repairs.Ticket
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &t, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("repair", id)
		}
		return nil, fmt.Errorf("get repair: %w", err)
	}
	return &t, nil
}

// List returns tickets matching the filter, newest first.
func (r *RepairRepo) List(ctx context.Context, filter repairs.Filter) ([]repairs.Ticket, error) {
	q := r.builder.Select(repairColumns...).From(repairsTable)

	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.Like{"ticket_number": like},
			squirrel.Like{"customer_name": like},
			squirrel.Like{"phone": like},
			squirrel.Like{"device_type": like},
			squirrel.Like{"device_model": like},
		})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"entry_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"entry_date": *filter.ToDate})
	}

	q = q.OrderBy("entry_date DESC", "id DESC")
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

	var tickets []repairs.Ticket
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &tickets, sql, args...); err != nil {
		return nil, fmt.Errorf("select repairs: %w", err)
	}
	return tickets, nil
}

// CountByStatus counts tickets in one status.
func (r *RepairRepo) CountByStatus(ctx context.Context, status repairs.Status) (int, error) {
	const q = `SELECT COUNT(*) FROM repairs WHERE status = ?`

	var count int
	if err := r.txManager.GetQuerier(ctx).QueryRowContext(ctx, q, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("count repairs: %w", err)
	}
	return count, nil
}
