package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/core/apperror"
	"hussiny/internal/domain/catalog"
)

const customersTable = "customers"

var customerColumns = []string{"id", "name", "phone", "address", "notes", "created_at"}

// Compile-time check that CustomerRepo implements catalog.CustomerRepository.
var _ catalog.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implements catalog.CustomerRepository.
type CustomerRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewCustomerRepo creates a customer repository.
func NewCustomerRepo(txManager *TxManager) *CustomerRepo {
	return &CustomerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create inserts a customer and fills in its id.
func (r *CustomerRepo) Create(ctx context.Context, c *catalog.Customer) error {
	sql, args, err := r.builder.Insert(customersTable).
		Columns("name", "phone", "address", "notes").
		Values(c.Name, c.Phone, c.Address, c.Notes).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("customer id: %w", err)
	}
	return nil
}

// Update rewrites a customer.
func (r *CustomerRepo) Update(ctx context.Context, c *catalog.Customer) error {
	sql, args, err := r.builder.Update(customersTable).
		Set("name", c.Name).
		Set("phone", c.Phone).
		Set("address", c.Address).
		Set("notes", c.Notes).
		Where(squirrel.Eq{"id": c.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("customer", c.ID)
	}
	return nil
}

// GetByID returns a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*catalog.Customer, error) {
	sql, args, err := r.builder.Select(customerColumns...).From(customersTable).
		Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c catalog.Customer
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("customer", id)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// FindByNamePhone returns the customer with the exact name and phone pair.
func (r *CustomerRepo) FindByNamePhone(ctx context.Context, name, phone string) (*catalog.Customer, error) {
	sql, args, err := r.builder.Select(customerColumns...).From(customersTable).
		Where(squirrel.Eq{"name": name, "phone": phone}).
		OrderBy("id").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c catalog.Customer
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("customer", name)
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return &c, nil
}

// List returns customers, optionally filtered by a name or phone substring.
func (r *CustomerRepo) List(ctx context.Context, query string, limit int) ([]catalog.Customer, error) {
	q := r.builder.Select(customerColumns...).From(customersTable)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(squirrel.Or{
			squirrel.Like{"name": like},
			squirrel.Like{"phone": like},
		})
	}

	q = q.OrderBy("name")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var customers []catalog.Customer
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &customers, sql, args...); err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	return customers, nil
}
