package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/core/apperror"
	"hussiny/internal/domain/catalog"
)

const (
	categoriesTable = "categories"
	suppliersTable  = "suppliers"
)

// Compile-time interface checks.
var (
	_ catalog.CategoryRepository = (*CategoryRepo)(nil)
	_ catalog.SupplierRepository = (*SupplierRepo)(nil)
)

// CategoryRepo implements catalog.CategoryRepository.
type CategoryRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewCategoryRepo creates a category repository.
func NewCategoryRepo(txManager *TxManager) *CategoryRepo {
	return &CategoryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create inserts a category.
func (r *CategoryRepo) Create(ctx context.Context, c *catalog.Category) error {
	sql, args, err := r.builder.Insert(categoriesTable).
		Columns("name").Values(c.Name).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "category", c.Name)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("category id: %w", err)
	}
	return nil
}

// Update renames a category.
func (r *CategoryRepo) Update(ctx context.Context, c *catalog.Category) error {
	sql, args, err := r.builder.Update(categoriesTable).
		Set("name", c.Name).
		Where(squirrel.Eq{"id": c.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "category", c.Name)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("category", c.ID)
	}
	return nil
}

// Delete removes a category.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.builder.Delete(categoriesTable).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("category", id)
	}
	return nil
}

// GetByID returns a category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*catalog.Category, error) {
	sql, args, err := r.builder.Select("id", "name").From(categoriesTable).
		Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c catalog.Category
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("category", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// List returns all categories by name.
func (r *CategoryRepo) List(ctx context.Context) ([]catalog.Category, error) {
	sql, args, err := r.builder.Select("id", "name").From(categoriesTable).
		OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var categories []catalog.Category
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &categories, sql, args...); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return categories, nil
}

// SupplierRepo implements catalog.SupplierRepository.
type SupplierRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewSupplierRepo creates a supplier repository.
func NewSupplierRepo(txManager *TxManager) *SupplierRepo {
	return &SupplierRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create inserts a supplier.
func (r *SupplierRepo) Create(ctx context.Context, s *catalog.Supplier) error {
	sql, args, err := r.builder.Insert(suppliersTable).
		Columns("name", "phone", "address", "email").
		Values(s.Name, s.Phone, s.Address, s.Email).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("supplier id: %w", err)
	}
	return nil
}

// Update rewrites a supplier.
func (r *SupplierRepo) Update(ctx context.Context, s *catalog.Supplier) error {
	sql, args, err := r.builder.Update(suppliersTable).
		Set("name", s.Name).
		Set("phone", s.Phone).
		Set("address", s.Address).
		Set("email", s.Email).
		Where(squirrel.Eq{"id": s.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("supplier", s.ID)
	}
	return nil
}

// Delete removes a supplier.
func (r *SupplierRepo) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.builder.Delete(suppliersTable).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("supplier", id)
	}
	return nil
}

// GetByID returns a supplier by id.
func (r *SupplierRepo) GetByID(ctx context.Context, id int64) (*catalog.Supplier, error) {
	sql, args, err := r.builder.Select("id", "name", "phone", "address", "email").
		From(suppliersTable).Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s catalog.Supplier
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &s, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", id)
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// List returns all suppliers by name.
func (r *SupplierRepo) List(ctx context.Context) ([]catalog.Supplier, error) {
	sql, args, err := r.builder.Select("id", "name", "phone", "address", "email").
		From(suppliersTable).OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var suppliers []catalog.Supplier
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &suppliers, sql, args...); err != nil {
		return nil, fmt.Errorf("select suppliers: %w", err)
	}
	return suppliers, nil
}
