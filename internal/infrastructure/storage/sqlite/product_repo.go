package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/core/apperror"
	"hussiny/internal/domain/catalog"
)

const productsTable = "products"

var productColumns = []string{
	"id", "sku", "name", "description", "category_id", "supplier_id",
	"cost_price", "sale_price", "quantity", "min_quantity",
	"barcode", "active", "created_at",
}

// Compile-time check that ProductRepo implements catalog.ProductRepository.
var _ catalog.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create inserts a product and fills in its id.
func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	q := r.builder.Insert(productsTable).
		Columns("sku", "name", "description", "category_id", "supplier_id",
			"cost_price", "sale_price", "quantity", "min_quantity", "barcode", "active").
		Values(p.SKU, p.Name, p.Description, p.CategoryID, p.SupplierID,
			p.CostPrice, p.SalePrice, p.Quantity, p.MinQuantity, p.Barcode, p.Active)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "product", p.SKU)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	return nil
}

// Update rewrites product master data. Quantity is owned by the ledger and
// never written here.
func (r *ProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	q := r.builder.Update(productsTable).
		Set("sku", p.SKU).
		Set("name", p.Name).
		Set("description", p.Description).
		Set("category_id", p.CategoryID).
		Set("supplier_id", p.SupplierID).
		Set("cost_price", p.CostPrice).
		Set("sale_price", p.SalePrice).
		Set("min_quantity", p.MinQuantity).
		Set("barcode", p.Barcode).
		Set("active", p.Active).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "product", p.SKU)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

// GetByID returns a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "product", id)
}

// GetBySKU returns a product by SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"sku": sku}, "product", sku)
}

// GetByBarcode returns an active product by exact barcode.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*catalog.Product, error) {
	return r.getOne(ctx, squirrel.And{
		squirrel.Eq{"barcode": barcode},
		squirrel.Eq{"active": true},
	}, "product", barcode)
}

func (r *ProductRepo) getOne(ctx context.Context, where any, entity string, id any) (*catalog.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable).Where(where).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound(entity, id)
		}
		return nil, fmt.Errorf("get %s: %w", entity, err)
	}
	return &p, nil
}

// List returns products matching the filter, by name.
func (r *ProductRepo) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable)

	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}
	if filter.LowStockOnly {
		q = q.Where("quantity <= min_quantity")
	}
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.Like{"name": like},
			squirrel.Like{"sku": like},
			squirrel.Like{"barcode": like},
		})
	}

	q = q.OrderBy("name")
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

	var products []catalog.Product
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}

// SetActive flips the soft-delete flag.
func (r *ProductRepo) SetActive(ctx context.Context, id int64, active bool) error {
	q := r.builder.Update(productsTable).
		Set("active", active).
		Where(squirrel.Eq{"id": id})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("product", id)
	}
	return nil
}
