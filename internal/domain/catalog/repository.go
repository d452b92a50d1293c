package catalog

import (
	"context"
)

// ProductRepository defines storage operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	ActiveOnly   bool
	LowStockOnly bool
	CategoryID   *int64
	Query        string // matches name, sku or barcode
	Limit        int
	Offset       int
}

// CategoryRepository defines storage operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context) ([]Category, error)
}

// SupplierRepository defines storage operations for suppliers.
type SupplierRepository interface {
	Create(ctx context.Context, s *Supplier) error
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Supplier, error)
	List(ctx context.Context) ([]Supplier, error)
}

// CustomerRepository defines storage operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id int64) (*Customer, error)
	FindByNamePhone(ctx context.Context, name, phone string) (*Customer, error)
	List(ctx context.Context, query string, limit int) ([]Customer, error)
}
