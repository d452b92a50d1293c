package catalog

import (
	"context"
	"fmt"
	"strconv"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/appctx"
	"hussiny/internal/core/tx"
	"hussiny/internal/domain/audit"
	"hussiny/internal/domain/ledger"
	"hussiny/pkg/logger"
)

// Service provides catalog management operations.
type Service struct {
	products   ProductRepository
	categories CategoryRepository
	suppliers  SupplierRepository
	customers  CustomerRepository
	ledger     *ledger.Service
	txManager  tx.Manager
	audit      *audit.Recorder
}

// NewService creates a new catalog service.
func NewService(
	products ProductRepository,
	categories CategoryRepository,
	suppliers SupplierRepository,
	customers CustomerRepository,
	ledgerSvc *ledger.Service,
	txManager tx.Manager,
	auditRec *audit.Recorder,
) *Service {
	return &Service{
		products:   products,
		categories: categories,
		suppliers:  suppliers,
		customers:  customers,
		ledger:     ledgerSvc,
		txManager:  txManager,
		audit:      auditRec,
	}
}

// --- Products ---

// CreateProduct creates a product. A positive initial quantity is recorded
// through the stock ledger as an "initial" movement so the ledger invariant
// holds from the first row.
func (s *Service) CreateProduct(ctx context.Context, p *Product, initialQty int) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if initialQty < 0 {
		return apperror.NewValidation("initial quantity cannot be negative")
	}

	if existing, err := s.products.GetBySKU(ctx, p.SKU); err == nil && existing != nil {
		return apperror.NewDuplicate("product", "sku", p.SKU)
	} else if err != nil && !apperror.IsNotFound(err) {
		return err
	}

	p.Active = true
	p.Quantity = 0

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.products.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if initialQty > 0 {
			_, err := s.ledger.Apply(ctx, ledger.ApplyInput{
				ProductID: p.ID,
				Delta:     initialQty,
				Type:      ledger.MovementInitial,
				UserID:    appctx.GetUserID(ctx),
				Note:      "رصيد ابتدائي",
			})
			if err != nil {
				return err
			}
			p.Quantity = initialQty
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, "create", "products", strconv.FormatInt(p.ID, 10), p.Name)
	logger.Info(ctx, "product created", "id", p.ID, "sku", p.SKU)
	return nil
}

// UpdateProduct updates product master data. Quantity is ignored here;
// use AdjustStock for quantity changes.
func (s *Service) UpdateProduct(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	current, err := s.products.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}

	if p.SKU != current.SKU {
		if existing, err := s.products.GetBySKU(ctx, p.SKU); err == nil && existing != nil && existing.ID != p.ID {
			return apperror.NewDuplicate("product", "sku", p.SKU)
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}
	}

	// Quantity only moves through the ledger.
	p.Quantity = current.Quantity
	p.CreatedAt = current.CreatedAt

	if err := s.products.Update(ctx, p); err != nil {
		return err
	}

	s.audit.Record(ctx, "update", "products", strconv.FormatInt(p.ID, 10), p.Name)
	return nil
}

// DeactivateProduct soft-deletes a product. Historical sales keep their
// references; the row is never hard-deleted.
func (s *Service) DeactivateProduct(ctx context.Context, id int64) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.products.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.audit.Record(ctx, "deactivate", "products", strconv.FormatInt(id, 10), p.Name)
	logger.Info(ctx, "product deactivated", "id", id, "sku", p.SKU)
	return nil
}

// AdjustStock records a manual stock adjustment through the ledger.
func (s *Service) AdjustStock(ctx context.Context, productID int64, delta int, note string) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}

	_, err := s.ledger.Apply(ctx, ledger.ApplyInput{
		ProductID: productID,
		Delta:     delta,
		Type:      ledger.MovementAdjustment,
		UserID:    appctx.GetUserID(ctx),
		Note:      note,
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, "adjust_stock", "products", strconv.FormatInt(productID, 10),
		map[string]any{"delta": delta, "note": note})
	return nil
}

// GetProduct returns a product by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.products.GetByID(ctx, id)
}

// GetProductBySKU returns an active product by SKU.
func (s *Service) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.products.GetBySKU(ctx, sku)
}

// GetProductByBarcode returns an active product by exact barcode.
func (s *Service) GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	if barcode == "" {
		return nil, apperror.NewValidation("barcode is required")
	}
	return s.products.GetByBarcode(ctx, barcode)
}

// ListProducts returns products matching the filter.
func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 200
	}
	return s.products.List(ctx, filter)
}

// LowStockProducts returns active products at or below their threshold.
func (s *Service) LowStockProducts(ctx context.Context) ([]Product, error) {
	return s.products.List(ctx, ProductFilter{ActiveOnly: true, LowStockOnly: true, Limit: 200})
}

// --- Categories ---

// CreateCategory creates a category.
func (s *Service) CreateCategory(ctx context.Context, c *Category) error {
	if c.Name == "" {
		return apperror.NewValidation("category name is required")
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return err
	}
	s.audit.Record(ctx, "create", "categories", strconv.FormatInt(c.ID, 10), c.Name)
	return nil
}

// UpdateCategory renames a category.
func (s *Service) UpdateCategory(ctx context.Context, c *Category) error {
	if c.Name == "" {
		return apperror.NewValidation("category name is required")
	}
	return s.categories.Update(ctx, c)
}

// DeleteCategory removes an empty category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	products, err := s.products.List(ctx, ProductFilter{CategoryID: &id, Limit: 1})
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return apperror.NewConflict("category still has products")
	}
	return s.categories.Delete(ctx, id)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.categories.List(ctx)
}

// --- Suppliers ---

// CreateSupplier creates a supplier.
func (s *Service) CreateSupplier(ctx context.Context, sup *Supplier) error {
	if sup.Name == "" {
		return apperror.NewValidation("supplier name is required")
	}
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return err
	}
	s.audit.Record(ctx, "create", "suppliers", strconv.FormatInt(sup.ID, 10), sup.Name)
	return nil
}

// UpdateSupplier updates a supplier.
func (s *Service) UpdateSupplier(ctx context.Context, sup *Supplier) error {
	if sup.Name == "" {
		return apperror.NewValidation("supplier name is required")
	}
	return s.suppliers.Update(ctx, sup)
}

// DeleteSupplier removes a supplier.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	return s.suppliers.Delete(ctx, id)
}

// ListSuppliers returns all suppliers.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.suppliers.List(ctx)
}

// --- Customers ---

// CreateCustomer creates a customer.
func (s *Service) CreateCustomer(ctx context.Context, c *Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return err
	}
	s.audit.Record(ctx, "create", "customers", strconv.FormatInt(c.ID, 10), c.Name)
	return nil
}

// UpdateCustomer updates a customer.
func (s *Service) UpdateCustomer(ctx context.Context, c *Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.customers.Update(ctx, c)
}

// GetCustomer returns a customer by id.
func (s *Service) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	return s.customers.GetByID(ctx, id)
}

// ListCustomers returns customers, optionally filtered by a name/phone query.
func (s *Service) ListCustomers(ctx context.Context, query string, limit int) ([]Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.customers.List(ctx, query, limit)
}
