// Package catalog provides the reference entities of the shop: products,
// categories, suppliers and customers.
package catalog

import (
	"time"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
)

// Product is an inventory item. Quantity is never mutated directly;
// all changes route through the stock ledger.
type Product struct {
	ID          int64       `db:"id" json:"id"`
	SKU         string      `db:"sku" json:"sku"`
	Name        string      `db:"name" json:"name"`
	Description string      `db:"description" json:"description,omitempty"`
	CategoryID  int64       `db:"category_id" json:"categoryId"`
	SupplierID  *int64      `db:"supplier_id" json:"supplierId,omitempty"`
	CostPrice   types.Money `db:"cost_price" json:"costPrice"`
	SalePrice   types.Money `db:"sale_price" json:"salePrice"`
	Quantity    int         `db:"quantity" json:"quantity"`
	MinQuantity int         `db:"min_quantity" json:"minQuantity"`
	Barcode     string      `db:"barcode" json:"barcode,omitempty"`
	Active      bool        `db:"active" json:"active"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// IsLowStock reports whether the product is at or below its threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinQuantity
}

// ProfitMargin returns the margin percentage over cost price.
// Zero cost price yields zero margin.
func (p *Product) ProfitMargin() types.Money {
	if !p.CostPrice.IsPositive() {
		return types.Zero()
	}
	return p.SalePrice.Sub(p.CostPrice).
		Div(p.CostPrice).
		Mul(types.NewMoney(100)).
		Round(2)
}

// Validate implements basic field validation.
func (p *Product) Validate() error {
	if p.SKU == "" {
		return apperror.NewValidation("sku is required").WithDetail("field", "sku")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if p.CategoryID == 0 {
		return apperror.NewValidation("category is required").WithDetail("field", "categoryId")
	}
	if p.CostPrice.IsNegative() || p.SalePrice.IsNegative() {
		return apperror.NewValidation("prices cannot be negative")
	}
	if p.MinQuantity < 0 {
		return apperror.NewValidation("minimum quantity cannot be negative")
	}
	return nil
}

// Category groups products.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Supplier is a product source.
type Supplier struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Address string `db:"address" json:"address,omitempty"`
	Email   string `db:"email" json:"email,omitempty"`
}

// Customer buys products or brings devices for repair.
type Customer struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Address   string    `db:"address" json:"address,omitempty"`
	Notes     string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate implements basic field validation.
func (c *Customer) Validate() error {
	if c.Name == "" {
		return apperror.NewValidation("customer name is required").WithDetail("field", "name")
	}
	return nil
}
