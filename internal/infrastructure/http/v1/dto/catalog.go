package dto

// ProductRequest creates or updates a product. Money fields arrive as
// strings so client float formatting never corrupts prices.
type ProductRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CategoryID  int64  `json:"categoryId" binding:"required"`
	SupplierID  *int64 `json:"supplierId"`
	CostPrice   string `json:"costPrice"`
	SalePrice   string `json:"salePrice"`
	InitialQty  int    `json:"initialQty"`
	MinQuantity int    `json:"minQuantity"`
	Barcode     string `json:"barcode"`
}

// AdjustStockRequest records a manual stock correction.
type AdjustStockRequest struct {
	Delta int    `json:"delta" binding:"required"`
	Note  string `json:"note"`
}

// ProductListQuery filters product listings.
type ProductListQuery struct {
	ListQuery
	ActiveOnly bool   `form:"active"`
	LowStock   bool   `form:"lowStock"`
	CategoryID *int64 `form:"categoryId"`
}

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// SupplierRequest creates or updates a supplier.
type SupplierRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// CustomerRequest creates or updates a customer.
type CustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}
