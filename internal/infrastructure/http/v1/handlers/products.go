package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/domain/catalog"
	"hussiny/internal/domain/ledger"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product endpoints.
type ProductHandler struct {
	BaseHandler
	catalog *catalog.Service
	ledger  *ledger.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(catalogSvc *catalog.Service, ledgerSvc *ledger.Service) *ProductHandler {
	return &ProductHandler{catalog: catalogSvc, ledger: ledgerSvc}
}

func (h *ProductHandler) bindProduct(c *gin.Context) (*catalog.Product, int, bool) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return nil, 0, false
	}

	cost, ok := h.ParseMoney(c, "costPrice", req.CostPrice)
	if !ok {
		return nil, 0, false
	}
	sale, ok := h.ParseMoney(c, "salePrice", req.SalePrice)
	if !ok {
		return nil, 0, false
	}

	return &catalog.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
		CostPrice:   cost,
		SalePrice:   sale,
		MinQuantity: req.MinQuantity,
		Barcode:     req.Barcode,
	}, req.InitialQty, true
}

// Create adds a product, recording any initial quantity through the ledger.
func (h *ProductHandler) Create(c *gin.Context) {
	p, initialQty, ok := h.bindProduct(c)
	if !ok {
		return
	}

	if err := h.catalog.CreateProduct(c.Request.Context(), p, initialQty); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p.ID)
}

// Update rewrites product master data.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	p, _, ok := h.bindProduct(c)
	if !ok {
		return
	}
	p.ID = id

	if err := h.catalog.UpdateProduct(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Get returns one product.
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// GetByBarcode looks up an active product by exact barcode, used by the
// POS scanner.
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	p, err := h.catalog.GetProductByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// GetBySKU looks up an active product by exact SKU.
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	p, err := h.catalog.GetProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// List returns products matching the filter.
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.Error(c, err)
		return
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), catalog.ProductFilter{
		ActiveOnly:   q.ActiveOnly,
		LowStockOnly: q.LowStock,
		CategoryID:   q.CategoryID,
		Query:        q.Query,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, products)
}

// LowStock returns products at or below their threshold.
func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.catalog.LowStockProducts(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, products)
}

// Deactivate soft-deletes a product.
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.catalog.DeactivateProduct(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// AdjustStock records a manual quantity correction.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.catalog.AdjustStock(c.Request.Context(), id, req.Delta, req.Note); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "stock adjusted")
}

// Movements returns the stock movement history for a product.
func (h *ProductHandler) Movements(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	movements, err := h.ledger.History(c.Request.Context(), id, ledger.HistoryFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movements)
}
