package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/domain/catalog"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves categories, suppliers and customers.
type CatalogHandler struct {
	BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// --- Categories ---

// CreateCategory adds a category.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat := &catalog.Category{Name: req.Name}
	if err := h.service.CreateCategory(c.Request.Context(), cat); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, cat.ID)
}

// UpdateCategory renames a category.
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat := &catalog.Category{ID: id, Name: req.Name}
	if err := h.service.UpdateCategory(c.Request.Context(), cat); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cat)
}

// DeleteCategory removes an empty category.
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListCategories returns all categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, categories)
}

// --- Suppliers ---

// CreateSupplier adds a supplier.
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req dto.SupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s := &catalog.Supplier{Name: req.Name, Phone: req.Phone, Address: req.Address, Email: req.Email}
	if err := h.service.CreateSupplier(c.Request.Context(), s); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, s.ID)
}

// UpdateSupplier rewrites a supplier.
func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.SupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s := &catalog.Supplier{ID: id, Name: req.Name, Phone: req.Phone, Address: req.Address, Email: req.Email}
	if err := h.service.UpdateSupplier(c.Request.Context(), s); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// DeleteSupplier removes a supplier.
func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSupplier(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListSuppliers returns all suppliers.
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.service.ListSuppliers(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, suppliers)
}

// --- Customers ---

// CreateCustomer adds a customer.
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req dto.CustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := &catalog.Customer{Name: req.Name, Phone: req.Phone, Address: req.Address, Notes: req.Notes}
	if err := h.service.CreateCustomer(c.Request.Context(), cust); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, cust.ID)
}

// UpdateCustomer rewrites a customer.
func (h *CatalogHandler) UpdateCustomer(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := &catalog.Customer{ID: id, Name: req.Name, Phone: req.Phone, Address: req.Address, Notes: req.Notes}
	if err := h.service.UpdateCustomer(c.Request.Context(), cust); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cust)
}

// GetCustomer returns one customer.
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	cust, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cust)
}

// ListCustomers returns customers, optionally filtered.
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	customers, err := h.service.ListCustomers(c.Request.Context(),
		c.Query("q"), h.ParseIntQuery(c, "limit", 100))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, customers)
}
