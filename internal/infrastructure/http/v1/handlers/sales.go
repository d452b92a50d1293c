package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/domain/sales"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// SalesHandler serves invoices and returns.
type SalesHandler struct {
	BaseHandler
	service *sales.Service
}

// NewSalesHandler creates a sales handler.
func NewSalesHandler(service *sales.Service) *SalesHandler {
	return &SalesHandler{service: service}
}

// Create composes a new invoice.
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	discount, ok := h.ParseMoney(c, "discountValue", req.DiscountValue)
	if !ok {
		return
	}
	taxRate, ok := h.ParseMoney(c, "taxRate", req.TaxRate)
	if !ok {
		return
	}
	paid, ok := h.ParseMoney(c, "paid", req.Paid)
	if !ok {
		return
	}

	lines := make([]sales.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		line := sales.LineInput{ProductID: l.ProductID, Quantity: l.Quantity}
		if l.UnitPrice != "" {
			price, ok := h.ParseMoney(c, "unitPrice", l.UnitPrice)
			if !ok {
				return
			}
			line.UnitPrice = &price
		}
		lines = append(lines, line)
	}

	sale, err := h.service.CreateSale(c.Request.Context(), sales.CreateSaleInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Lines:         lines,
		DiscountMode:  sales.DiscountMode(req.DiscountMode),
		DiscountValue: discount,
		TaxRate:       taxRate,
		Paid:          paid,
		PaymentMethod: sales.PaymentMethod(req.PaymentMethod),
		Note:          req.Note,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// Get returns one sale with its lines.
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	sale, err := h.service.GetSale(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// GetByNumber returns a sale by invoice number.
func (h *SalesHandler) GetByNumber(c *gin.Context) {
	sale, err := h.service.GetSaleByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// List returns sale headers matching the filter.
func (h *SalesHandler) List(c *gin.Context) {
	from, to, ok := h.ParseDateRange(c)
	if !ok {
		return
	}

	result, err := h.service.ListSales(c.Request.Context(), sales.Filter{
		InvoiceNumber: c.Query("q"),
		FromDate:      &from,
		ToDate:        &to,
		Limit:         h.ParseIntQuery(c, "limit", 100),
		Offset:        h.ParseIntQuery(c, "offset", 0),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Today returns the running total and count for the current day.
func (h *SalesHandler) Today(c *gin.Context) {
	total, count, err := h.service.TodayTotal(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"total": total, "count": count})
}

// CreateReturn records a return against a sale.
func (h *SalesHandler) CreateReturn(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.service.CreateReturn(c.Request.Context(), sales.CreateReturnInput{
		SaleID:    saleID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ret)
}

// ListReturns returns recent returns.
func (h *SalesHandler) ListReturns(c *gin.Context) {
	from, to, ok := h.ParseDateRange(c)
	if !ok {
		return
	}
	returns, err := h.service.ListReturns(c.Request.Context(), from, to,
		h.ParseIntQuery(c, "limit", 100))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, returns)
}
