package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/domain/reports"
)

// ReportsHandler serves aggregate reports and the dashboard.
type ReportsHandler struct {
	BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(service *reports.Service) *ReportsHandler {
	return &ReportsHandler{service: service}
}

// Sales returns the sales summary for the requested period.
func (h *ReportsHandler) Sales(c *gin.Context) {
	from, to, ok := h.ParseDateRange(c)
	if !ok {
		return
	}

	summary, err := h.service.SalesReport(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Today returns today's sales summary.
func (h *ReportsHandler) Today(c *gin.Context) {
	summary, err := h.service.TodayReport(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// TopProducts returns best sellers for the requested period.
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	from, to, ok := h.ParseDateRange(c)
	if !ok {
		return
	}

	rows, err := h.service.TopProducts(c.Request.Context(), from, to,
		h.ParseIntQuery(c, "limit", 10))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// Daily returns the per-day sales series for the requested period.
func (h *ReportsHandler) Daily(c *gin.Context) {
	from, to, ok := h.ParseDateRange(c)
	if !ok {
		return
	}

	series, err := h.service.DailySeries(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, series)
}

// Valuation returns the current inventory valuation.
func (h *ReportsHandler) Valuation(c *gin.Context) {
	v, err := h.service.Valuation(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// Dashboard returns the landing-page counters.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}
