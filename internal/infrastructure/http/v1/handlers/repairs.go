package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/core/types"
	"hussiny/internal/domain/repairs"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// RepairsHandler serves repair tickets.
type RepairsHandler struct {
	BaseHandler
	service *repairs.Service
}

// NewRepairsHandler creates a repairs handler.
func NewRepairsHandler(service *repairs.Service) *RepairsHandler {
	return &RepairsHandler{service: service}
}

// Create opens a ticket.
func (h *RepairsHandler) Create(c *gin.Context) {
	var req dto.CreateRepairRequest
	if !h.BindJSON(c, &req) {
		return
	}

	parts, ok := h.ParseMoney(c, "partsCost", req.PartsCost)
	if !ok {
		return
	}
	labor, ok := h.ParseMoney(c, "laborCost", req.LaborCost)
	if !ok {
		return
	}
	deposit, ok := h.ParseMoney(c, "deposit", req.Deposit)
	if !ok {
		return
	}

	t := &repairs.Ticket{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		DeviceType:   req.DeviceType,
		DeviceModel:  req.DeviceModel,
		SerialNumber: req.SerialNumber,
		Problem:      req.Problem,
		PartsCost:    parts,
		LaborCost:    labor,
		Deposit:      deposit,
	}
	if err := h.service.Create(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// Update edits a ticket.
func (h *RepairsHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdateRepairRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in := repairs.UpdateInput{
		Diagnosis:   req.Diagnosis,
		DeviceModel: req.DeviceModel,
	}
	if req.Status != nil {
		status := repairs.Status(*req.Status)
		in.Status = &status
	}
	if !h.bindMoneyField(c, req.PartsCost, "partsCost", &in.PartsCost) ||
		!h.bindMoneyField(c, req.LaborCost, "laborCost", &in.LaborCost) ||
		!h.bindMoneyField(c, req.Deposit, "deposit", &in.Deposit) {
		return
	}

	t, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

func (h *RepairsHandler) bindMoneyField(c *gin.Context, raw *string, field string, dst **types.Money) bool {
	if raw == nil {
		return true
	}
	m, ok := h.ParseMoney(c, field, *raw)
	if !ok {
		return false
	}
	*dst = &m
	return true
}

// Get returns one ticket.
func (h *RepairsHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// GetByNumber returns a ticket by its number.
func (h *RepairsHandler) GetByNumber(c *gin.Context) {
	t, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// List returns tickets matching the filter.
func (h *RepairsHandler) List(c *gin.Context) {
	tickets, err := h.service.List(c.Request.Context(), repairs.Filter{
		Status: repairs.Status(c.Query("status")),
		Query:  c.Query("q"),
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, tickets)
}

// Pending returns the open ticket count.
func (h *RepairsHandler) Pending(c *gin.Context) {
	count, err := h.service.PendingCount(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"pending": count})
}
