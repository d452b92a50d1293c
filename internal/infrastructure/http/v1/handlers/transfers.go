package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/domain/transfers"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// TransfersHandler serves balance transfers.
type TransfersHandler struct {
	BaseHandler
	service *transfers.Service
}

// NewTransfersHandler creates a transfers handler.
func NewTransfersHandler(service *transfers.Service) *TransfersHandler {
	return &TransfersHandler{service: service}
}

// Create records a transfer.
func (h *TransfersHandler) Create(c *gin.Context) {
	var req dto.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	amount, ok := h.ParseMoney(c, "amount", req.Amount)
	if !ok {
		return
	}
	commission, ok := h.ParseMoney(c, "commission", req.Commission)
	if !ok {
		return
	}

	t := &transfers.Transfer{
		Channel:      transfers.Channel(req.Channel),
		Direction:    transfers.Direction(req.Direction),
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		WalletNumber: req.WalletNumber,
		Amount:       amount,
		Commission:   commission,
		Note:         req.Note,
	}
	if err := h.service.Create(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// Update rewrites a transfer.
func (h *TransfersHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CreateTransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	amount, ok := h.ParseMoney(c, "amount", req.Amount)
	if !ok {
		return
	}
	commission, ok := h.ParseMoney(c, "commission", req.Commission)
	if !ok {
		return
	}

	t := &transfers.Transfer{
		ID:           id,
		Channel:      transfers.Channel(req.Channel),
		Direction:    transfers.Direction(req.Direction),
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		WalletNumber: req.WalletNumber,
		Amount:       amount,
		Commission:   commission,
		Note:         req.Note,
	}
	if err := h.service.Update(c.Request.Context(), t); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// Delete removes a transfer.
func (h *TransfersHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Get returns one transfer.
func (h *TransfersHandler) Get(c *gin.Context) {
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

// GetByReference returns a transfer by its reference.
func (h *TransfersHandler) GetByReference(c *gin.Context) {
	t, err := h.service.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// List returns transfers matching the filter.
func (h *TransfersHandler) List(c *gin.Context) {
	from, to, ok := h.ParseDateRange(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), transfers.Filter{
		Channel:   transfers.Channel(c.Query("channel")),
		Direction: transfers.Direction(c.Query("direction")),
		Query:     c.Query("q"),
		FromDate:  &from,
		ToDate:    &to,
		Limit:     h.ParseIntQuery(c, "limit", 100),
		Offset:    h.ParseIntQuery(c, "offset", 0),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Commission returns commission earned within the date range.
func (h *TransfersHandler) Commission(c *gin.Context) {
	from, to, ok := h.ParseDateRange(c)
	if !ok {
		return
	}

	total, err := h.service.CommissionForRange(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"commission": total})
}
