package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"hussiny/internal/domain/audit"
)

// AuditHandler serves the audit trail.
type AuditHandler struct {
	BaseHandler
	recorder *audit.Recorder
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

// List returns audit entries, newest first.
func (h *AuditHandler) List(c *gin.Context) {
	from, to, ok := h.ParseDateRange(c)
	if !ok {
		return
	}

	filter := audit.Filter{
		Module:   c.Query("module"),
		FromDate: &from,
		ToDate:   &to,
		Limit:    h.ParseIntQuery(c, "limit", 100),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("userId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.UserID = &id
		}
	}

	entries, err := h.recorder.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}
