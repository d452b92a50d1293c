// Package handlers implements the v1 HTTP API.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hussiny/internal/core/apperror"
	"hussiny/internal/core/types"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// BindJSON binds and validates a JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers the error on the gin context and aborts; the JSON
// response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParamID parses the :id path parameter.
func (h *BaseHandler) ParamID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.Error(c, apperror.NewValidation("invalid id"))
		return 0, false
	}
	return id, true
}

// ParseIntQuery parses an integer query parameter with a default.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseMoney parses a money field, treating empty input as zero.
func (h *BaseHandler) ParseMoney(c *gin.Context, field, value string) (types.Money, bool) {
	if value == "" {
		return types.Zero(), true
	}
	m, err := types.NewMoneyFromString(value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid amount").WithDetail("field", field))
		return types.Zero(), false
	}
	return m, true
}

// ParseDateRange parses from/to query dates (yyyy-mm-dd). The returned
// range is [from, to+1d) so "to" is inclusive; absent values default to
// the last 30 days.
func (h *BaseHandler) ParseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	var q dto.RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters"))
		return time.Time{}, time.Time{}, false
	}

	now := time.Now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -30)

	if q.From != "" {
		parsed, err := time.ParseInLocation("2006-01-02", q.From, now.Location())
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date").WithDetail("from", q.From))
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if q.To != "" {
		parsed, err := time.ParseInLocation("2006-01-02", q.To, now.Location())
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date").WithDetail("to", q.To))
			return time.Time{}, time.Time{}, false
		}
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, true
}

// Created sends a 201 response with the new id.
func (h *BaseHandler) Created(c *gin.Context, id int64) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// OK sends a 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Success sends a generic success response.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}

// NoContent sends a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
