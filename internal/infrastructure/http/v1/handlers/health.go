package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hussiny/internal/config"
)

// HealthHandler serves liveness checks.
type HealthHandler struct{}

// NewHealthHandler creates a health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health reports service status and version.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": config.AppVersion,
	})
}
