package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/domain/search"
)

// SearchHandler serves the global search box.
type SearchHandler struct {
	BaseHandler
	service *search.Service
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search runs one query over all entity collections.
func (h *SearchHandler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(),
		c.Query("q"), h.ParseIntQuery(c, "limit", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, results)
}
