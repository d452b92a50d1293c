package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/core/appctx"
	"hussiny/internal/domain/auth"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves login and the current-user endpoint.
type AuthHandler struct {
	BaseHandler
	service *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login authenticates and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Me returns the authenticated user's context.
func (h *AuthHandler) Me(c *gin.Context) {
	user := appctx.GetUser(c.Request.Context())
	h.OK(c, gin.H{
		"id":          user.UserID,
		"email":       user.Email,
		"name":        user.Name,
		"role":        user.Role,
		"permissions": user.Permissions,
	})
}
