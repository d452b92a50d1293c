package handlers

import (
	"github.com/gin-gonic/gin"

	"hussiny/internal/domain/auth"
	"hussiny/internal/infrastructure/http/v1/dto"
)

// UsersHandler serves account and role management.
type UsersHandler struct {
	BaseHandler
	service *auth.Service
}

// NewUsersHandler creates a users handler.
func NewUsersHandler(service *auth.Service) *UsersHandler {
	return &UsersHandler{service: service}
}

// Create adds an account.
func (h *UsersHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	u := &auth.User{Email: req.Email, Name: req.Name, RoleID: req.RoleID}
	if err := h.service.CreateUser(c.Request.Context(), u, req.Password); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, u.ID)
}

// Update rewrites account master data.
func (h *UsersHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	current, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	u := &auth.User{ID: id, Email: req.Email, Name: req.Name, RoleID: req.RoleID, Active: current.Active}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if err := h.service.UpdateUser(c.Request.Context(), u); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, u)
}

// Get returns one account.
func (h *UsersHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, u)
}

// List returns all accounts.
func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, users)
}

// ChangePassword sets a new password for an account.
func (h *UsersHandler) ChangePassword(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), id, req.Password); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "password changed")
}

// Activate enables an account.
func (h *UsersHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate disables an account.
func (h *UsersHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UsersHandler) setActive(c *gin.Context, active bool) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.SetUserActive(c.Request.Context(), id, active); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "user updated")
}

// --- Roles ---

// CreateRole adds a role.
func (h *UsersHandler) CreateRole(c *gin.Context) {
	var req dto.RoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r := &auth.Role{Name: req.Name, Permissions: auth.PermissionSet(req.Permissions)}
	if err := h.service.CreateRole(c.Request.Context(), r); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, r.ID)
}

// UpdateRole rewrites a role.
func (h *UsersHandler) UpdateRole(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.RoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	r := &auth.Role{ID: id, Name: req.Name, Permissions: auth.PermissionSet(req.Permissions)}
	if err := h.service.UpdateRole(c.Request.Context(), r); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// DeleteRole removes an unused role.
func (h *UsersHandler) DeleteRole(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRole(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListRoles returns all roles.
func (h *UsersHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, roles)
}
