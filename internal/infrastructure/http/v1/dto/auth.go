package dto

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest creates an account.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	RoleID   int64  `json:"roleId" binding:"required"`
}

// UpdateUserRequest updates account master data.
type UpdateUserRequest struct {
	Email  string `json:"email" binding:"required"`
	Name   string `json:"name" binding:"required"`
	RoleID int64  `json:"roleId" binding:"required"`
	Active *bool  `json:"active"`
}

// ChangePasswordRequest sets a new password.
type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// RoleRequest creates or updates a role.
type RoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}
