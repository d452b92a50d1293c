// Package auth provides users, roles, permission checks and JWT issuing.
package auth

import (
	"context"
	"time"

	"hussiny/internal/core/apperror"
)

// PermissionSet is a role's permission list. The single entry "all" grants
// everything.
type PermissionSet []string

// PermissionAll is the wildcard permission.
const PermissionAll = "all"

// Grants reports whether the set covers the given permission.
func (p PermissionSet) Grants(perm string) bool {
	for _, have := range p {
		if have == PermissionAll || have == perm {
			return true
		}
	}
	return false
}

// Role groups permissions under a name.
type Role struct {
	ID          int64         `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Permissions PermissionSet `db:"-" json:"permissions"`
}

// User is an application account.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	RoleID       int64      `db:"role_id" json:"roleId"`
	RoleName     string     `db:"role_name" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// Validate implements basic field validation.
func (u *User) Validate() error {
	if u.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if u.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if u.RoleID == 0 {
		return apperror.NewValidation("role is required").WithDetail("field", "roleId")
	}
	return nil
}

// UserRepository defines storage operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	SetActive(ctx context.Context, id int64, active bool) error
	StampLogin(ctx context.Context, id int64, at time.Time) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// RoleRepository defines storage operations for roles.
type RoleRepository interface {
	Create(ctx context.Context, r *Role) error
	Update(ctx context.Context, r *Role) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
}
