package auth

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hussiny/internal/core/apperror"
	"hussiny/internal/domain/audit"
	"hussiny/pkg/logger"
)

// minPasswordLen is the minimum accepted password length.
const minPasswordLen = 6

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token       string        `json:"token"`
	User        *User         `json:"user"`
	Permissions PermissionSet `json:"permissions"`
}

// Service manages accounts and authentication.
type Service struct {
	users UserRepository
	roles RoleRepository
	jwt   *JWTService
	audit *audit.Recorder
	now   func() time.Time
}

// NewService creates a new auth service. A nil clock defaults to time.Now.
func NewService(users UserRepository, roles RoleRepository, jwtSvc *JWTService, auditRec *audit.Recorder, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{users: users, roles: roles, jwt: jwtSvc, audit: auditRec, now: now}
}

// Login verifies credentials and returns a signed token. Failed attempts
// get the same error regardless of cause so the response never reveals
// whether the account exists.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := apperror.NewUnauthorized("invalid email or password")

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if !u.Active {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		logger.Warn(ctx, "failed login attempt", "email", email)
		return nil, invalid
	}

	role, err := s.roles.GetByID(ctx, u.RoleID)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.Issue(u, role.Permissions)
	if err != nil {
		return nil, err
	}

	if err := s.users.StampLogin(ctx, u.ID, s.now()); err != nil {
		logger.Warn(ctx, "could not stamp last login", "user_id", u.ID, "error", err)
	}

	logger.Info(ctx, "user logged in", "user_id", u.ID, "role", role.Name)
	return &LoginResult{Token: token, User: u, Permissions: role.Permissions}, nil
}

// ParseToken validates a raw token.
func (s *Service) ParseToken(token string) (*Claims, error) {
	return s.jwt.Parse(token)
}

// CreateUser creates an account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, u *User, password string) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if len(password) < minPasswordLen {
		return apperror.NewValidation("password too short").
			WithDetail("min_length", minPasswordLen)
	}

	if existing, err := s.users.GetByEmail(ctx, u.Email); err == nil && existing != nil {
		return apperror.NewDuplicate("user", "email", u.Email)
	} else if err != nil && !apperror.IsNotFound(err) {
		return err
	}

	if _, err := s.roles.GetByID(ctx, u.RoleID); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	u.PasswordHash = string(hash)
	u.Active = true

	if err := s.users.Create(ctx, u); err != nil {
		return err
	}

	s.audit.Record(ctx, "create", "users", strconv.FormatInt(u.ID, 10), u.Email)
	return nil
}

// UpdateUser updates account master data. Password changes go through
// ChangePassword.
func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	current, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	if u.Email != current.Email {
		if existing, err := s.users.GetByEmail(ctx, u.Email); err == nil && existing != nil && existing.ID != u.ID {
			return apperror.NewDuplicate("user", "email", u.Email)
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}
	}
	if _, err := s.roles.GetByID(ctx, u.RoleID); err != nil {
		return err
	}

	u.PasswordHash = current.PasswordHash
	u.CreatedAt = current.CreatedAt
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}

	s.audit.Record(ctx, "update", "users", strconv.FormatInt(u.ID, 10), u.Email)
	return nil
}

// ChangePassword sets a new password for the user.
func (s *Service) ChangePassword(ctx context.Context, userID int64, password string) error {
	if len(password) < minPasswordLen {
		return apperror.NewValidation("password too short").
			WithDetail("min_length", minPasswordLen)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.audit.Record(ctx, "change_password", "users", strconv.FormatInt(userID, 10), nil)
	return nil
}

// SetUserActive enables or disables an account.
func (s *Service) SetUserActive(ctx context.Context, userID int64, active bool) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return err
	}

	action := "deactivate"
	if active {
		action = "activate"
	}
	s.audit.Record(ctx, action, "users", strconv.FormatInt(userID, 10), nil)
	return nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}

// --- Roles ---

// CreateRole creates a role.
func (s *Service) CreateRole(ctx context.Context, r *Role) error {
	if r.Name == "" {
		return apperror.NewValidation("role name is required")
	}
	if existing, err := s.roles.GetByName(ctx, r.Name); err == nil && existing != nil {
		return apperror.NewDuplicate("role", "name", r.Name)
	} else if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if err := s.roles.Create(ctx, r); err != nil {
		return err
	}
	s.audit.Record(ctx, "create", "roles", strconv.FormatInt(r.ID, 10), r.Name)
	return nil
}

// UpdateRole updates a role's name and permissions.
func (s *Service) UpdateRole(ctx context.Context, r *Role) error {
	if r.Name == "" {
		return apperror.NewValidation("role name is required")
	}
	if err := s.roles.Update(ctx, r); err != nil {
		return err
	}
	s.audit.Record(ctx, "update", "roles", strconv.FormatInt(r.ID, 10), r.Name)
	return nil
}

// DeleteRole removes an unused role.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.RoleID == id {
			return apperror.NewConflict("role is still assigned to users")
		}
	}
	return s.roles.Delete(ctx, id)
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles.List(ctx)
}
