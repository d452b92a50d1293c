package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/core/apperror"
	"hussiny/internal/domain/auth"
)

const (
	usersTable = "users"
	rolesTable = "roles"
)

var userColumns = []string{
	"u.id", "u.email", "u.name", "u.password_hash", "u.role_id",
	"r.name AS role_name", "u.active", "u.last_login_at", "u.created_at",
}

// Compile-time interface checks.
var (
	_ auth.UserRepository = (*UserRepo)(nil)
	_ auth.RoleRepository = (*RoleRepo)(nil)
)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewUserRepo creates a user repository.
func NewUserRepo(txManager *TxManager) *UserRepo {
	return &UserRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Create inserts a user and fills in its id.
func (r *UserRepo) Create(ctx context.Context, u *auth.User) error {
	sql, args, err := r.builder.Insert(usersTable).
		Columns("email", "name", "password_hash", "role_id", "active").
		Values(u.Email, u.Name, u.PasswordHash, u.RoleID, u.Active).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "user", u.Email)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	return nil
}

// Update rewrites user master data.
func (r *UserRepo) Update(ctx context.Context, u *auth.User) error {
	sql, args, err := r.builder.Update(usersTable).
		Set("email", u.Email).
		Set("name", u.Name).
		Set("role_id", u.RoleID).
		Set("active", u.Active).
		Where(squirrel.Eq{"id": u.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "user", u.Email)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("user", u.ID)
	}
	return nil
}

// UpdatePassword replaces the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	sql, args, err := r.builder.Update(usersTable).
		Set("password_hash", hash).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("user", id)
	}
	return nil
}

// SetActive enables or disables an account.
func (r *UserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	sql, args, err := r.builder.Update(usersTable).
		Set("active", active).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("user", id)
	}
	return nil
}

// StampLogin records the last successful login time.
func (r *UserRepo) StampLogin(ctx context.Context, id int64, at time.Time) error {
	sql, args, err := r.builder.Update(usersTable).
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("stamp login: %w", err)
	}
	return nil
}

// GetByID returns a user with their role name.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id}, id)
}

// GetByEmail returns a user with their role name.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.email": email}, email)
}

func (r *UserRepo) getOne(ctx context.Context, where any, id any) (*auth.User, error) {
	sql, args, err := r.builder.Select(userColumns...).
		From(usersTable + " u").
		Join(rolesTable + " r ON r.id = u.role_id").
		Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u auth.User
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &u, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// List returns all accounts with role names.
func (r *UserRepo) List(ctx context.Context) ([]auth.User, error) {
	sql, args, err := r.builder.Select(userColumns...).
		From(usersTable + " u").
		Join(rolesTable + " r ON r.id = u.role_id").
		OrderBy("u.name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var users []auth.User
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

// RoleRepo implements auth.RoleRepository. Permissions are stored as a
// JSON array in a text column.
type RoleRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewRoleRepo creates a role repository.
func NewRoleRepo(txManager *TxManager) *RoleRepo {
	return &RoleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// roleRow is the scan target; permissions decode happens after.
type roleRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Permissions string `db:"permissions"`
}

func (row roleRow) toRole() (*auth.Role, error) {
	role := &auth.Role{ID: row.ID, Name: row.Name}
	if err := json.Unmarshal([]byte(row.Permissions), &role.Permissions); err != nil {
		return nil, fmt.Errorf("decode permissions for role %q: %w", row.Name, err)
	}
	return role, nil
}

// Create inserts a role.
func (r *RoleRepo) Create(ctx context.Context, role *auth.Role) error {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}

	sql, args, err := r.builder.Insert(rolesTable).
		Columns("name", "permissions").
		Values(role.Name, string(perms)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "role", role.Name)
	}
	role.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("role id: %w", err)
	}
	return nil
}

// Update rewrites a role.
func (r *RoleRepo) Update(ctx context.Context, role *auth.Role) error {
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}

	sql, args, err := r.builder.Update(rolesTable).
		Set("name", role.Name).
		Set("permissions", string(perms)).
		Where(squirrel.Eq{"id": role.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return mapConstraintErr(err, "role", role.Name)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("role", role.ID)
	}
	return nil
}

// Delete removes a role.
func (r *RoleRepo) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.builder.Delete(rolesTable).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	res, err := r.txManager.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("role", id)
	}
	return nil
}

// GetByID returns a role by id.
func (r *RoleRepo) GetByID(ctx context.Context, id int64) (*auth.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, id)
}

// GetByName returns a role by name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*auth.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name}, name)
}

func (r *RoleRepo) getOne(ctx context.Context, where any, id any) (*auth.Role, error) {
	sql, args, err := r.builder.Select("id", "name", "permissions").
		From(rolesTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row roleRow
	if err := sqlscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("role", id)
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return row.toRole()
}

// List returns all roles by name.
func (r *RoleRepo) List(ctx context.Context) ([]auth.Role, error) {
	sql, args, err := r.builder.Select("id", "name", "permissions").
		From(rolesTable).OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []roleRow
	if err := sqlscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select roles: %w", err)
	}

	roles := make([]auth.Role, 0, len(rows))
	for _, row := range rows {
		role, err := row.toRole()
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}
