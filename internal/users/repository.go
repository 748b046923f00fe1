package users

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianshop/meridian-admin/internal/rbac"
)

// RepositoryPort defines data access methods for users and their
// authorization inputs.
type RepositoryPort interface {
	ListUsers(ctx context.Context, page, perPage int) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (User, error)
	ListUserRoles(ctx context.Context, userID int64) ([]rbac.Role, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
	ListOverrides(ctx context.Context, userID int64) ([]rbac.Override, error)
	PutOverride(ctx context.Context, userID int64, ov rbac.Override) error
	DeleteOverride(ctx context.Context, userID int64, key string) error
	GrantsFor(ctx context.Context, roleCodes []string) (rbac.RolePermissionMap, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns one page of users plus the total count.
func (r *Repository) ListUsers(ctx context.Context, page, perPage int) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, name, is_active, created_at, updated_at
		   FROM users ORDER BY email LIMIT $1 OFFSET $2`, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// GetUser fetches one user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, is_active, created_at, updated_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// ListUserRoles returns the active roles the user holds.
func (r *Repository) ListUserRoles(ctx context.Context, userID int64) ([]rbac.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.code, r.name, r.type, r.priority, r.is_active, r.created_at, r.updated_at
		   FROM roles r
		   JOIN user_roles ur ON ur.role_id = r.id
		  WHERE ur.user_id = $1 AND r.is_active
		  ORDER BY r.priority, r.code`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []rbac.Role
	for rows.Next() {
		var role rbac.Role
		if err := rows.Scan(&role.ID, &role.Code, &role.Name, &role.Type, &role.Priority, &role.IsActive, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// AssignRole links a role to the user; repeated assignment is a no-op.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, roleID)
	return err
}

// RemoveRole unlinks a role from the user.
func (r *Repository) RemoveRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

// ListOverrides returns the user's permission overrides.
func (r *Repository) ListOverrides(ctx context.Context, userID int64) ([]rbac.Override, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT permission_key, scope, revoke FROM user_permission_overrides
		  WHERE user_id = $1 ORDER BY permission_key`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []rbac.Override
	for rows.Next() {
		var (
			ov  rbac.Override
			raw []byte
		)
		if err := rows.Scan(&ov.Key, &raw, &ov.Revoke); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			var scope any
			if err := json.Unmarshal(raw, &scope); err == nil {
				ov.Scope = scope
			}
		}
		overrides = append(overrides, ov)
	}
	return overrides, rows.Err()
}

// PutOverride upserts one override row.
func (r *Repository) PutOverride(ctx context.Context, userID int64, ov rbac.Override) error {
	var raw []byte
	if ov.Scope != nil {
		data, err := json.Marshal(ov.Scope)
		if err != nil {
			return err
		}
		raw = data
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_permission_overrides (user_id, permission_key, scope, revoke)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, permission_key) DO UPDATE SET scope = $3, revoke = $4`,
		userID, ov.Key, raw, ov.Revoke)
	return err
}

// DeleteOverride drops one override row.
func (r *Repository) DeleteOverride(ctx context.Context, userID int64, key string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_permission_overrides WHERE user_id = $1 AND permission_key = $2`, userID, key)
	return err
}

// GrantsFor loads the scoped grant sets for the given role codes.
func (r *Repository) GrantsFor(ctx context.Context, roleCodes []string) (rbac.RolePermissionMap, error) {
	grants := make(rbac.RolePermissionMap, len(roleCodes))
	if len(roleCodes) == 0 {
		return grants, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT r.code, rp.permission_key, rp.scope
		   FROM role_permissions rp
		   JOIN roles r ON r.id = rp.role_id
		  WHERE r.code = ANY($1)`, roleCodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			code, key string
			raw       []byte
		)
		if err := rows.Scan(&code, &key, &raw); err != nil {
			return nil, err
		}
		var scope rbac.Scope = true
		if len(raw) > 0 {
			var decoded any
			if err := json.Unmarshal(raw, &decoded); err == nil && decoded != nil {
				scope = decoded
			}
		}
		if grants[code] == nil {
			grants[code] = make(map[string]rbac.Scope)
		}
		grants[code][key] = scope
	}
	return grants, rows.Err()
}
