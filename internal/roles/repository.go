package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianshop/meridian-admin/internal/platform/db"
	"github.com/meridianshop/meridian-admin/internal/rbac"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]rbac.Role, error)
	GetRole(ctx context.Context, id int64) (rbac.Role, error)
	CreateRole(ctx context.Context, role rbac.Role) (rbac.Role, error)
	UpdateRole(ctx context.Context, role rbac.Role) (rbac.Role, error)
	DeleteRole(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) (rbac.Role, error)
	CountAssignments(ctx context.Context, id int64) (int64, error)
	ListRolePermissions(ctx context.Context, code string) ([]string, error)
	ReplaceRolePermissions(ctx context.Context, code string, keys []string) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = "id, code, name, type, priority, is_active, created_at, updated_at"

func scanRole(row pgx.Row) (rbac.Role, error) {
	var role rbac.Role
	err := row.Scan(&role.ID, &role.Code, &role.Name, &role.Type, &role.Priority, &role.IsActive, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return rbac.Role{}, ErrNotFound
	}
	return role, err
}

// ListRoles returns all roles ordered by priority then code.
func (r *Repository) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY priority, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []rbac.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole fetches a role by ID.
func (r *Repository) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	return scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, role rbac.Role) (rbac.Role, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO roles (code, name, type, priority, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+roleColumns,
		role.Code, role.Name, role.Type, role.Priority, role.IsActive)
	created, err := scanRole(row)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.ConstraintName == "uq_roles_code" {
			return rbac.Role{}, ErrDuplicateCode
		}
		return rbac.Role{}, err
	}
	return created, nil
}

// UpdateRole updates the mutable role attributes. Code is immutable and not
// part of the statement.
func (r *Repository) UpdateRole(ctx context.Context, role rbac.Role) (rbac.Role, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE roles SET name = $2, type = $3, priority = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+roleColumns,
		role.ID, role.Name, role.Type, role.Priority)
	return scanRole(row)
}

// DeleteRole removes a role by ID.
func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive flips the activation flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) (rbac.Role, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE roles SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING `+roleColumns,
		id, active)
	return scanRole(row)
}

// CountAssignments counts how many users currently hold the role.
func (r *Repository) CountAssignments(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_roles WHERE role_id = $1`, id).Scan(&count)
	return count, err
}

// ListRolePermissions returns the permission keys granted to a role code.
func (r *Repository) ListRolePermissions(ctx context.Context, code string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT rp.permission_key
		   FROM role_permissions rp
		   JOIN roles r ON r.id = rp.role_id
		  WHERE r.code = $1
		  ORDER BY rp.permission_key`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// ReplaceRolePermissions swaps the role's entire grant set in one
// transaction. Concurrent replacements on the same role race
// last-write-wins; there is no optimistic-concurrency token.
func (r *Repository) ReplaceRolePermissions(ctx context.Context, code string, keys []string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var roleID int64
		if err := tx.QueryRow(ctx, `SELECT id FROM roles WHERE code = $1`, code).Scan(&roleID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		for _, key := range keys {
			if _, err := tx.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_key) VALUES ($1, $2)`, roleID, key); err != nil {
				return err
			}
		}
		return nil
	})
}
