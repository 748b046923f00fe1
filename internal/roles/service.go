package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridianshop/meridian-admin/internal/rbac"
)

// Service handles role administration logic.
type Service struct {
	repo    RepositoryPort
	catalog *rbac.Catalog
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, catalog *rbac.Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new role. The code becomes immutable afterwards.
func (s *Service) CreateRole(ctx context.Context, code, name string, roleType rbac.RoleType, priority int) (rbac.Role, error) {
	code = strings.TrimSpace(strings.ToLower(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return rbac.Role{}, fmt.Errorf("roles: code and name required")
	}
	if !roleType.Valid() {
		return rbac.Role{}, fmt.Errorf("roles: invalid role type %q", roleType)
	}
	return s.repo.CreateRole(ctx, rbac.Role{
		Code:     code,
		Name:     name,
		Type:     roleType,
		Priority: priority,
		IsActive: true,
	})
}

// UpdateRole updates name, type and priority. The role code never changes.
func (s *Service) UpdateRole(ctx context.Context, id int64, name string, roleType rbac.RoleType, priority int) (rbac.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return rbac.Role{}, fmt.Errorf("roles: name required")
	}
	if !roleType.Valid() {
		return rbac.Role{}, fmt.Errorf("roles: invalid role type %q", roleType)
	}
	return s.repo.UpdateRole(ctx, rbac.Role{ID: id, Name: name, Type: roleType, Priority: priority})
}

// DeleteRole removes a role unless any user still holds it; callers should
// fall back to ToggleStatus for a soft deactivation in that case.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	count, err := s.repo.CountAssignments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrRoleAssigned
	}
	return s.repo.DeleteRole(ctx, id)
}

// ToggleStatus flips the role's activation flag.
func (s *Service) ToggleStatus(ctx context.Context, id int64) (rbac.Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return rbac.Role{}, err
	}
	return s.repo.SetActive(ctx, id, !role.IsActive)
}

// RolePermissions returns the keys currently granted to the role code.
func (s *Service) RolePermissions(ctx context.Context, code string) ([]string, error) {
	return s.repo.ListRolePermissions(ctx, code)
}

// SetRolePermissions replaces the role's grant set wholesale. Unknown keys
// reject the whole request; there is no partial merge.
func (s *Service) SetRolePermissions(ctx context.Context, code string, keys []string) error {
	if unknown := s.catalog.Unknown(keys); len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPermission, strings.Join(unknown, ", "))
	}
	deduped := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, key)
	}
	return s.repo.ReplaceRolePermissions(ctx, code, deduped)
}
