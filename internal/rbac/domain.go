// Package rbac implements the access-control core: the permission catalog,
// role model, authorization context resolution, request guards and the
// screen access resolver shared by the API and the admin SPA.
package rbac

import "time"

// RoleType classifies a role within the store organisation.
type RoleType string

// Known role types.
const (
	RoleTypeOwner   RoleType = "owner"
	RoleTypeManager RoleType = "manager"
	RoleTypeStaff   RoleType = "staff"
	RoleTypeShipper RoleType = "shipper"
	RoleTypeUser    RoleType = "user"
)

// Valid reports whether the role type is one of the known values.
func (t RoleType) Valid() bool {
	switch t {
	case RoleTypeOwner, RoleTypeManager, RoleTypeStaff, RoleTypeShipper, RoleTypeUser:
		return true
	}
	return false
}

// Permission represents an atomic grantable capability.
type Permission struct {
	Key      string `json:"key"`
	Group    string `json:"group"`
	Label    string `json:"label"`
	Order    int    `json:"order"`
	IsActive bool   `json:"isActive"`
}

// Role represents a named permission grouping. Code is immutable after
// creation; Priority decides which role's scope payload wins when several
// held roles grant the same key.
type Role struct {
	ID        int64
	Code      string
	Name      string
	Type      RoleType
	Priority  int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Override is a per-user permission adjustment evaluated after the role
// union. Revoke removes the key regardless of role grants; otherwise the
// override grants the key with the given scope.
type Override struct {
	Key    string
	Scope  Scope
	Revoke bool
}

// RolePermissionMap maps a role code to the scoped permission set it grants.
type RolePermissionMap map[string]map[string]Scope
