package rbac

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Catalog is the canonical, immutable set of permission keys. Every key
// referenced anywhere (role grants, screen requirements, action maps) must
// exist here; unknown keys are load-time misconfigurations, not silent
// runtime denials.
type Catalog struct {
	byKey   map[string]Permission
	ordered []Permission
}

// NewCatalog builds a catalog from the permission definitions, collecting
// every duplicate key in one pass.
func NewCatalog(perms []Permission) (*Catalog, error) {
	var violations []Violation
	byKey := make(map[string]Permission, len(perms))
	for _, p := range perms {
		if _, dup := byKey[p.Key]; dup {
			violations = append(violations, Violation{
				Kind:   ViolationDuplicateKey,
				Ref:    p.Key,
				Detail: "permission key defined more than once",
			})
			continue
		}
		byKey[p.Key] = p
	}
	if len(violations) > 0 {
		return nil, &MisconfigurationError{Violations: violations}
	}

	ordered := make([]Permission, 0, len(byKey))
	for _, p := range byKey {
		ordered = append(ordered, p)
	}
	coll := collate.New(language.English)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return coll.CompareString(a.Label, b.Label) < 0
	})

	return &Catalog{byKey: byKey, ordered: ordered}, nil
}

// Has reports whether the key exists in the catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Get returns the permission definition for the key.
func (c *Catalog) Get(key string) (Permission, bool) {
	p, ok := c.byKey[key]
	return p, ok
}

// List returns the catalog ordered by group, then declared order, then
// label collation.
func (c *Catalog) List() []Permission {
	out := make([]Permission, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Unknown returns the subset of keys absent from the catalog, preserving
// input order.
func (c *Catalog) Unknown(keys []string) []string {
	var missing []string
	for _, key := range keys {
		if !c.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// ValidateRoles checks role definitions against the catalog: duplicate role
// codes, unknown role types and grants referencing unknown permission keys
// are all collected in one pass.
func ValidateRoles(roles []Role, grants RolePermissionMap, catalog *Catalog) error {
	var violations []Violation
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if _, dup := seen[role.Code]; dup {
			violations = append(violations, Violation{
				Kind:   ViolationDuplicateKey,
				Ref:    role.Code,
				Detail: "role code defined more than once",
			})
		}
		seen[role.Code] = struct{}{}
		if !role.Type.Valid() {
			violations = append(violations, Violation{
				Kind:   ViolationUnknownRoleType,
				Ref:    role.Code,
				Detail: fmt.Sprintf("unknown role type %q", role.Type),
			})
		}
	}
	for code, keys := range grants {
		for key := range keys {
			if !catalog.Has(key) {
				violations = append(violations, Violation{
					Kind:   ViolationUnknownPermission,
					Ref:    code,
					Detail: fmt.Sprintf("role grants unknown permission %q", key),
				})
			}
		}
	}
	if len(violations) > 0 {
		sortViolations(violations)
		return &MisconfigurationError{Violations: violations}
	}
	return nil
}
