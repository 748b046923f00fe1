package rbac

import "sort"

// EffectivePermissions composes the authorization snapshot for a user from
// the roles they hold, the per-role grant sets and the user's overrides.
//
// Roles are applied in ascending priority order (ties broken by role code)
// so that when two roles grant the same key with different scope payloads
// the higher-priority role's payload overwrites the lower one. Overrides are
// applied last: a revoke removes the key no matter which roles grant it, a
// grant sets or replaces the key's scope. The result is deterministic and
// idempotent for fixed inputs.
func EffectivePermissions(userRoles []Role, grants RolePermissionMap, overrides []Override) *Context {
	sorted := make([]Role, len(userRoles))
	copy(sorted, userRoles)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Code < sorted[j].Code
	})

	perms := make(map[string]Scope)
	codes := make([]string, 0, len(sorted))
	for _, role := range sorted {
		codes = append(codes, role.Code)
		for key, scope := range grants[role.Code] {
			if scope == nil {
				scope = true
			}
			perms[key] = scope
		}
	}

	for _, ov := range overrides {
		if ov.Revoke {
			delete(perms, ov.Key)
			continue
		}
		scope := ov.Scope
		if scope == nil {
			scope = true
		}
		perms[ov.Key] = scope
	}

	return &Context{Roles: codes, Permissions: perms}
}
