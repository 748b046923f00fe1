package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePermissionsUnionsRoleGrants(t *testing.T) {
	roles := []Role{
		{Code: "staff", Priority: 1},
		{Code: "shipper", Priority: 2},
	}
	grants := RolePermissionMap{
		"staff":   {"products.view": nil, "orders.view": nil},
		"shipper": {"orders.ship": nil},
	}

	ctx := EffectivePermissions(roles, grants, nil)

	require.NotNil(t, ctx)
	assert.Equal(t, []string{"staff", "shipper"}, ctx.Roles)
	assert.True(t, ctx.Granted("products.view"))
	assert.True(t, ctx.Granted("orders.view"))
	assert.True(t, ctx.Granted("orders.ship"))
	assert.False(t, ctx.Granted("orders.refund"))
}

func TestEffectivePermissionsHigherPriorityScopeWins(t *testing.T) {
	roles := []Role{
		{Code: "r2", Priority: 5},
		{Code: "r1", Priority: 1},
	}
	grants := RolePermissionMap{
		"r1": {"products.edit": map[string]any{"own": true}},
		"r2": {"products.edit": map[string]any{"own": false}},
	}

	ctx := EffectivePermissions(roles, grants, nil)

	scope, ok := ctx.GrantedScope("products.edit")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"own": false}, scope)
}

func TestEffectivePermissionsPriorityTieBrokenByCode(t *testing.T) {
	roles := []Role{
		{Code: "zeta", Priority: 3},
		{Code: "alpha", Priority: 3},
	}
	grants := RolePermissionMap{
		"alpha": {"orders.view": "scope-a"},
		"zeta":  {"orders.view": "scope-z"},
	}

	ctx := EffectivePermissions(roles, grants, nil)

	// alpha applies first, zeta overwrites.
	scope, ok := ctx.GrantedScope("orders.view")
	require.True(t, ok)
	assert.Equal(t, "scope-z", scope)
	assert.Equal(t, []string{"alpha", "zeta"}, ctx.Roles)
}

func TestEffectivePermissionsOverridesApplyLast(t *testing.T) {
	roles := []Role{{Code: "manager", Priority: 1}}
	grants := RolePermissionMap{
		"manager": {"orders.refund": nil, "products.delete": nil},
	}
	overrides := []Override{
		{Key: "orders.refund", Revoke: true},
		{Key: "templates.edit"},
		{Key: "products.edit", Scope: map[string]any{"own": true}},
	}

	ctx := EffectivePermissions(roles, grants, overrides)

	assert.False(t, ctx.Granted("orders.refund"), "revoke removes a role grant")
	assert.True(t, ctx.Granted("templates.edit"), "override grant with nil scope is a plain grant")
	assert.True(t, ctx.Granted("products.delete"))

	scope, ok := ctx.GrantedScope("products.edit")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"own": true}, scope)
}

func TestEffectivePermissionsRevokeBeatsEveryRole(t *testing.T) {
	roles := []Role{
		{Code: "staff", Priority: 1},
		{Code: "manager", Priority: 9},
	}
	grants := RolePermissionMap{
		"staff":   {"users.view": nil},
		"manager": {"users.view": nil},
	}
	overrides := []Override{{Key: "users.view", Revoke: true}}

	ctx := EffectivePermissions(roles, grants, overrides)

	assert.False(t, ctx.Granted("users.view"))
}

func TestEffectivePermissionsDeterministic(t *testing.T) {
	roles := []Role{
		{Code: "b", Priority: 2},
		{Code: "a", Priority: 1},
	}
	grants := RolePermissionMap{
		"a": {"products.view": "low", "orders.view": nil},
		"b": {"products.view": "high"},
	}
	overrides := []Override{{Key: "orders.view", Revoke: true}}

	first := EffectivePermissions(roles, grants, overrides)
	for i := 0; i < 20; i++ {
		again := EffectivePermissions(roles, grants, overrides)
		assert.Equal(t, first, again)
	}
}

func TestEffectivePermissionsNoRoles(t *testing.T) {
	ctx := EffectivePermissions(nil, RolePermissionMap{}, nil)

	require.NotNil(t, ctx)
	assert.True(t, ctx.Anonymous())
	assert.False(t, ctx.Granted("products.view"))
}
