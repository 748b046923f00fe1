package screens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianshop/meridian-admin/internal/rbac"
	"github.com/meridianshop/meridian-admin/internal/shared"
)

func TestLoadValidatesCleanly(t *testing.T) {
	catalog, registry, err := Load()
	require.NoError(t, err)
	require.NotNil(t, catalog)
	require.NotNil(t, registry)

	// Every screen requirement and action key resolves through the catalog.
	for _, screen := range registry.Screens() {
		for _, key := range screen.AccessAny {
			assert.True(t, catalog.Has(key), "screen %s requires unknown key %s", screen.Key, key)
		}
		for action, keys := range screen.Actions {
			for _, key := range keys {
				assert.True(t, catalog.Has(key), "screen %s action %s uses unknown key %s", screen.Key, action, key)
			}
		}
	}
}

func TestDefaultCatalogCoversScopeHelpers(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	for _, key := range shared.CoreScopes() {
		assert.True(t, catalog.Has(key), "missing core scope %s", key)
	}
	for _, key := range shared.CatalogScopes() {
		assert.True(t, catalog.Has(key), "missing catalog scope %s", key)
	}
	for _, key := range shared.OrderScopes() {
		assert.True(t, catalog.Has(key), "missing order scope %s", key)
	}
	for _, key := range shared.TemplateScopes() {
		assert.True(t, catalog.Has(key), "missing template scope %s", key)
	}
}

func TestDefaultScreensResolveDetailRoutes(t *testing.T) {
	_, registry, err := Load()
	require.NoError(t, err)

	detail := registry.FindScreenByPath("/admin/product/42")
	require.NotNil(t, detail)
	assert.Equal(t, "product-detail", detail.Key)

	list := registry.FindScreenByPath("/admin/product")
	require.NotNil(t, list)
	assert.Equal(t, "products", list.Key)

	create := registry.FindScreenByPath("/admin/templates/create")
	require.NotNil(t, create)
	assert.Equal(t, "template-create", create.Key)
}

func TestDefaultScreensMenuVisibility(t *testing.T) {
	_, registry, err := Load()
	require.NoError(t, err)

	settings, ok := registry.Lookup("settings")
	require.True(t, ok)

	userAdmin := &rbac.Context{
		Roles:       []string{"manager"},
		Permissions: map[string]rbac.Scope{shared.PermUsersView: true},
	}
	assert.True(t, rbac.CanAccessScreen(userAdmin, settings, rbac.ModeMenu),
		"settings shows when a child is reachable")

	shipper := &rbac.Context{
		Roles:       []string{"shipper"},
		Permissions: map[string]rbac.Scope{shared.PermOrdersShip: true},
	}
	assert.False(t, rbac.CanAccessScreen(shipper, settings, rbac.ModeMenu))
}

func TestDefaultLandingForUserAdmin(t *testing.T) {
	_, registry, err := Load()
	require.NoError(t, err)

	userAdmin := &rbac.Context{
		Roles:       []string{"manager"},
		Permissions: map[string]rbac.Scope{shared.PermUsersView: true},
	}
	// Dashboard is declared open, so it wins over the guarded users screen.
	assert.Equal(t, "/admin/dashboard", registry.FirstAccessibleScreen(userAdmin))
}
