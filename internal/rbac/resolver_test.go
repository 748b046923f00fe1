package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := NewCatalog([]Permission{
		{Key: "products.view", Group: "catalog", Label: "View products", Order: 0, IsActive: true},
		{Key: "products.edit", Group: "catalog", Label: "Edit products", Order: 1, IsActive: true},
		{Key: "products.delete", Group: "catalog", Label: "Delete products", Order: 2, IsActive: true},
		{Key: "orders.view", Group: "orders", Label: "View orders", Order: 0, IsActive: true},
		{Key: "orders.ship", Group: "orders", Label: "Ship orders", Order: 1, IsActive: true},
		{Key: "templates.edit", Group: "content", Label: "Edit templates", Order: 0, IsActive: true},
		{Key: "users.view", Group: "core", Label: "View users", Order: 0, IsActive: true},
	})
	require.NoError(t, err)
	return catalog
}

func intp(v int) *int { return &v }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	groups := []Group{
		{Key: "main", Label: "Main", Order: intp(0)},
		{Key: "catalog", Label: "Catalog", Order: intp(1)},
		{Key: "content", Label: "Content", Order: intp(2)},
		{Key: "settings", Label: "Settings", Order: intp(3)},
	}
	screens := []Screen{
		{Key: "login", Group: "main", Routes: []string{"/admin/login"}, Public: true},
		{
			Key:    "dashboard",
			Group:  "main",
			Routes: []string{"/admin/dashboard"},
			// Declared open: visible to any authenticated identity.
			AccessAny: []string{},
			Order:     intp(0),
		},
		{
			Key:       "products",
			Group:     "catalog",
			Routes:    []string{"/admin/product"},
			AccessAny: []string{"products.view"},
			Actions: map[string][]string{
				"delete": {"products.delete"},
			},
			Order: intp(0),
			Children: []Screen{
				{
					Key:       "product-detail",
					Routes:    []string{"/admin/product/:id"},
					AccessAny: []string{"products.view"},
					Actions: map[string][]string{
						"update": {"products.edit"},
					},
				},
			},
		},
		{
			Key:   "templates",
			Group: "content",
			Order: intp(0),
			Children: []Screen{
				{Key: "template-list", Routes: []string{"/admin/templates"}, AccessAny: []string{"templates.edit"}},
				{Key: "template-create", Routes: []string{"/admin/templates/create"}, AccessAny: []string{"templates.edit"}},
			},
		},
		{
			Key:   "settings",
			Group: "settings",
			Order: intp(0),
			Children: []Screen{
				{Key: "users", Routes: []string{"/admin/user"}, AccessAny: []string{"users.view"}},
			},
		},
	}
	registry, err := NewRegistry(testCatalog(t), groups, screens)
	require.NoError(t, err)
	return registry
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/admin/product/":        "/admin/product",
		"/admin/product?page=2":  "/admin/product",
		"/admin/product#anchor":  "/admin/product",
		"/admin/product//":       "/admin/product",
		"/":                      "/",
		"":                       "/",
		"/admin/product/5?tab=1": "/admin/product/5",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePath(in), "input %q", in)
	}
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, MatchPattern("/admin/product", "/admin/product"))
	assert.True(t, MatchPattern("/admin/product", "/admin/product/"))
	assert.True(t, MatchPattern("/admin/product/:id", "/admin/product/42"))
	assert.True(t, MatchPattern("/admin/product", "/admin/product/42/reviews"), "prefix bounded")
	assert.False(t, MatchPattern("/admin/product/:id", "/admin/product"))
	assert.False(t, MatchPattern("/admin/order", "/admin/product"))
	assert.False(t, MatchPattern("/admin/product", "/admin/products"))
}

func TestFindScreenByPathPrefersParamRoute(t *testing.T) {
	registry := testRegistry(t)

	list := registry.FindScreenByPath("/admin/product")
	require.NotNil(t, list)
	assert.Equal(t, "products", list.Key)

	detail := registry.FindScreenByPath("/admin/product/42")
	require.NotNil(t, detail)
	assert.Equal(t, "product-detail", detail.Key)
}

func TestFindScreenByPathPrefersDeepestChild(t *testing.T) {
	registry := testRegistry(t)

	create := registry.FindScreenByPath("/admin/templates/create")
	require.NotNil(t, create)
	assert.Equal(t, "template-create", create.Key)

	list := registry.FindScreenByPath("/admin/templates")
	require.NotNil(t, list)
	assert.Equal(t, "template-list", list.Key)
}

func TestFindScreenByPathUnknown(t *testing.T) {
	registry := testRegistry(t)
	assert.Nil(t, registry.FindScreenByPath("/admin/unknown"))
}

func TestCanAccessScreenRouteMode(t *testing.T) {
	registry := testRegistry(t)
	authz := &Context{
		Roles:       []string{"staff"},
		Permissions: map[string]Scope{"products.view": true},
	}

	products, ok := registry.Lookup("products")
	require.True(t, ok)
	assert.True(t, CanAccessScreen(authz, products, ModeRoute))

	users, ok := registry.Lookup("users")
	require.True(t, ok)
	assert.False(t, CanAccessScreen(authz, users, ModeRoute))

	login, ok := registry.Lookup("login")
	require.True(t, ok)
	assert.True(t, CanAccessScreen(nil, login, ModeRoute), "public screens pass any context")

	dashboard, ok := registry.Lookup("dashboard")
	require.True(t, ok)
	assert.True(t, CanAccessScreen(authz, dashboard, ModeRoute), "declared-open screen passes")
}

func TestCanAccessScreenMenuModeRecursesOverChildren(t *testing.T) {
	registry := testRegistry(t)

	templates, ok := registry.Lookup("templates")
	require.True(t, ok)

	editor := &Context{
		Roles:       []string{"staff"},
		Permissions: map[string]Scope{"templates.edit": true},
	}
	assert.True(t, CanAccessScreen(editor, templates, ModeMenu))

	stranger := &Context{
		Roles:       []string{"staff"},
		Permissions: map[string]Scope{"orders.view": true},
	}
	assert.False(t, CanAccessScreen(stranger, templates, ModeMenu))

	// In route mode the undeclared parent stays open: children never gate it.
	assert.True(t, CanAccessScreen(stranger, templates, ModeRoute))
}

func TestCanAccessScreenMenuModeChildlessUndeclared(t *testing.T) {
	registry, err := NewRegistry(testCatalog(t), nil, []Screen{
		{Key: "orphan", Group: "main", Routes: []string{"/admin/orphan"}},
	})
	require.NoError(t, err)

	orphan, ok := registry.Lookup("orphan")
	require.True(t, ok)

	authz := &Context{Roles: []string{"staff"}, Permissions: map[string]Scope{"orders.view": true}}
	assert.False(t, CanAccessScreen(authz, orphan, ModeMenu))
	assert.True(t, CanAccessScreen(authz, orphan, ModeRoute))
}

func TestCanAccessAction(t *testing.T) {
	registry := testRegistry(t)

	products, ok := registry.Lookup("products")
	require.True(t, ok)

	deleter := &Context{
		Roles:       []string{"manager"},
		Permissions: map[string]Scope{"products.view": true, "products.delete": true},
	}
	viewer := &Context{
		Roles:       []string{"staff"},
		Permissions: map[string]Scope{"products.view": true},
	}

	assert.True(t, CanAccessAction(deleter, products, "delete"))
	assert.False(t, CanAccessAction(viewer, products, "delete"))
	assert.False(t, CanAccessAction(deleter, products, "unknown-action"), "undeclared actions deny")
	assert.False(t, CanAccessAction(deleter, nil, "delete"))
}

func TestFirstAccessibleScreen(t *testing.T) {
	registry := testRegistry(t)

	viewer := &Context{
		Roles:       []string{"staff"},
		Permissions: map[string]Scope{"products.view": true},
	}
	// Dashboard is declared open and sits in the first group.
	assert.Equal(t, "/admin/dashboard", registry.FirstAccessibleScreen(viewer))

	// Null safety: an anonymous context must not panic. The declared-open
	// dashboard admits it in route mode, so it is still the landing pick.
	assert.Equal(t, "/admin/dashboard", registry.FirstAccessibleScreen(nil))
}

func TestFirstAccessibleScreenHonoursGroupOrder(t *testing.T) {
	catalog := testCatalog(t)
	groups := []Group{
		{Key: "second", Label: "Second", Order: intp(1)},
		{Key: "first", Label: "First", Order: intp(0)},
	}
	screens := []Screen{
		{Key: "later", Group: "second", Routes: []string{"/admin/later"}, AccessAny: []string{"orders.view"}},
		{Key: "earlier", Group: "first", Routes: []string{"/admin/earlier"}, AccessAny: []string{"orders.view"}},
	}
	registry, err := NewRegistry(catalog, groups, screens)
	require.NoError(t, err)

	authz := &Context{Roles: []string{"staff"}, Permissions: map[string]Scope{"orders.view": true}}
	assert.Equal(t, "/admin/earlier", registry.FirstAccessibleScreen(authz))
}

func TestFirstAccessibleScreenNothingReachable(t *testing.T) {
	catalog := testCatalog(t)
	registry, err := NewRegistry(catalog, nil, []Screen{
		{Key: "guarded", Group: "main", Routes: []string{"/admin/guarded"}, AccessAny: []string{"users.view"}},
	})
	require.NoError(t, err)

	authz := &Context{Roles: []string{"staff"}, Permissions: map[string]Scope{"orders.view": true}}
	assert.Equal(t, "", registry.FirstAccessibleScreen(authz))
}
