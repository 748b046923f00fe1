package screens

import (
	"github.com/meridianshop/meridian-admin/internal/rbac"
	"github.com/meridianshop/meridian-admin/internal/shared"
)

func intp(v int) *int { return &v }

// DefaultGroups returns the navigation groups in display order.
func DefaultGroups() []rbac.Group {
	return []rbac.Group{
		{Key: "main", Label: "Overview", Order: intp(0)},
		{Key: "catalog", Label: "Catalog", Order: intp(1)},
		{Key: "sales", Label: "Sales", Order: intp(2)},
		{Key: "content", Label: "Content", Order: intp(3)},
		{Key: "settings", Label: "Settings", Order: intp(4)},
	}
}

// DefaultScreens returns the admin screen tree. Children carry their own
// access requirements; a parent without one is only surfaced in navigation
// when something beneath it is reachable.
func DefaultScreens() []rbac.Screen {
	return []rbac.Screen{
		{
			Key:    "login",
			Group:  "main",
			Routes: []string{"/admin/login"},
			Public: true,
		},
		{
			Key:       "dashboard",
			Group:     "main",
			Routes:    []string{"/admin/dashboard"},
			AccessAny: []string{},
			Order:     intp(0),
		},
		{
			Key:       "products",
			Group:     "catalog",
			Routes:    []string{"/admin/product"},
			AccessAny: []string{shared.PermProductsView},
			Order:     intp(0),
			Actions: map[string][]string{
				"create":  {shared.PermProductsEdit},
				"update":  {shared.PermProductsEdit},
				"delete":  {shared.PermProductsDelete},
				"publish": {shared.PermProductsPublish},
			},
			Children: []rbac.Screen{
				{
					Key:       "product-detail",
					Routes:    []string{"/admin/product/:id"},
					AccessAny: []string{shared.PermProductsView},
					Order:     intp(0),
				},
			},
		},
		{
			Key:       "orders",
			Group:     "sales",
			Routes:    []string{"/admin/order"},
			AccessAny: []string{shared.PermOrdersView},
			Order:     intp(0),
			Children: []rbac.Screen{
				{
					Key:       "order-detail",
					Routes:    []string{"/admin/order/:id"},
					AccessAny: []string{shared.PermOrdersView},
					Actions: map[string][]string{
						"ship":   {shared.PermOrdersShip},
						"refund": {shared.PermOrdersRefund},
					},
				},
			},
		},
		{
			Key:       "customers",
			Group:     "sales",
			Routes:    []string{"/admin/customer"},
			AccessAny: []string{shared.PermCustomersView},
			Order:     intp(1),
		},
		{
			Key:   "templates",
			Group: "content",
			Order: intp(0),
			Children: []rbac.Screen{
				{
					Key:       "template-list",
					Routes:    []string{"/admin/templates"},
					AccessAny: []string{shared.PermTemplatesView},
					Order:     intp(0),
				},
				{
					Key:       "template-create",
					Routes:    []string{"/admin/templates/create"},
					AccessAny: []string{shared.PermTemplatesEdit},
					Order:     intp(1),
				},
			},
		},
		{
			Key:   "settings",
			Group: "settings",
			Order: intp(0),
			Children: []rbac.Screen{
				{
					Key:       "users",
					Routes:    []string{"/admin/user"},
					AccessAny: []string{shared.PermUsersView},
					Order:     intp(0),
					Actions: map[string][]string{
						"edit": {shared.PermUsersEdit},
					},
				},
				{
					Key:       "roles",
					Routes:    []string{"/admin/role"},
					AccessAny: []string{shared.PermRolesView},
					Order:     intp(1),
					Actions: map[string][]string{
						"edit": {shared.PermRolesEdit},
					},
				},
				{
					Key:       "permissions",
					Routes:    []string{"/admin/permission"},
					AccessAny: []string{shared.PermPermissionsView},
					Order:     intp(2),
				},
			},
		},
	}
}

// Load validates the default catalog and screen tree and builds the
// immutable registry index. Any misconfiguration fails startup with every
// violation listed.
func Load() (*rbac.Catalog, *rbac.Registry, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, nil, err
	}
	registry, err := rbac.NewRegistry(catalog, DefaultGroups(), DefaultScreens())
	if err != nil {
		return nil, nil, err
	}
	return catalog, registry, nil
}
