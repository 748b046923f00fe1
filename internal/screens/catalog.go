// Package screens declares the admin navigation registry: the permission
// catalog, the navigation groups and the screen tree consumed by the access
// resolver. The registry is authored in code and validated at startup.
package screens

import (
	"github.com/meridianshop/meridian-admin/internal/rbac"
	"github.com/meridianshop/meridian-admin/internal/shared"
)

// DefaultPermissions returns the canonical permission catalog for the store
// back-office. Every key referenced by roles, screens or actions must be
// listed here.
func DefaultPermissions() []rbac.Permission {
	return []rbac.Permission{
		{Key: shared.PermUsersView, Group: "core", Label: "View users", Order: 1, IsActive: true},
		{Key: shared.PermUsersEdit, Group: "core", Label: "Manage users", Order: 2, IsActive: true},
		{Key: shared.PermRolesView, Group: "core", Label: "View roles", Order: 3, IsActive: true},
		{Key: shared.PermRolesEdit, Group: "core", Label: "Manage roles", Order: 4, IsActive: true},
		{Key: shared.PermPermissionsView, Group: "core", Label: "View permissions", Order: 5, IsActive: true},

		{Key: shared.PermProductsView, Group: "catalog", Label: "View products", Order: 1, IsActive: true},
		{Key: shared.PermProductsEdit, Group: "catalog", Label: "Manage products", Order: 2, IsActive: true},
		{Key: shared.PermProductsDelete, Group: "catalog", Label: "Delete products", Order: 3, IsActive: true},
		{Key: shared.PermProductsPublish, Group: "catalog", Label: "Publish products", Order: 4, IsActive: true},

		{Key: shared.PermOrdersView, Group: "orders", Label: "View orders", Order: 1, IsActive: true},
		{Key: shared.PermOrdersEdit, Group: "orders", Label: "Manage orders", Order: 2, IsActive: true},
		{Key: shared.PermOrdersShip, Group: "orders", Label: "Ship orders", Order: 3, IsActive: true},
		{Key: shared.PermOrdersRefund, Group: "orders", Label: "Refund orders", Order: 4, IsActive: true},
		{Key: shared.PermCustomersView, Group: "orders", Label: "View customers", Order: 5, IsActive: true},

		{Key: shared.PermTemplatesView, Group: "content", Label: "View templates", Order: 1, IsActive: true},
		{Key: shared.PermTemplatesEdit, Group: "content", Label: "Manage templates", Order: 2, IsActive: true},
	}
}

// DefaultCatalog builds the validated catalog from DefaultPermissions.
func DefaultCatalog() (*rbac.Catalog, error) {
	return rbac.NewCatalog(DefaultPermissions())
}
