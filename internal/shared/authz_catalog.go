package shared

// Product catalog permissions.
const (
	PermProductsView    = "products.view"
	PermProductsEdit    = "products.edit"
	PermProductsDelete  = "products.delete"
	PermProductsPublish = "products.publish"
)

// CatalogScopes lists all permissions related to the product catalog.
func CatalogScopes() []string {
	return []string{
		PermProductsView,
		PermProductsEdit,
		PermProductsDelete,
		PermProductsPublish,
	}
}
