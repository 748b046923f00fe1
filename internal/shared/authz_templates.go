package shared

// Storefront template permissions.
const (
	PermTemplatesView = "templates.view"
	PermTemplatesEdit = "templates.edit"
)

// TemplateScopes lists all permissions related to storefront templates.
func TemplateScopes() []string {
	return []string{
		PermTemplatesView,
		PermTemplatesEdit,
	}
}
