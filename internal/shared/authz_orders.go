package shared

// Order and customer management permissions.
const (
	PermOrdersView    = "orders.view"
	PermOrdersEdit    = "orders.edit"
	PermOrdersShip    = "orders.ship"
	PermOrdersRefund  = "orders.refund"
	PermCustomersView = "customers.view"
)

// OrderScopes lists all permissions related to order and customer management.
func OrderScopes() []string {
	return []string{
		PermOrdersView,
		PermOrdersEdit,
		PermOrdersShip,
		PermOrdersRefund,
		PermCustomersView,
	}
}
