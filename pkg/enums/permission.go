package enums

import "fmt"

// Permission names one gate in the fixed manager permission vocabulary.
type Permission string

const (
	PermViewProducts   Permission = "can_view_products"
	PermEditProducts   Permission = "can_edit_products"
	PermCreateProducts Permission = "can_create_products"
	PermDeleteProducts Permission = "can_delete_products"

	PermViewSales Permission = "can_view_sales"
	PermEditSales Permission = "can_edit_sales"

	PermViewManagers   Permission = "can_view_managers"
	PermEditManagers   Permission = "can_edit_managers"
	PermCreateManagers Permission = "can_create_managers"
	PermDeleteManagers Permission = "can_delete_managers"

	PermViewDashboard Permission = "can_view_dashboard"

	PermViewShopSettings Permission = "can_view_shop_settings"
	PermEditShopSettings Permission = "can_edit_shop_settings"

	PermViewTerminals   Permission = "can_view_terminals"
	PermCreateTerminals Permission = "can_create_terminals"
	PermDeleteTerminals Permission = "can_delete_terminals"
)

var validPermissions = []Permission{
	PermViewProducts,
	PermEditProducts,
	PermCreateProducts,
	PermDeleteProducts,
	PermViewSales,
	PermEditSales,
	PermViewManagers,
	PermEditManagers,
	PermCreateManagers,
	PermDeleteManagers,
	PermViewDashboard,
	PermViewShopSettings,
	PermEditShopSettings,
	PermViewTerminals,
	PermCreateTerminals,
	PermDeleteTerminals,
}

// PermissionLabels maps each permission to its human-readable label.
var PermissionLabels = map[Permission]string{
	PermViewProducts:     "View Products",
	PermEditProducts:     "Edit Products",
	PermCreateProducts:   "Create Products",
	PermDeleteProducts:   "Delete Products",
	PermViewSales:        "View Sales",
	PermEditSales:        "Edit Sales",
	PermViewManagers:     "View Managers",
	PermEditManagers:     "Edit Managers",
	PermCreateManagers:   "Create Managers",
	PermDeleteManagers:   "Delete Managers",
	PermViewDashboard:    "View Dashboard",
	PermViewShopSettings: "View Shop Settings",
	PermEditShopSettings: "Edit Shop Settings",
	PermViewTerminals:    "View Terminals",
	PermCreateTerminals:  "Create Terminals",
	PermDeleteTerminals:  "Delete Terminals",
}

// AllPermissions returns the closed vocabulary in a stable order.
func AllPermissions() []Permission {
	out := make([]Permission, len(validPermissions))
	copy(out, validPermissions)
	return out
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Permission.
func (p Permission) IsValid() bool {
	for _, candidate := range validPermissions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePermission converts raw input into a Permission.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range validPermissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
