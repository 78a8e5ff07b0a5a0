package enums

// ShopRole describes how a user relates to a shop.
type ShopRole string

const (
	ShopRoleOwner   ShopRole = "owner"
	ShopRoleManager ShopRole = "manager"
)

func (r ShopRole) String() string {
	return string(r)
}

func (r ShopRole) IsValid() bool {
	switch r {
	case ShopRoleOwner, ShopRoleManager:
		return true
	}
	return false
}
