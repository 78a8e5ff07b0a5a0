package shops

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	"github.com/omarashraf/kasher-backend/pkg/types"
)

// ShopDTO is the public shape of a shop.
type ShopDTO struct {
	ID                 uuid.UUID      `json:"id"`
	Name               string         `json:"name"`
	Slug               string         `json:"slug"`
	OwnerID            uuid.UUID      `json:"owner_id"`
	DiscountPercentage string         `json:"discount_percentage"`
	TaxPercentage      string         `json:"tax_percentage"`
	CurrencyCode       string         `json:"currency_code"`
	Role               enums.ShopRole `json:"role,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// ToDTO maps a shop row to its public shape.
func ToDTO(shop *models.Shop, role enums.ShopRole) ShopDTO {
	return ShopDTO{
		ID:                 shop.ID,
		Name:               shop.Name,
		Slug:               shop.Slug,
		OwnerID:            shop.OwnerID,
		DiscountPercentage: types.DisplayAmount(shop.DiscountPercentage),
		TaxPercentage:      types.DisplayAmount(shop.TaxPercentage),
		CurrencyCode:       shop.CurrencyCode,
		Role:               role,
		CreatedAt:          shop.CreatedAt,
	}
}
