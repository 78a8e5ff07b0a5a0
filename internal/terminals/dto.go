package terminals

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/types"
)

// TerminalDTO is the public shape of a registered terminal.
type TerminalDTO struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// SyncVariantDTO is one catalog row in a sync snapshot. Deleted variants are
// included with is_deleted set so the terminal can drop them locally.
type SyncVariantDTO struct {
	ID                 uuid.UUID `json:"id"`
	ProductID          uuid.UUID `json:"product_id"`
	Name               string    `json:"name,omitempty"`
	SKU                string    `json:"sku"`
	Barcode            string    `json:"barcode"`
	Price              string    `json:"price"`
	PriceAfterDiscount string    `json:"price_after_discount"`
	StockQuantity      int       `json:"stock_quantity"`
	IsDeleted          bool      `json:"is_deleted"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SyncDTO is the full sync response for one terminal.
type SyncDTO struct {
	Terminal TerminalDTO      `json:"terminal"`
	SyncedAt time.Time        `json:"synced_at"`
	Variants []SyncVariantDTO `json:"variants"`
}

func terminalToDTO(terminal *models.Terminal) TerminalDTO {
	return TerminalDTO{
		ID:         terminal.ID,
		Name:       terminal.Name,
		LastSeenAt: terminal.LastSeenAt,
		CreatedAt:  terminal.CreatedAt,
	}
}

func syncVariantToDTO(variant *models.ProductVariant) SyncVariantDTO {
	return SyncVariantDTO{
		ID:                 variant.ID,
		ProductID:          variant.ProductID,
		Name:               variant.Name,
		SKU:                variant.SKU,
		Barcode:            variant.Barcode,
		Price:              types.DisplayAmount(variant.Price),
		PriceAfterDiscount: types.DisplayAmount(variant.PriceAfterDiscount),
		StockQuantity:      variant.StockQuantity,
		IsDeleted:          variant.IsDeleted,
		UpdatedAt:          variant.UpdatedAt,
	}
}
