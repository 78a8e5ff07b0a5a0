package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale aggregates its line items. The three totals are recomputed inside the
// same transaction as every line-item write, so they are never stale relative
// to the items after a write returns.
type Sale struct {
	ID                     uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ShopID                 uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index"`
	AddedBy                string          `gorm:"column:added_by"`
	TotalAmount            decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null;default:0"`
	TotalAfterShopDiscount decimal.Decimal `gorm:"column:total_after_shop_discount;type:numeric(10,2);not null;default:0"`
	TotalAfterShopTax      decimal.Decimal `gorm:"column:total_after_shop_tax;type:numeric(10,2);not null;default:0"`

	Items []SaleProduct `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleProduct is one line item: a variant, a quantity, and the unit price at
// sale time. SubTotal is derived as quantity × unit_price.
type SaleProduct struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID           uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductVariantID uuid.UUID       `gorm:"column:product_variant_id;type:uuid;not null;index"`
	Quantity         int             `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	SubTotal         decimal.Decimal `gorm:"column:sub_total;type:numeric(10,2);not null;default:0"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (p *SaleProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
