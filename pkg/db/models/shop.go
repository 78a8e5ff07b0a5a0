package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shop is the tenant root. Categories, products, and sales all hang off it
// and are removed with it.
type Shop struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	OwnerID            uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	Slug               string          `gorm:"column:slug;not null;uniqueIndex"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(4,2);not null;default:0"`
	TaxPercentage      decimal.Decimal `gorm:"column:tax_percentage;type:numeric(4,2);not null;default:0"`
	CurrencyCode       string          `gorm:"column:currency_code;not null"`

	Categories []Category `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	Products   []Product  `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
	Sales      []Sale     `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
