package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductVariant is the concrete purchasable unit: its own barcode, SKU,
// price, and stock. PriceAfterDiscount is derived on every save and never
// accepted from callers. Soft delete keeps rows referenced by historical
// sales and lets offline terminals pick up the tombstone on sync.
type ProductVariant struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Name               string          `gorm:"column:name"`
	SKU                string          `gorm:"column:sku;not null"`
	Barcode            string          `gorm:"column:barcode;not null"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity      int             `gorm:"column:stock_quantity;not null"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null;default:0"`
	PriceAfterDiscount decimal.Decimal `gorm:"column:price_after_discount;type:numeric(10,2);not null;default:0"`
	ReorderPoint       *int            `gorm:"column:reorder_point"`

	IsDeleted           bool       `gorm:"column:is_deleted;not null;default:false"`
	MarkedForDeletionAt *time.Time `gorm:"column:marked_for_deletion_at"`

	AttributeValues []ProductVariantAttributeValue `gorm:"foreignKey:ProductVariantID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
