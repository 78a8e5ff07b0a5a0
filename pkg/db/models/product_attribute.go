package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductAttribute is a typed axis such as Color or Size, scoped to a shop.
type ProductAttribute struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ShopID uuid.UUID `gorm:"column:shop_id;type:uuid;not null;index"`
	Name   string    `gorm:"column:name;not null"`

	Values []ProductAttributeValue `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
}

func (a *ProductAttribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ProductAttributeValue is one concrete value of an attribute, e.g. Red.
type ProductAttributeValue struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AttributeID uuid.UUID `gorm:"column:attribute_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
}

func (v *ProductAttributeValue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// ProductVariantAttributeValue links a variant to an attribute value.
// Unique per (variant, value). The value side is protected: a value still
// referenced by a variant cannot be deleted.
type ProductVariantAttributeValue struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductVariantID uuid.UUID `gorm:"column:product_variant_id;type:uuid;not null;uniqueIndex:uniq_variant_attribute_value"`
	AttributeValueID uuid.UUID `gorm:"column:attribute_value_id;type:uuid;not null;uniqueIndex:uniq_variant_attribute_value"`

	AttributeValue *ProductAttributeValue `gorm:"foreignKey:AttributeValueID;constraint:OnDelete:RESTRICT"`
}

func (l *ProductVariantAttributeValue) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
