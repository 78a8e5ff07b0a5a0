package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/enums"
)

// DefaultCategoryName is guaranteed to exist for every shop and receives
// products saved without a category.
const DefaultCategoryName = "Uncategorized"

// Category groups products inside one shop. Unique per (shop, name).
type Category struct {
	ID     uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ShopID uuid.UUID           `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:uniq_category_shop_name"`
	Name   string              `gorm:"column:name;not null;uniqueIndex:uniq_category_shop_name"`
	Color  enums.CategoryColor `gorm:"column:color;not null;default:'blue'"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
