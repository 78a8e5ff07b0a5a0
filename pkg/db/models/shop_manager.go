package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/enums"
)

// ShopManager grants a user scoped access to a shop through an explicit
// permission set. Unique per (user, shop).
type ShopManager struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uniq_shop_manager_user_shop"`
	ShopID      uuid.UUID           `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:uniq_shop_manager_user_shop"`
	Permissions enums.PermissionSet `gorm:"column:permissions;type:jsonb;not null"`
	JoinedAt    time.Time           `gorm:"column:joined_at;autoCreateTime"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (m *ShopManager) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
