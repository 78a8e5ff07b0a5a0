package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/enums"
)

// ManagerInvite is a pending manager grant. Accepting materializes a
// ShopManager with the invite's permission snapshot and deletes the invite;
// declining just deletes it. Unique per (user, shop).
type ManagerInvite struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uniq_manager_invite_user_shop"`
	ShopID      uuid.UUID           `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:uniq_manager_invite_user_shop"`
	SentByID    uuid.UUID           `gorm:"column:sent_by_id;type:uuid;not null"`
	Permissions enums.PermissionSet `gorm:"column:permissions;type:jsonb;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`

	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	SentBy *User `gorm:"foreignKey:SentByID;constraint:OnDelete:CASCADE"`
	Shop   *Shop `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
}

func (i *ManagerInvite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
