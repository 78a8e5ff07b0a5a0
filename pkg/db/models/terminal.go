package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Terminal is a registered POS device for a shop. Terminals pull catalog
// snapshots (including soft-deleted variant tombstones) when they sync.
type Terminal struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ShopID     uuid.UUID  `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:uniq_terminal_shop_name"`
	Name       string     `gorm:"column:name;not null;uniqueIndex:uniq_terminal_shop_name"`
	LastSeenAt *time.Time `gorm:"column:last_seen_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (t *Terminal) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
