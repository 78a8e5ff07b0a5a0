package terminals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
)

// Repository persists registered POS terminals.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a terminal row.
func (r *Repository) Create(ctx context.Context, terminal *models.Terminal) (*models.Terminal, error) {
	if err := r.db.WithContext(ctx).Create(terminal).Error; err != nil {
		return nil, err
	}
	return terminal, nil
}

// Get loads one terminal scoped to a shop.
func (r *Repository) Get(ctx context.Context, shopID, terminalID uuid.UUID) (*models.Terminal, error) {
	var terminal models.Terminal
	err := r.db.WithContext(ctx).
		First(&terminal, "id = ? AND shop_id = ?", terminalID, shopID).Error
	if err != nil {
		return nil, err
	}
	return &terminal, nil
}

// List returns the shop's terminals ordered by name.
func (r *Repository) List(ctx context.Context, shopID uuid.UUID) ([]models.Terminal, error) {
	var rows []models.Terminal
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes a terminal.
func (r *Repository) Delete(ctx context.Context, shopID, terminalID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", terminalID, shopID).
		Delete(&models.Terminal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TouchLastSeen records that the terminal just synced.
func (r *Repository) TouchLastSeen(ctx context.Context, terminalID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Terminal{}).
		Where("id = ?", terminalID).
		Update("last_seen_at", at).Error
}
