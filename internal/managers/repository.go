package managers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
)

// Repository persists shop managers and their invites.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetManager loads the manager record for one user in one shop.
func (r *Repository) GetManager(ctx context.Context, userID, shopID uuid.UUID) (*models.ShopManager, error) {
	var manager models.ShopManager
	err := r.db.WithContext(ctx).
		First(&manager, "user_id = ? AND shop_id = ?", userID, shopID).Error
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

// GetManagerByID loads a manager record by primary key within one shop.
func (r *Repository) GetManagerByID(ctx context.Context, shopID, managerID uuid.UUID) (*models.ShopManager, error) {
	var manager models.ShopManager
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&manager, "id = ? AND shop_id = ?", managerID, shopID).Error
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

// ListManagers returns every manager of a shop with their accounts preloaded.
func (r *Repository) ListManagers(ctx context.Context, shopID uuid.UUID) ([]models.ShopManager, error) {
	var managers []models.ShopManager
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("shop_id = ?", shopID).
		Order("joined_at ASC").
		Find(&managers).Error
	if err != nil {
		return nil, err
	}
	return managers, nil
}

// UpdatePermissions replaces the stored permission set.
func (r *Repository) UpdatePermissions(ctx context.Context, managerID uuid.UUID, perms enums.PermissionSet) error {
	return r.db.WithContext(ctx).
		Model(&models.ShopManager{}).
		Where("id = ?", managerID).
		Update("permissions", perms).Error
}

// DeleteManager removes the manager record.
func (r *Repository) DeleteManager(ctx context.Context, managerID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ShopManager{}, "id = ?", managerID).Error
}

// CreateInvite inserts a pending invite.
func (r *Repository) CreateInvite(ctx context.Context, invite *models.ManagerInvite) (*models.ManagerInvite, error) {
	if err := r.db.WithContext(ctx).Create(invite).Error; err != nil {
		return nil, err
	}
	return invite, nil
}

// GetInviteByID loads an invite by primary key.
func (r *Repository) GetInviteByID(ctx context.Context, id uuid.UUID) (*models.ManagerInvite, error) {
	var invite models.ManagerInvite
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Preload("SentBy").
		First(&invite, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// ListInvitesForShop returns the pending invites of one shop.
func (r *Repository) ListInvitesForShop(ctx context.Context, shopID uuid.UUID) ([]models.ManagerInvite, error) {
	var invites []models.ManagerInvite
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("shop_id = ?", shopID).
		Order("created_at ASC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// ListInvitesForUser returns the pending invites addressed to one user.
func (r *Repository) ListInvitesForUser(ctx context.Context, userID uuid.UUID) ([]models.ManagerInvite, error) {
	var invites []models.ManagerInvite
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Preload("SentBy").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// DeleteInvite removes a pending invite.
func (r *Repository) DeleteInvite(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ManagerInvite{}, "id = ?", id).Error
}

// AcceptInvite converts the invite into a manager record and removes it, in
// one transaction. The permission snapshot on the invite becomes the grant.
func (r *Repository) AcceptInvite(ctx context.Context, invite *models.ManagerInvite) (*models.ShopManager, error) {
	manager := &models.ShopManager{
		UserID:      invite.UserID,
		ShopID:      invite.ShopID,
		Permissions: invite.Permissions,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(manager).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ManagerInvite{}, "id = ?", invite.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manager, nil
}
