package shops

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
)

// Repository persists shops.
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

// Create inserts the shop row.
func (r *Repository) Create(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	if err := r.db.WithContext(ctx).Create(shop).Error; err != nil {
		return nil, err
	}
	return shop, nil
}

// CreateWithDefaultCategory inserts the shop and its guaranteed default
// category in one transaction.
func (r *Repository) CreateWithDefaultCategory(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shop).Error; err != nil {
			return err
		}
		category := models.Category{
			ShopID: shop.ID,
			Name:   models.DefaultCategoryName,
			Color:  enums.CategoryColorBlue,
		}
		return tx.Where("shop_id = ? AND name = ?", shop.ID, models.DefaultCategoryName).
			FirstOrCreate(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return shop, nil
}

// FindBySlug loads a shop by its slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindByID loads a shop by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// SlugTaken reports whether any shop already uses the slug.
func (r *Repository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Shop{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update saves the mutable shop fields.
func (r *Repository) Update(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	if err := r.db.WithContext(ctx).Save(shop).Error; err != nil {
		return nil, err
	}
	return shop, nil
}

// Delete removes the shop row; dependent rows cascade in the schema.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Shop{}, "id = ?", id).Error
}

// ListOwnedBy returns every shop the user owns, newest first.
func (r *Repository) ListOwnedBy(ctx context.Context, userID uuid.UUID) ([]models.Shop, error) {
	var shops []models.Shop
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&shops).Error
	if err != nil {
		return nil, err
	}
	return shops, nil
}

// ListManagedBy returns every shop the user manages through a manager record.
func (r *Repository) ListManagedBy(ctx context.Context, userID uuid.UUID) ([]models.Shop, error) {
	var shops []models.Shop
	err := r.db.WithContext(ctx).
		Joins("JOIN shop_managers ON shop_managers.shop_id = shops.id").
		Where("shop_managers.user_id = ?", userID).
		Order("shops.created_at DESC").
		Find(&shops).Error
	if err != nil {
		return nil, err
	}
	return shops, nil
}
