package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
)

// Repository persists categories, products, variants, and attributes.
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

// --- categories ---

// EnsureDefaultCategory returns the shop's default category, creating it when
// missing. Safe to call repeatedly.
func (r *Repository) EnsureDefaultCategory(ctx context.Context, shopID uuid.UUID) (*models.Category, error) {
	category := models.Category{
		ShopID: shopID,
		Name:   models.DefaultCategoryName,
		Color:  enums.CategoryColorBlue,
	}
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND name = ?", shopID, models.DefaultCategoryName).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts a category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory loads a category scoped to one shop.
func (r *Repository) GetCategory(ctx context.Context, shopID, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		First(&category, "id = ? AND shop_id = ?", categoryID, shopID).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns the shop's categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context, shopID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateCategory saves the category row.
func (r *Repository) UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategoryReassign moves the category's products to the fallback
// category and deletes it, in one transaction.
func (r *Repository) DeleteCategoryReassign(ctx context.Context, categoryID, fallbackID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Product{}).
			Where("category_id = ?", categoryID).
			Update("category_id", fallbackID).Error
		if err != nil {
			return err
		}
		result := tx.Delete(&models.Category{}, "id = ?", categoryID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// --- products ---

// CreateProductWithVariants inserts the product and its variants together.
func (r *Repository) CreateProductWithVariants(ctx context.Context, product *models.Product, variants []models.ProductVariant) (*models.Product, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		for i := range variants {
			variants[i].ProductID = product.ID
		}
		if len(variants) > 0 {
			if err := tx.Create(&variants).Error; err != nil {
				return err
			}
		}
		product.Variants = variants
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct loads a product with category and live variants.
func (r *Repository) GetProduct(ctx context.Context, shopID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Variants", "is_deleted = ?", false).
		First(&product, "id = ? AND shop_id = ?", productID, shopID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns the shop's products with live variants, newest first.
func (r *Repository) ListProducts(ctx context.Context, shopID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Variants", "is_deleted = ?", false).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct saves the product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes the product row; variants cascade in the schema.
func (r *Repository) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", productID).Error
}

// --- variants ---

// GetVariant loads a variant scoped to one shop through its product.
func (r *Repository) GetVariant(ctx context.Context, shopID, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("product_variants.id = ? AND products.shop_id = ?", variantID, shopID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// CreateVariant inserts a variant row.
func (r *Repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// UpdateVariant saves the variant row.
func (r *Repository) UpdateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Save(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

// SoftDeleteVariant tombstones the variant so offline terminals can pick up
// the deletion on their next sync.
func (r *Repository) SoftDeleteVariant(ctx context.Context, variantID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Updates(map[string]any{
			"is_deleted":             true,
			"marked_for_deletion_at": at,
		}).Error
}

// BarcodeTaken reports whether another variant in the shop uses the barcode.
func (r *Repository) BarcodeTaken(ctx context.Context, shopID uuid.UUID, barcode string, excludeID uuid.UUID) (bool, error) {
	return r.variantFieldTaken(ctx, shopID, "product_variants.barcode = ?", barcode, excludeID)
}

// SKUTaken reports whether another variant in the shop uses the SKU.
func (r *Repository) SKUTaken(ctx context.Context, shopID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error) {
	return r.variantFieldTaken(ctx, shopID, "product_variants.sku = ?", sku, excludeID)
}

func (r *Repository) variantFieldTaken(ctx context.Context, shopID uuid.UUID, condition string, value string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("products.shop_id = ?", shopID).
		Where(condition, value)
	if excludeID != uuid.Nil {
		query = query.Where("product_variants.id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListVariantsForSync returns every variant of the shop including tombstones.
func (r *Repository) ListVariantsForSync(ctx context.Context, shopID uuid.UUID, since *time.Time) ([]models.ProductVariant, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("products.shop_id = ?", shopID)
	if since != nil {
		query = query.Where("product_variants.updated_at > ?", *since)
	}
	var variants []models.ProductVariant
	if err := query.Order("product_variants.updated_at ASC").Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// --- attributes ---

// CreateAttribute inserts an attribute row.
func (r *Repository) CreateAttribute(ctx context.Context, attribute *models.ProductAttribute) (*models.ProductAttribute, error) {
	if err := r.db.WithContext(ctx).Create(attribute).Error; err != nil {
		return nil, err
	}
	return attribute, nil
}

// ListAttributes returns the shop's attributes with their values.
func (r *Repository) ListAttributes(ctx context.Context, shopID uuid.UUID) ([]models.ProductAttribute, error) {
	var attributes []models.ProductAttribute
	err := r.db.WithContext(ctx).
		Preload("Values").
		Where("shop_id = ?", shopID).
		Order("name ASC").
		Find(&attributes).Error
	if err != nil {
		return nil, err
	}
	return attributes, nil
}

// GetAttribute loads an attribute scoped to one shop.
func (r *Repository) GetAttribute(ctx context.Context, shopID, attributeID uuid.UUID) (*models.ProductAttribute, error) {
	var attribute models.ProductAttribute
	err := r.db.WithContext(ctx).
		Preload("Values").
		First(&attribute, "id = ? AND shop_id = ?", attributeID, shopID).Error
	if err != nil {
		return nil, err
	}
	return &attribute, nil
}

// DeleteAttribute removes the attribute; its values cascade in the schema.
func (r *Repository) DeleteAttribute(ctx context.Context, attributeID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ProductAttribute{}, "id = ?", attributeID).Error
}

// CreateAttributeValue inserts a value row.
func (r *Repository) CreateAttributeValue(ctx context.Context, value *models.ProductAttributeValue) (*models.ProductAttributeValue, error) {
	if err := r.db.WithContext(ctx).Create(value).Error; err != nil {
		return nil, err
	}
	return value, nil
}

// GetAttributeValue loads a value scoped to one shop through its attribute.
func (r *Repository) GetAttributeValue(ctx context.Context, shopID, valueID uuid.UUID) (*models.ProductAttributeValue, error) {
	var value models.ProductAttributeValue
	err := r.db.WithContext(ctx).
		Joins("JOIN product_attributes ON product_attributes.id = product_attribute_values.attribute_id").
		Where("product_attribute_values.id = ? AND product_attributes.shop_id = ?", valueID, shopID).
		First(&value).Error
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// AttributeValueInUse reports whether any variant still references the value.
func (r *Repository) AttributeValueInUse(ctx context.Context, valueID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductVariantAttributeValue{}).
		Where("attribute_value_id = ?", valueID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteAttributeValue removes the value row. The schema protects values
// still referenced by a variant.
func (r *Repository) DeleteAttributeValue(ctx context.Context, valueID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ProductAttributeValue{}, "id = ?", valueID).Error
}

// AssignAttributeValue links a variant to an attribute value.
func (r *Repository) AssignAttributeValue(ctx context.Context, link *models.ProductVariantAttributeValue) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// UnassignAttributeValue removes the variant↔value link.
func (r *Repository) UnassignAttributeValue(ctx context.Context, variantID, valueID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ProductVariantAttributeValue{},
			"product_variant_id = ? AND attribute_value_id = ?", variantID, valueID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
