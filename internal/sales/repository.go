package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/pagination"
)

// Repository persists sales and their line items. Every line-item write runs
// the total recompute inside the same transaction, so a sale's aggregates are
// consistent with its items the moment the write returns.
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

// CreateSaleWithItems inserts the sale and its initial line items and
// computes the totals, all in one transaction.
func (r *Repository) CreateSaleWithItems(ctx context.Context, shop *models.Shop, sale *models.Sale, items []models.SaleProduct) (*models.Sale, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].SaleID = sale.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return recomputeTotals(tx, shop, sale.ID)
	})
	if err != nil {
		return nil, err
	}
	return r.GetSale(ctx, shop.ID, sale.ID)
}

// GetSale loads a sale with its line items, scoped to one shop.
func (r *Repository) GetSale(ctx context.Context, shopID, saleID uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ? AND shop_id = ?", saleID, shopID).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListSales returns one page of the shop's sales, newest first. The caller
// passes a limit that already includes the next-page probe row.
func (r *Repository) ListSales(ctx context.Context, shopID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Sale, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("shop_id = ?", shopID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Sale
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteSale removes a sale; its line items go with it.
func (r *Repository) DeleteSale(ctx context.Context, shopID, saleID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", saleID, shopID).
		Delete(&models.Sale{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetItem loads one line item of a sale.
func (r *Repository) GetItem(ctx context.Context, saleID, itemID uuid.UUID) (*models.SaleProduct, error) {
	var item models.SaleProduct
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND sale_id = ?", itemID, saleID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddItemRecompute appends a line item and recomputes the sale totals in the
// same transaction.
func (r *Repository) AddItemRecompute(ctx context.Context, shop *models.Shop, item *models.SaleProduct) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return recomputeTotals(tx, shop, item.SaleID)
	})
}

// UpdateItemRecompute saves a line item and recomputes the sale totals in the
// same transaction.
func (r *Repository) UpdateItemRecompute(ctx context.Context, shop *models.Shop, item *models.SaleProduct) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		return recomputeTotals(tx, shop, item.SaleID)
	})
}

// RemoveItemRecompute deletes a line item and recomputes the sale totals in
// the same transaction.
func (r *Repository) RemoveItemRecompute(ctx context.Context, shop *models.Shop, saleID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND sale_id = ?", itemID, saleID).Delete(&models.SaleProduct{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return recomputeTotals(tx, shop, saleID)
	})
}

// recomputeTotals re-reads the sale's line items inside the writing
// transaction and persists the three aggregates. Cross-transaction races
// settle last-writer-wins.
func recomputeTotals(tx *gorm.DB, shop *models.Shop, saleID uuid.UUID) error {
	var items []models.SaleProduct
	if err := tx.Where("sale_id = ?", saleID).Find(&items).Error; err != nil {
		return err
	}
	total, afterDiscount, afterTax := SaleTotals(items, shop.DiscountPercentage, shop.TaxPercentage)
	return tx.Model(&models.Sale{}).
		Where("id = ?", saleID).
		Updates(map[string]interface{}{
			"total_amount":              total,
			"total_after_shop_discount": afterDiscount,
			"total_after_shop_tax":      afterTax,
		}).Error
}

type totalsRow struct {
	Quantity int64
	Revenue  decimal.Decimal
}

// VariantTotals sums quantity and revenue for one variant since the given
// time. A nil since means all time. Empty windows come back as zeros.
func (r *Repository) VariantTotals(ctx context.Context, shopID, variantID uuid.UUID, since *time.Time) (int64, decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SaleProduct{}).
		Select("COALESCE(SUM(sale_products.quantity), 0) AS quantity, COALESCE(SUM(sale_products.sub_total), 0) AS revenue").
		Joins("JOIN sales ON sales.id = sale_products.sale_id").
		Where("sales.shop_id = ? AND sale_products.product_variant_id = ?", shopID, variantID)
	if since != nil {
		query = query.Where("sale_products.created_at >= ?", *since)
	}

	var row totalsRow
	if err := query.Scan(&row).Error; err != nil {
		return 0, decimal.Zero, err
	}
	return row.Quantity, row.Revenue, nil
}

// ProductTotals sums quantity and revenue across all variants of a product
// since the given time. A nil since means all time.
func (r *Repository) ProductTotals(ctx context.Context, shopID, productID uuid.UUID, since *time.Time) (int64, decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SaleProduct{}).
		Select("COALESCE(SUM(sale_products.quantity), 0) AS quantity, COALESCE(SUM(sale_products.sub_total), 0) AS revenue").
		Joins("JOIN sales ON sales.id = sale_products.sale_id").
		Joins("JOIN product_variants ON product_variants.id = sale_products.product_variant_id").
		Where("sales.shop_id = ? AND product_variants.product_id = ?", shopID, productID)
	if since != nil {
		query = query.Where("sale_products.created_at >= ?", *since)
	}

	var row totalsRow
	if err := query.Scan(&row).Error; err != nil {
		return 0, decimal.Zero, err
	}
	return row.Quantity, row.Revenue, nil
}

// RevenueSince sums the shop's taxed sale totals since the given time. A nil
// since means all time.
func (r *Repository) RevenueSince(ctx context.Context, shopID uuid.UUID, since *time.Time) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COALESCE(SUM(total_after_shop_tax), 0) AS revenue").
		Where("shop_id = ?", shopID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	var row totalsRow
	if err := query.Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Revenue, nil
}
