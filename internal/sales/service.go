// Package sales keeps a shop's sales ledger. Line-item writes recompute the
// sale aggregates synchronously, and the same data feeds the windowed
// analytics queries.
package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
	"github.com/omarashraf/kasher-backend/pkg/pagination"
	"github.com/omarashraf/kasher-backend/pkg/types"
)

type saleStore interface {
	CreateSaleWithItems(ctx context.Context, shop *models.Shop, sale *models.Sale, items []models.SaleProduct) (*models.Sale, error)
	GetSale(ctx context.Context, shopID, saleID uuid.UUID) (*models.Sale, error)
	ListSales(ctx context.Context, shopID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Sale, error)
	DeleteSale(ctx context.Context, shopID, saleID uuid.UUID) error
	GetItem(ctx context.Context, saleID, itemID uuid.UUID) (*models.SaleProduct, error)
	AddItemRecompute(ctx context.Context, shop *models.Shop, item *models.SaleProduct) error
	UpdateItemRecompute(ctx context.Context, shop *models.Shop, item *models.SaleProduct) error
	RemoveItemRecompute(ctx context.Context, shop *models.Shop, saleID, itemID uuid.UUID) error
}

type statsStore interface {
	VariantTotals(ctx context.Context, shopID, variantID uuid.UUID, since *time.Time) (int64, decimal.Decimal, error)
	ProductTotals(ctx context.Context, shopID, productID uuid.UUID, since *time.Time) (int64, decimal.Decimal, error)
	RevenueSince(ctx context.Context, shopID uuid.UUID, since *time.Time) (decimal.Decimal, error)
}

// ledgerStore is the persistence surface the service needs; the concrete
// Repository satisfies it.
type ledgerStore interface {
	saleStore
	statsStore
}

// catalogLoader resolves the catalog rows a sale references. Soft-deleted
// variants stay sellable so terminals that synced before the deletion can
// still submit their sales.
type catalogLoader interface {
	GetVariant(ctx context.Context, shopID, variantID uuid.UUID) (*models.ProductVariant, error)
	GetProduct(ctx context.Context, shopID, productID uuid.UUID) (*models.Product, error)
}

type accessResolver interface {
	Require(ctx context.Context, userID uuid.UUID, slug string, perms ...enums.Permission) (*access.Access, error)
}

// SaleItemInput captures one line item write.
type SaleItemInput struct {
	ProductVariantID uuid.UUID
	Quantity         int
	UnitPrice        decimal.Decimal
}

// CreateSaleInput captures a sale create request.
type CreateSaleInput struct {
	AddedBy string
	Items   []SaleItemInput
}

// Service exposes the sales ledger and its analytics.
type Service interface {
	CreateSale(ctx context.Context, actorID uuid.UUID, slug string, input CreateSaleInput) (*SaleDTO, error)
	GetSale(ctx context.Context, actorID uuid.UUID, slug string, saleID uuid.UUID) (*SaleDTO, error)
	ListSales(ctx context.Context, actorID uuid.UUID, slug string, params pagination.Params) (*SalesPage, error)
	DeleteSale(ctx context.Context, actorID uuid.UUID, slug string, saleID uuid.UUID) error

	AddItem(ctx context.Context, actorID uuid.UUID, slug string, saleID uuid.UUID, input SaleItemInput) (*SaleDTO, error)
	UpdateItem(ctx context.Context, actorID uuid.UUID, slug string, saleID, itemID uuid.UUID, input SaleItemInput) (*SaleDTO, error)
	RemoveItem(ctx context.Context, actorID uuid.UUID, slug string, saleID, itemID uuid.UUID) (*SaleDTO, error)

	VariantStats(ctx context.Context, actorID uuid.UUID, slug string, variantID uuid.UUID) (*StatsDTO, error)
	ProductStats(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID) (*StatsDTO, error)
	Dashboard(ctx context.Context, actorID uuid.UUID, slug string) (*DashboardDTO, error)
}

type service struct {
	repo     ledgerStore
	catalog  catalogLoader
	resolver accessResolver
	now      func() time.Time
}

// NewService builds a sales service with the provided dependencies.
func NewService(repo ledgerStore, catalog catalogLoader, resolver accessResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("access resolver required")
	}
	return &service{repo: repo, catalog: catalog, resolver: resolver, now: time.Now}, nil
}

func (s *service) CreateSale(ctx context.Context, actorID uuid.UUID, slug string, input CreateSaleInput) (*SaleDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditSales)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	items := make([]models.SaleProduct, 0, len(input.Items))
	for i, itemInput := range input.Items {
		for field, message := range s.validateItem(ctx, acc.Shop.ID, itemInput) {
			fields[fmt.Sprintf("items[%d].%s", i, field)] = message
		}
		items = append(items, buildItem(itemInput))
	}
	if len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	sale := &models.Sale{ShopID: acc.Shop.ID, AddedBy: input.AddedBy}
	created, err := s.repo.CreateSaleWithItems(ctx, acc.Shop, sale, items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
	}
	dto := saleToDTO(created)
	return &dto, nil
}

func (s *service) GetSale(ctx context.Context, actorID uuid.UUID, slug string, saleID uuid.UUID) (*SaleDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewSales)
	if err != nil {
		return nil, err
	}
	sale, err := s.loadSale(ctx, acc.Shop.ID, saleID)
	if err != nil {
		return nil, err
	}
	dto := saleToDTO(sale)
	return &dto, nil
}

func (s *service) ListSales(ctx context.Context, actorID uuid.UUID, slug string, params pagination.Params) (*SalesPage, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewSales)
	if err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.NewValidation(map[string]string{"cursor": "invalid cursor"})
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListSales(ctx, acc.Shop.ID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	page := &SalesPage{Sales: make([]SaleDTO, 0, limit)}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		page.Sales = append(page.Sales, saleToDTO(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) DeleteSale(ctx context.Context, actorID uuid.UUID, slug string, saleID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditSales)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSale(ctx, acc.Shop.ID, saleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sale")
	}
	return nil
}

func (s *service) AddItem(ctx context.Context, actorID uuid.UUID, slug string, saleID uuid.UUID, input SaleItemInput) (*SaleDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditSales)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadSale(ctx, acc.Shop.ID, saleID); err != nil {
		return nil, err
	}
	if fields := s.validateItem(ctx, acc.Shop.ID, input); len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	item := buildItem(input)
	item.SaleID = saleID
	if err := s.repo.AddItemRecompute(ctx, acc.Shop, &item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add line item")
	}
	return s.reload(ctx, acc.Shop.ID, saleID)
}

func (s *service) UpdateItem(ctx context.Context, actorID uuid.UUID, slug string, saleID, itemID uuid.UUID, input SaleItemInput) (*SaleDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditSales)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadSale(ctx, acc.Shop.ID, saleID); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, saleID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load line item")
	}
	if fields := s.validateItem(ctx, acc.Shop.ID, input); len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	item.ProductVariantID = input.ProductVariantID
	item.Quantity = input.Quantity
	item.UnitPrice = input.UnitPrice
	item.SubTotal = ItemSubTotal(input.Quantity, input.UnitPrice)
	if err := s.repo.UpdateItemRecompute(ctx, acc.Shop, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line item")
	}
	return s.reload(ctx, acc.Shop.ID, saleID)
}

func (s *service) RemoveItem(ctx context.Context, actorID uuid.UUID, slug string, saleID, itemID uuid.UUID) (*SaleDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditSales)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadSale(ctx, acc.Shop.ID, saleID); err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItemRecompute(ctx, acc.Shop, saleID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove line item")
	}
	return s.reload(ctx, acc.Shop.ID, saleID)
}

func (s *service) VariantStats(ctx context.Context, actorID uuid.UUID, slug string, variantID uuid.UUID) (*StatsDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewDashboard)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetVariant(ctx, acc.Shop.ID, variantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	return s.collectStats(ctx, func(since *time.Time) (int64, decimal.Decimal, error) {
		return s.repo.VariantTotals(ctx, acc.Shop.ID, variantID, since)
	})
}

func (s *service) ProductStats(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID) (*StatsDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewDashboard)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetProduct(ctx, acc.Shop.ID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return s.collectStats(ctx, func(since *time.Time) (int64, decimal.Decimal, error) {
		return s.repo.ProductTotals(ctx, acc.Shop.ID, productID, since)
	})
}

func (s *service) Dashboard(ctx context.Context, actorID uuid.UUID, slug string) (*DashboardDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewDashboard)
	if err != nil {
		return nil, err
	}

	now := s.now()
	revenue := func(w Window) (string, error) {
		amount, err := s.repo.RevenueSince(ctx, acc.Shop.ID, WindowStart(w, now))
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
		}
		return types.DisplayAmount(amount), nil
	}

	dto := &DashboardDTO{}
	if dto.Today, err = revenue(WindowDayToDate); err != nil {
		return nil, err
	}
	if dto.Week, err = revenue(WindowWeekToDate); err != nil {
		return nil, err
	}
	if dto.Month, err = revenue(WindowMonthToDate); err != nil {
		return nil, err
	}
	if dto.Year, err = revenue(WindowYearToDate); err != nil {
		return nil, err
	}
	if dto.AllTime, err = revenue(WindowAllTime); err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) collectStats(ctx context.Context, totals func(since *time.Time) (int64, decimal.Decimal, error)) (*StatsDTO, error) {
	now := s.now()
	stats := &StatsDTO{}
	for _, w := range Windows() {
		quantity, revenue, err := totals(WindowStart(w, now))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum window")
		}
		entry := WindowTotalsDTO{Quantity: quantity, Revenue: types.DisplayAmount(revenue)}
		switch w {
		case WindowAllTime:
			stats.AllTime = entry
		case WindowYearToDate:
			stats.YearToDate = entry
		case WindowMonthToDate:
			stats.MonthToDate = entry
		case WindowWeekToDate:
			stats.WeekToDate = entry
		case WindowDayToDate:
			stats.DayToDate = entry
		}
	}
	return stats, nil
}

func (s *service) loadSale(ctx context.Context, shopID, saleID uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.GetSale(ctx, shopID, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}

func (s *service) reload(ctx context.Context, shopID, saleID uuid.UUID) (*SaleDTO, error) {
	sale, err := s.loadSale(ctx, shopID, saleID)
	if err != nil {
		return nil, err
	}
	dto := saleToDTO(sale)
	return &dto, nil
}

// validateItem checks the field rules and that the referenced variant belongs
// to the shop. Soft-deleted variants pass on purpose.
func (s *service) validateItem(ctx context.Context, shopID uuid.UUID, input SaleItemInput) map[string]string {
	fields := map[string]string{}
	if input.Quantity <= 0 {
		fields["quantity"] = "quantity must be positive"
	}
	if input.UnitPrice.IsNegative() {
		fields["unit_price"] = "unit price cannot be negative"
	}
	if input.ProductVariantID == uuid.Nil {
		fields["product_variant_id"] = "variant is required"
		return fields
	}
	if _, err := s.catalog.GetVariant(ctx, shopID, input.ProductVariantID); err != nil {
		fields["product_variant_id"] = "variant does not belong to this shop"
	}
	return fields
}

func buildItem(input SaleItemInput) models.SaleProduct {
	return models.SaleProduct{
		ProductVariantID: input.ProductVariantID,
		Quantity:         input.Quantity,
		UnitPrice:        input.UnitPrice,
		SubTotal:         ItemSubTotal(input.Quantity, input.UnitPrice),
	}
}
