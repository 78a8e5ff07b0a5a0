package sales

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
	"github.com/omarashraf/kasher-backend/pkg/pagination"
)

type memLedger struct {
	sales map[uuid.UUID]*models.Sale
	items map[uuid.UUID]*models.SaleProduct
}

func newMemLedger() *memLedger {
	return &memLedger{
		sales: make(map[uuid.UUID]*models.Sale),
		items: make(map[uuid.UUID]*models.SaleProduct),
	}
}

func (m *memLedger) recompute(shop *models.Shop, saleID uuid.UUID) {
	sale := m.sales[saleID]
	var items []models.SaleProduct
	for _, item := range m.items {
		if item.SaleID == saleID {
			items = append(items, *item)
		}
	}
	applyTotals(sale, items, shop)
}

func (m *memLedger) CreateSaleWithItems(ctx context.Context, shop *models.Shop, sale *models.Sale, items []models.SaleProduct) (*models.Sale, error) {
	sale.ID = uuid.New()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	m.sales[sale.ID] = sale
	for i := range items {
		items[i].ID = uuid.New()
		items[i].SaleID = sale.ID
		item := items[i]
		m.items[item.ID] = &item
	}
	m.recompute(shop, sale.ID)
	return m.GetSale(ctx, shop.ID, sale.ID)
}

func (m *memLedger) GetSale(ctx context.Context, shopID, saleID uuid.UUID) (*models.Sale, error) {
	sale, ok := m.sales[saleID]
	if !ok || sale.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *sale
	clone.Items = nil
	for _, item := range m.items {
		if item.SaleID == saleID {
			clone.Items = append(clone.Items, *item)
		}
	}
	return &clone, nil
}

func (m *memLedger) ListSales(ctx context.Context, shopID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Sale, error) {
	var rows []models.Sale
	for id, sale := range m.sales {
		if sale.ShopID != shopID {
			continue
		}
		if cursor != nil && !sale.CreatedAt.Before(cursor.CreatedAt) {
			continue
		}
		full, _ := m.GetSale(ctx, shopID, id)
		rows = append(rows, *full)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *memLedger) DeleteSale(ctx context.Context, shopID, saleID uuid.UUID) error {
	sale, ok := m.sales[saleID]
	if !ok || sale.ShopID != shopID {
		return gorm.ErrRecordNotFound
	}
	delete(m.sales, saleID)
	for id, item := range m.items {
		if item.SaleID == saleID {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *memLedger) GetItem(ctx context.Context, saleID, itemID uuid.UUID) (*models.SaleProduct, error) {
	item, ok := m.items[itemID]
	if !ok || item.SaleID != saleID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (m *memLedger) AddItemRecompute(ctx context.Context, shop *models.Shop, item *models.SaleProduct) error {
	item.ID = uuid.New()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	m.items[item.ID] = item
	m.recompute(shop, item.SaleID)
	return nil
}

func (m *memLedger) UpdateItemRecompute(ctx context.Context, shop *models.Shop, item *models.SaleProduct) error {
	m.items[item.ID] = item
	m.recompute(shop, item.SaleID)
	return nil
}

func (m *memLedger) RemoveItemRecompute(ctx context.Context, shop *models.Shop, saleID, itemID uuid.UUID) error {
	item, ok := m.items[itemID]
	if !ok || item.SaleID != saleID {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, itemID)
	m.recompute(shop, saleID)
	return nil
}

func (m *memLedger) VariantTotals(ctx context.Context, shopID, variantID uuid.UUID, since *time.Time) (int64, decimal.Decimal, error) {
	var quantity int64
	revenue := decimal.Zero
	for _, item := range m.items {
		if item.ProductVariantID != variantID {
			continue
		}
		sale, ok := m.sales[item.SaleID]
		if !ok || sale.ShopID != shopID {
			continue
		}
		if since != nil && item.CreatedAt.Before(*since) {
			continue
		}
		quantity += int64(item.Quantity)
		revenue = revenue.Add(item.SubTotal)
	}
	return quantity, revenue, nil
}

func (m *memLedger) ProductTotals(ctx context.Context, shopID, productID uuid.UUID, since *time.Time) (int64, decimal.Decimal, error) {
	return 0, decimal.Zero, nil
}

func (m *memLedger) RevenueSince(ctx context.Context, shopID uuid.UUID, since *time.Time) (decimal.Decimal, error) {
	revenue := decimal.Zero
	for _, sale := range m.sales {
		if sale.ShopID != shopID {
			continue
		}
		if since != nil && sale.CreatedAt.Before(*since) {
			continue
		}
		revenue = revenue.Add(sale.TotalAfterShopTax)
	}
	return revenue, nil
}

type stubCatalog struct {
	variants map[uuid.UUID]bool
	products map[uuid.UUID]bool
}

func (s *stubCatalog) GetVariant(ctx context.Context, shopID, variantID uuid.UUID) (*models.ProductVariant, error) {
	if !s.variants[variantID] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.ProductVariant{ID: variantID}, nil
}

func (s *stubCatalog) GetProduct(ctx context.Context, shopID, productID uuid.UUID) (*models.Product, error) {
	if !s.products[productID] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Product{ID: productID}, nil
}

type stubShopLoader struct {
	shop *models.Shop
}

func (s *stubShopLoader) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	if s.shop == nil || s.shop.Slug != slug {
		return nil, gorm.ErrRecordNotFound
	}
	return s.shop, nil
}

type stubManagerLoader struct {
	managers map[uuid.UUID]*models.ShopManager
}

func (s *stubManagerLoader) GetManager(ctx context.Context, userID, shopID uuid.UUID) (*models.ShopManager, error) {
	m, ok := s.managers[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

type fixture struct {
	svc      Service
	ledger   *memLedger
	catalog  *stubCatalog
	shop     *models.Shop
	owner    uuid.UUID
	variant  uuid.UUID
	managers *stubManagerLoader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := uuid.New()
	shop := &models.Shop{
		ID:                 uuid.New(),
		OwnerID:            owner,
		Slug:               "corner-store",
		DiscountPercentage: decimal.RequireFromString("10"),
		TaxPercentage:      decimal.RequireFromString("14"),
	}
	variant := uuid.New()
	ledger := newMemLedger()
	catalog := &stubCatalog{
		variants: map[uuid.UUID]bool{variant: true},
		products: map[uuid.UUID]bool{},
	}
	managers := &stubManagerLoader{managers: make(map[uuid.UUID]*models.ShopManager)}

	resolver, err := access.NewResolver(&stubShopLoader{shop: shop}, managers)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	svc, err := NewService(ledger, catalog, resolver)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{
		svc:      svc,
		ledger:   ledger,
		catalog:  catalog,
		shop:     shop,
		owner:    owner,
		variant:  variant,
		managers: managers,
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestCreateSaleComputesCascadedTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.CreateSale(ctx, f.owner, "corner-store", CreateSaleInput{
		AddedBy: "till-1",
		Items: []SaleItemInput{{
			ProductVariantID: f.variant,
			Quantity:         2,
			UnitPrice:        d(t, "80"),
		}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if sale.TotalAmount != "160" {
		t.Fatalf("expected total 160, got %s", sale.TotalAmount)
	}
	if sale.TotalAfterShopDiscount != "144" {
		t.Fatalf("expected discounted 144, got %s", sale.TotalAfterShopDiscount)
	}
	if sale.TotalAfterShopTax != "164.16" {
		t.Fatalf("expected taxed 164.16, got %s", sale.TotalAfterShopTax)
	}
	if len(sale.Items) != 1 || sale.Items[0].SubTotal != "160" {
		t.Fatalf("expected one item with sub total 160, got %+v", sale.Items)
	}
}

func TestLineItemWritesRecomputeTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.CreateSale(ctx, f.owner, "corner-store", CreateSaleInput{})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.TotalAmount != "0" {
		t.Fatalf("empty sale should total 0, got %s", sale.TotalAmount)
	}

	sale, err = f.svc.AddItem(ctx, f.owner, "corner-store", sale.ID, SaleItemInput{
		ProductVariantID: f.variant,
		Quantity:         1,
		UnitPrice:        d(t, "50"),
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if sale.TotalAmount != "50" {
		t.Fatalf("expected 50 after add, got %s", sale.TotalAmount)
	}

	itemID := sale.Items[0].ID
	sale, err = f.svc.UpdateItem(ctx, f.owner, "corner-store", sale.ID, itemID, SaleItemInput{
		ProductVariantID: f.variant,
		Quantity:         2,
		UnitPrice:        d(t, "50"),
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if sale.TotalAmount != "100" {
		t.Fatalf("expected 100 after update, got %s", sale.TotalAmount)
	}

	sale, err = f.svc.RemoveItem(ctx, f.owner, "corner-store", sale.ID, itemID)
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if sale.TotalAmount != "0" {
		t.Fatalf("expected 0 after remove, got %s", sale.TotalAmount)
	}

	_, err = f.svc.RemoveItem(ctx, f.owner, "corner-store", sale.ID, itemID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateSaleValidatesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSale(ctx, f.owner, "corner-store", CreateSaleInput{
		Items: []SaleItemInput{
			{ProductVariantID: f.variant, Quantity: 0, UnitPrice: d(t, "-1")},
			{ProductVariantID: uuid.New(), Quantity: 1, UnitPrice: d(t, "5")},
		},
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	fields := pkgerrors.As(err).FieldErrors()
	for _, key := range []string{"items[0].quantity", "items[0].unit_price", "items[1].product_variant_id"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected violation for %s, got %v", key, fields)
		}
	}
}

func TestListSalesPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		sale := &models.Sale{ID: uuid.New(), ShopID: f.shop.ID, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		f.ledger.sales[sale.ID] = sale
	}

	page, err := f.svc.ListSales(ctx, f.owner, "corner-store", pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Sales) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(page.Sales))
	}
	if page.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}
	if !page.Sales[0].CreatedAt.After(page.Sales[1].CreatedAt) {
		t.Fatal("expected newest first")
	}

	rest, err := f.svc.ListSales(ctx, f.owner, "corner-store", pagination.Params{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(rest.Sales) != 1 {
		t.Fatalf("expected 1 sale on the last page, got %d", len(rest.Sales))
	}
	if rest.NextCursor != "" {
		t.Fatalf("expected no cursor on the last page, got %q", rest.NextCursor)
	}

	_, err = f.svc.ListSales(ctx, f.owner, "corner-store", pagination.Params{Cursor: "not-base64!"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestSalesPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := uuid.New()
	f.managers.managers[viewer] = &models.ShopManager{
		UserID:      viewer,
		Permissions: enums.PermissionSet{enums.PermViewSales: true},
	}

	if _, err := f.svc.ListSales(ctx, viewer, "corner-store", pagination.Params{}); err != nil {
		t.Fatalf("viewer should list sales: %v", err)
	}

	_, err := f.svc.CreateSale(ctx, viewer, "corner-store", CreateSaleInput{})
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.Dashboard(ctx, viewer, "corner-store")
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestVariantStatsEmptyWindowsReportZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stats, err := f.svc.VariantStats(ctx, f.owner, "corner-store", f.variant)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, entry := range []WindowTotalsDTO{stats.AllTime, stats.YearToDate, stats.MonthToDate, stats.WeekToDate, stats.DayToDate} {
		if entry.Quantity != 0 || entry.Revenue != "0" {
			t.Fatalf("expected zero window, got %+v", entry)
		}
	}

	_, err = f.svc.VariantStats(ctx, f.owner, "corner-store", uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestVariantStatsSplitsByWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 14, 15, 0, 0, 0, time.UTC)
	f.svc.(*service).now = func() time.Time { return now }

	sale := &models.Sale{ID: uuid.New(), ShopID: f.shop.ID, CreatedAt: now}
	f.ledger.sales[sale.ID] = sale

	old := &models.SaleProduct{
		ID: uuid.New(), SaleID: sale.ID, ProductVariantID: f.variant,
		Quantity: 5, SubTotal: d(t, "500"),
		CreatedAt: now.AddDate(-1, 0, 0),
	}
	recent := &models.SaleProduct{
		ID: uuid.New(), SaleID: sale.ID, ProductVariantID: f.variant,
		Quantity: 2, SubTotal: d(t, "160"),
		CreatedAt: now.Add(-time.Hour),
	}
	f.ledger.items[old.ID] = old
	f.ledger.items[recent.ID] = recent

	stats, err := f.svc.VariantStats(ctx, f.owner, "corner-store", f.variant)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.AllTime.Quantity != 7 || stats.AllTime.Revenue != "660" {
		t.Fatalf("all-time: %+v", stats.AllTime)
	}
	if stats.DayToDate.Quantity != 2 || stats.DayToDate.Revenue != "160" {
		t.Fatalf("day-to-date: %+v", stats.DayToDate)
	}
	if stats.YearToDate.Quantity != 2 {
		t.Fatalf("year-to-date should exclude last year: %+v", stats.YearToDate)
	}
}
