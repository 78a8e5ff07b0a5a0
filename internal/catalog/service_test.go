package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

// Valid EAN-13 codes used across the tests.
const (
	ean13A = "4006381333931"
	ean13B = "1234567890128"
)

type memStore struct {
	categories map[uuid.UUID]*models.Category
	products   map[uuid.UUID]*models.Product
	variants   map[uuid.UUID]*models.ProductVariant
	attributes map[uuid.UUID]*models.ProductAttribute
	values     map[uuid.UUID]*models.ProductAttributeValue
	links      map[uuid.UUID]*models.ProductVariantAttributeValue
}

func newMemStore() *memStore {
	return &memStore{
		categories: make(map[uuid.UUID]*models.Category),
		products:   make(map[uuid.UUID]*models.Product),
		variants:   make(map[uuid.UUID]*models.ProductVariant),
		attributes: make(map[uuid.UUID]*models.ProductAttribute),
		values:     make(map[uuid.UUID]*models.ProductAttributeValue),
		links:      make(map[uuid.UUID]*models.ProductVariantAttributeValue),
	}
}

func (m *memStore) EnsureDefaultCategory(ctx context.Context, shopID uuid.UUID) (*models.Category, error) {
	for _, c := range m.categories {
		if c.ShopID == shopID && c.Name == models.DefaultCategoryName {
			return c, nil
		}
	}
	c := &models.Category{ID: uuid.New(), ShopID: shopID, Name: models.DefaultCategoryName, Color: enums.CategoryColorBlue}
	m.categories[c.ID] = c
	return c, nil
}

func (m *memStore) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	for _, c := range m.categories {
		if c.ShopID == category.ShopID && c.Name == category.Name {
			return nil, &duplicateErr{}
		}
	}
	category.ID = uuid.New()
	m.categories[category.ID] = category
	return category, nil
}

func (m *memStore) GetCategory(ctx context.Context, shopID, categoryID uuid.UUID) (*models.Category, error) {
	c, ok := m.categories[categoryID]
	if !ok || c.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *memStore) ListCategories(ctx context.Context, shopID uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for _, c := range m.categories {
		if c.ShopID == shopID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	m.categories[category.ID] = category
	return category, nil
}

func (m *memStore) DeleteCategoryReassign(ctx context.Context, categoryID, fallbackID uuid.UUID) error {
	if _, ok := m.categories[categoryID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, p := range m.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			id := fallbackID
			p.CategoryID = &id
		}
	}
	delete(m.categories, categoryID)
	return nil
}

func (m *memStore) CreateProductWithVariants(ctx context.Context, product *models.Product, variants []models.ProductVariant) (*models.Product, error) {
	product.ID = uuid.New()
	m.products[product.ID] = product
	for i := range variants {
		variants[i].ID = uuid.New()
		variants[i].ProductID = product.ID
		v := variants[i]
		m.variants[v.ID] = &v
	}
	return product, nil
}

func (m *memStore) GetProduct(ctx context.Context, shopID, productID uuid.UUID) (*models.Product, error) {
	p, ok := m.products[productID]
	if !ok || p.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	clone.Variants = nil
	for _, v := range m.variants {
		if v.ProductID == p.ID && !v.IsDeleted {
			clone.Variants = append(clone.Variants, *v)
		}
	}
	if p.CategoryID != nil {
		if c, ok := m.categories[*p.CategoryID]; ok {
			cc := *c
			clone.Category = &cc
		}
	}
	return &clone, nil
}

func (m *memStore) ListProducts(ctx context.Context, shopID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for id, p := range m.products {
		if p.ShopID == shopID {
			full, _ := m.GetProduct(ctx, shopID, id)
			out = append(out, *full)
		}
	}
	return out, nil
}

func (m *memStore) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	m.products[product.ID] = product
	return product, nil
}

func (m *memStore) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	delete(m.products, productID)
	for id, v := range m.variants {
		if v.ProductID == productID {
			delete(m.variants, id)
		}
	}
	return nil
}

func (m *memStore) GetVariant(ctx context.Context, shopID, variantID uuid.UUID) (*models.ProductVariant, error) {
	v, ok := m.variants[variantID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p, ok := m.products[v.ProductID]
	if !ok || p.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *v
	return &clone, nil
}

func (m *memStore) CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	variant.ID = uuid.New()
	m.variants[variant.ID] = variant
	return variant, nil
}

func (m *memStore) UpdateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	m.variants[variant.ID] = variant
	return variant, nil
}

func (m *memStore) SoftDeleteVariant(ctx context.Context, variantID uuid.UUID, at time.Time) error {
	v, ok := m.variants[variantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.IsDeleted = true
	v.MarkedForDeletionAt = &at
	return nil
}

func (m *memStore) BarcodeTaken(ctx context.Context, shopID uuid.UUID, barcode string, excludeID uuid.UUID) (bool, error) {
	for _, v := range m.variants {
		if v.ID == excludeID || v.Barcode != barcode {
			continue
		}
		if p, ok := m.products[v.ProductID]; ok && p.ShopID == shopID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) SKUTaken(ctx context.Context, shopID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error) {
	for _, v := range m.variants {
		if v.ID == excludeID || v.SKU != sku {
			continue
		}
		if p, ok := m.products[v.ProductID]; ok && p.ShopID == shopID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateAttribute(ctx context.Context, attribute *models.ProductAttribute) (*models.ProductAttribute, error) {
	attribute.ID = uuid.New()
	m.attributes[attribute.ID] = attribute
	return attribute, nil
}

func (m *memStore) ListAttributes(ctx context.Context, shopID uuid.UUID) ([]models.ProductAttribute, error) {
	var out []models.ProductAttribute
	for id, a := range m.attributes {
		if a.ShopID == shopID {
			full, _ := m.GetAttribute(ctx, shopID, id)
			out = append(out, *full)
		}
	}
	return out, nil
}

func (m *memStore) GetAttribute(ctx context.Context, shopID, attributeID uuid.UUID) (*models.ProductAttribute, error) {
	a, ok := m.attributes[attributeID]
	if !ok || a.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *a
	clone.Values = nil
	for _, v := range m.values {
		if v.AttributeID == a.ID {
			clone.Values = append(clone.Values, *v)
		}
	}
	return &clone, nil
}

func (m *memStore) DeleteAttribute(ctx context.Context, attributeID uuid.UUID) error {
	delete(m.attributes, attributeID)
	for id, v := range m.values {
		if v.AttributeID == attributeID {
			delete(m.values, id)
		}
	}
	return nil
}

func (m *memStore) CreateAttributeValue(ctx context.Context, value *models.ProductAttributeValue) (*models.ProductAttributeValue, error) {
	value.ID = uuid.New()
	m.values[value.ID] = value
	return value, nil
}

func (m *memStore) GetAttributeValue(ctx context.Context, shopID, valueID uuid.UUID) (*models.ProductAttributeValue, error) {
	v, ok := m.values[valueID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	a, ok := m.attributes[v.AttributeID]
	if !ok || a.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (m *memStore) AttributeValueInUse(ctx context.Context, valueID uuid.UUID) (bool, error) {
	for _, link := range m.links {
		if link.AttributeValueID == valueID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) DeleteAttributeValue(ctx context.Context, valueID uuid.UUID) error {
	delete(m.values, valueID)
	return nil
}

func (m *memStore) AssignAttributeValue(ctx context.Context, link *models.ProductVariantAttributeValue) error {
	for _, existing := range m.links {
		if existing.ProductVariantID == link.ProductVariantID && existing.AttributeValueID == link.AttributeValueID {
			return &duplicateErr{}
		}
	}
	link.ID = uuid.New()
	m.links[link.ID] = link
	return nil
}

func (m *memStore) UnassignAttributeValue(ctx context.Context, variantID, valueID uuid.UUID) error {
	for id, link := range m.links {
		if link.ProductVariantID == variantID && link.AttributeValueID == valueID {
			delete(m.links, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type duplicateErr struct{}

func (*duplicateErr) Error() string { return "duplicate key value violates unique constraint" }

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
	store    *memStore
	shop     *models.Shop
	owner    uuid.UUID
	managers *stubManagerLoader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := uuid.New()
	shop := &models.Shop{ID: uuid.New(), OwnerID: owner, Slug: "corner-store"}
	store := newMemStore()
	managers := &stubManagerLoader{managers: make(map[uuid.UUID]*models.ShopManager)}

	resolver, err := access.NewResolver(&stubShopLoader{shop: shop}, managers)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	svc, err := NewService(store, resolver)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, store: store, shop: shop, owner: owner, managers: managers}
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

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(value)
}

func TestCreateProductDefaultsCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.owner, "corner-store", ProductInput{
		Name: "Mineral Water",
		Variants: []VariantInput{{
			SKU:     "WTR-1",
			Barcode: ean13A,
			Price:   dec(t, "10"),
		}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.Category == nil || product.Category.Name != models.DefaultCategoryName {
		t.Fatalf("expected default category, got %+v", product.Category)
	}
	if len(product.Variants) != 1 {
		t.Fatalf("expected one variant, got %d", len(product.Variants))
	}
	if product.Variants[0].PriceAfterDiscount != "10" {
		t.Fatalf("expected derived price 10, got %s", product.Variants[0].PriceAfterDiscount)
	}
}

func TestCreateProductCollectsAllVariantViolations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	discount := dec(t, "150")
	_, err := f.svc.CreateProduct(ctx, f.owner, "corner-store", ProductInput{
		Name: "Broken",
		Variants: []VariantInput{{
			SKU:                "",
			Barcode:            "4006381333932", // tampered check digit
			Price:              dec(t, "-5"),
			DiscountPercentage: &discount,
		}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	fields := pkgerrors.As(err).FieldErrors()
	for _, key := range []string{"variants[0].barcode", "variants[0].sku", "variants[0].price", "variants[0].discount_percentage"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected violation for %s, got %v", key, fields)
		}
	}
}

func TestVariantBarcodeUniquePerShop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateProduct(ctx, f.owner, "corner-store", ProductInput{
		Name:     "Water",
		Variants: []VariantInput{{SKU: "WTR-1", Barcode: ean13A, Price: dec(t, "10")}},
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}

	_, err = f.svc.AddVariant(ctx, f.owner, "corner-store", first.ID, VariantInput{
		SKU:     "WTR-2",
		Barcode: ean13A,
		Price:   dec(t, "12"),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
	if _, ok := pkgerrors.As(err).FieldErrors()["barcode"]; !ok {
		t.Fatal("expected barcode uniqueness violation")
	}

	// Updating a variant against its own barcode is not a collision.
	variantID := first.Variants[0].ID
	if _, err := f.svc.UpdateVariant(ctx, f.owner, "corner-store", variantID, VariantInput{
		SKU:     "WTR-1",
		Barcode: ean13A,
		Price:   dec(t, "11"),
	}); err != nil {
		t.Fatalf("self-update should pass: %v", err)
	}
}

func TestUpdateVariantRecomputesDiscountedPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.owner, "corner-store", ProductInput{
		Name:     "Notebook",
		Variants: []VariantInput{{SKU: "NB-1", Barcode: ean13A, Price: dec(t, "100")}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	discount := dec(t, "20")
	updated, err := f.svc.UpdateVariant(ctx, f.owner, "corner-store", product.Variants[0].ID, VariantInput{
		SKU:                "NB-1",
		Barcode:            ean13A,
		Price:              dec(t, "100"),
		DiscountPercentage: &discount,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PriceAfterDiscount != "80" {
		t.Fatalf("expected price_after_discount 80, got %s", updated.PriceAfterDiscount)
	}
	if updated.DiscountPercentage != "20" {
		t.Fatalf("expected discount 20, got %s", updated.DiscountPercentage)
	}
}

func TestDeleteVariantIsSoft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.owner, "corner-store", ProductInput{
		Name:     "Soda",
		Variants: []VariantInput{{SKU: "SD-1", Barcode: ean13A, Price: dec(t, "5")}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	variantID := product.Variants[0].ID

	if err := f.svc.DeleteVariant(ctx, f.owner, "corner-store", variantID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	stored := f.store.variants[variantID]
	if !stored.IsDeleted || stored.MarkedForDeletionAt == nil {
		t.Fatal("expected tombstone fields set")
	}

	err = f.svc.DeleteVariant(ctx, f.owner, "corner-store", variantID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestDefaultCategoryIsProtected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	def, err := f.svc.EnsureDefaultCategory(ctx, f.owner, "corner-store")
	if err != nil {
		t.Fatalf("ensure default: %v", err)
	}

	_, err = f.svc.UpdateCategory(ctx, f.owner, "corner-store", def.ID, CategoryInput{Name: "Misc", Color: enums.CategoryColorRed})
	assertCode(t, err, pkgerrors.CodeConflict)

	err = f.svc.DeleteCategory(ctx, f.owner, "corner-store", def.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestDeleteCategoryReassignsProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snacks, err := f.svc.CreateCategory(ctx, f.owner, "corner-store", CategoryInput{Name: "Snacks", Color: enums.CategoryColorOrange})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	product, err := f.svc.CreateProduct(ctx, f.owner, "corner-store", ProductInput{
		Name:       "Chips",
		CategoryID: &snacks.ID,
		Variants:   []VariantInput{{SKU: "CH-1", Barcode: ean13A, Price: dec(t, "3")}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := f.svc.DeleteCategory(ctx, f.owner, "corner-store", snacks.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	reloaded, err := f.svc.GetProduct(ctx, f.owner, "corner-store", product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if reloaded.Category == nil || reloaded.Category.Name != models.DefaultCategoryName {
		t.Fatalf("expected reassignment to default category, got %+v", reloaded.Category)
	}
}

func TestAttributeValueProtectedWhileAssigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.owner, "corner-store", ProductInput{
		Name:     "Shirt",
		Variants: []VariantInput{{SKU: "SH-1", Barcode: ean13A, Price: dec(t, "50")}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	attribute, err := f.svc.CreateAttribute(ctx, f.owner, "corner-store", "Color")
	if err != nil {
		t.Fatalf("create attribute: %v", err)
	}
	value, err := f.svc.AddAttributeValue(ctx, f.owner, "corner-store", attribute.ID, "Red")
	if err != nil {
		t.Fatalf("add value: %v", err)
	}

	variantID := product.Variants[0].ID
	if err := f.svc.AssignAttributeValue(ctx, f.owner, "corner-store", variantID, value.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	err = f.svc.DeleteAttributeValue(ctx, f.owner, "corner-store", value.ID)
	assertCode(t, err, pkgerrors.CodeConflict)

	if err := f.svc.UnassignAttributeValue(ctx, f.owner, "corner-store", variantID, value.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if err := f.svc.DeleteAttributeValue(ctx, f.owner, "corner-store", value.ID); err != nil {
		t.Fatalf("delete after unassign: %v", err)
	}
}

func TestCatalogPermissionsFailClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := uuid.New()
	f.managers.managers[viewer] = &models.ShopManager{
		UserID:      viewer,
		Permissions: enums.PermissionSet{enums.PermViewProducts: true},
	}

	if _, err := f.svc.ListProducts(ctx, viewer, "corner-store"); err != nil {
		t.Fatalf("viewer should list products: %v", err)
	}

	_, err := f.svc.CreateProduct(ctx, viewer, "corner-store", ProductInput{Name: "Nope"})
	assertCode(t, err, pkgerrors.CodeForbidden)
}
