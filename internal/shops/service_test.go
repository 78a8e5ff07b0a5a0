package shops

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

type stubShopStore struct {
	bySlug  map[string]*models.Shop
	deleted []uuid.UUID
}

func newStubShopStore() *stubShopStore {
	return &stubShopStore{bySlug: make(map[string]*models.Shop)}
}

func (s *stubShopStore) CreateWithDefaultCategory(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	shop.ID = uuid.New()
	s.bySlug[shop.Slug] = shop
	return shop, nil
}

func (s *stubShopStore) SlugTaken(ctx context.Context, slug string) (bool, error) {
	_, ok := s.bySlug[slug]
	return ok, nil
}

func (s *stubShopStore) Update(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	s.bySlug[shop.Slug] = shop
	return shop, nil
}

func (s *stubShopStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	for slug, shop := range s.bySlug {
		if shop.ID == id {
			delete(s.bySlug, slug)
		}
	}
	return nil
}

func (s *stubShopStore) ListOwnedBy(ctx context.Context, userID uuid.UUID) ([]models.Shop, error) {
	var out []models.Shop
	for _, shop := range s.bySlug {
		if shop.OwnerID == userID {
			out = append(out, *shop)
		}
	}
	return out, nil
}

func (s *stubShopStore) ListManagedBy(ctx context.Context, userID uuid.UUID) ([]models.Shop, error) {
	return nil, nil
}

func (s *stubShopStore) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	shop, ok := s.bySlug[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return shop, nil
}

type stubUserLoader struct {
	byID map[uuid.UUID]*models.User
}

func (s *stubUserLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubManagerLoader struct {
	managers map[uuid.UUID]*models.ShopManager
}

func (s *stubManagerLoader) GetManager(ctx context.Context, userID, shopID uuid.UUID) (*models.ShopManager, error) {
	manager, ok := s.managers[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return manager, nil
}

type fixture struct {
	svc      Service
	store    *stubShopStore
	users    *stubUserLoader
	managers *stubManagerLoader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newStubShopStore()
	usersStub := &stubUserLoader{byID: make(map[uuid.UUID]*models.User)}
	managersStub := &stubManagerLoader{managers: make(map[uuid.UUID]*models.ShopManager)}

	resolver, err := access.NewResolver(store, managersStub)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	svc, err := NewService(store, usersStub, resolver)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, store: store, users: usersStub, managers: managersStub}
}

func (f *fixture) addUser(canCreate bool) uuid.UUID {
	id := uuid.New()
	f.users.byID[id] = &models.User{ID: id, CanCreateShops: canCreate}
	return id
}

func TestCreateAssignsSequentialSlugs(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(true)
	ctx := context.Background()

	input := CreateShopInput{Name: "Corner Store", CurrencyCode: "EGP"}

	first, err := f.svc.Create(ctx, owner, input)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Slug != "corner-store" {
		t.Fatalf("expected base slug, got %q", first.Slug)
	}

	for i := 2; i <= 4; i++ {
		shop, err := f.svc.Create(ctx, owner, input)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		want := fmt.Sprintf("corner-store-%d", i)
		if shop.Slug != want {
			t.Fatalf("expected slug %q, got %q", want, shop.Slug)
		}
	}
}

func TestCreateRequiresShopCreationFlag(t *testing.T) {
	f := newFixture(t)
	restricted := f.addUser(false)

	_, err := f.svc.Create(context.Background(), restricted, CreateShopInput{Name: "Nope", CurrencyCode: "EGP"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateValidatesPercentages(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(true)

	_, err := f.svc.Create(context.Background(), owner, CreateShopInput{
		Name:               "Corner Store",
		CurrencyCode:       "EGP",
		DiscountPercentage: decimal.NewFromInt(120),
		TaxPercentage:      decimal.NewFromInt(-1),
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := appErr.FieldErrors()
	if _, ok := fields["discount_percentage"]; !ok {
		t.Fatal("expected discount_percentage violation")
	}
	if _, ok := fields["tax_percentage"]; !ok {
		t.Fatal("expected tax_percentage violation")
	}
}

func TestUpdateKeepsSlugWhenNameChanges(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(true)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, owner, CreateShopInput{Name: "Corner Store", CurrencyCode: "EGP"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Corner Store Reborn"
	updated, err := f.svc.Update(ctx, owner, created.Slug, UpdateShopInput{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("name not updated: %q", updated.Name)
	}
	if updated.Slug != created.Slug {
		t.Fatalf("slug must be immutable: %q vs %q", updated.Slug, created.Slug)
	}
}

func TestUpdateRequiresSettingsPermission(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(true)
	manager := f.addUser(false)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, owner, CreateShopInput{Name: "Corner Store", CurrencyCode: "EGP"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.managers.managers[manager] = &models.ShopManager{
		UserID:      manager,
		Permissions: enums.PermissionSet{enums.PermViewShopSettings: true},
	}

	name := "Hijack"
	_, err = f.svc.Update(ctx, manager, created.Slug, UpdateShopInput{Name: &name})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(true)
	manager := f.addUser(false)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, owner, CreateShopInput{Name: "Corner Store", CurrencyCode: "EGP"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.managers.managers[manager] = &models.ShopManager{
		UserID:      manager,
		Permissions: enums.DefaultPermissions(),
	}

	err = f.svc.Delete(ctx, manager, created.Slug)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for manager, got %v", err)
	}

	if err := f.svc.Delete(ctx, owner, created.Slug); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if len(f.store.deleted) != 1 || f.store.deleted[0] != created.ID {
		t.Fatal("shop row not deleted")
	}
}

func TestDeleteUnknownSlugIsNotFound(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(true)

	err := f.svc.Delete(context.Background(), owner, "ghost")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
