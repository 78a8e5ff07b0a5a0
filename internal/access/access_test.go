package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

type stubShopLoader struct {
	shop *models.Shop
	err  error
}

func (s *stubShopLoader) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.shop, nil
}

type stubManagerLoader struct {
	manager *models.ShopManager
	err     error
}

func (s *stubManagerLoader) GetManager(ctx context.Context, userID, shopID uuid.UUID) (*models.ShopManager, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.manager, nil
}

func mustResolver(t *testing.T, shops shopLoader, managers managerLoader) *Resolver {
	t.Helper()
	r, err := NewResolver(shops, managers)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return r
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

func TestRequireUnknownSlugIsNotFound(t *testing.T) {
	r := mustResolver(t, &stubShopLoader{err: gorm.ErrRecordNotFound}, &stubManagerLoader{err: gorm.ErrRecordNotFound})

	_, err := r.Require(context.Background(), uuid.New(), "missing-shop", enums.PermViewProducts)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestRequireOwnerHoldsEveryPermission(t *testing.T) {
	owner := uuid.New()
	shop := &models.Shop{ID: uuid.New(), OwnerID: owner, Slug: "corner-store"}
	r := mustResolver(t, &stubShopLoader{shop: shop}, &stubManagerLoader{err: gorm.ErrRecordNotFound})

	acc, err := r.Require(context.Background(), owner, "corner-store", enums.AllPermissions()...)
	if err != nil {
		t.Fatalf("owner should pass every check: %v", err)
	}
	if acc.Role != enums.ShopRoleOwner {
		t.Fatalf("expected owner role, got %s", acc.Role)
	}
}

func TestRequireManagerFailsClosed(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), OwnerID: uuid.New(), Slug: "corner-store"}
	manager := &models.ShopManager{
		Permissions: enums.PermissionSet{enums.PermViewProducts: true},
	}
	r := mustResolver(t, &stubShopLoader{shop: shop}, &stubManagerLoader{manager: manager})

	if _, err := r.Require(context.Background(), uuid.New(), "corner-store", enums.PermViewProducts); err != nil {
		t.Fatalf("granted permission should pass: %v", err)
	}

	_, err := r.Require(context.Background(), uuid.New(), "corner-store", enums.PermEditProducts)
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = r.Require(context.Background(), uuid.New(), "corner-store", enums.PermViewProducts, enums.PermEditProducts)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRequireStrangerIsForbidden(t *testing.T) {
	shop := &models.Shop{ID: uuid.New(), OwnerID: uuid.New(), Slug: "corner-store"}
	r := mustResolver(t, &stubShopLoader{shop: shop}, &stubManagerLoader{err: gorm.ErrRecordNotFound})

	_, err := r.Require(context.Background(), uuid.New(), "corner-store", enums.PermViewProducts)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCanNilAccessDenies(t *testing.T) {
	var acc *Access
	if acc.Can(enums.PermViewProducts) {
		t.Fatal("nil access must deny")
	}
}
