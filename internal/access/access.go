// Package access resolves what a user may do inside one shop. Ownership
// grants everything; managers are limited to their stored permission set;
// everyone else is rejected.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

type shopLoader interface {
	FindBySlug(ctx context.Context, slug string) (*models.Shop, error)
}

type managerLoader interface {
	GetManager(ctx context.Context, userID, shopID uuid.UUID) (*models.ShopManager, error)
}

// Access is the resolved relationship between one user and one shop.
type Access struct {
	Shop        *models.Shop
	Role        enums.ShopRole
	Permissions enums.PermissionSet
}

// Can reports whether the access grants the given permission. Owners hold
// every permission implicitly.
func (a *Access) Can(perm enums.Permission) bool {
	if a == nil {
		return false
	}
	if a.Role == enums.ShopRoleOwner {
		return true
	}
	return a.Permissions.Has(perm)
}

// CanAll reports whether every listed permission is granted.
func (a *Access) CanAll(perms ...enums.Permission) bool {
	for _, perm := range perms {
		if !a.Can(perm) {
			return false
		}
	}
	return true
}

// Resolver loads shops by slug and resolves the caller's role in them.
type Resolver struct {
	shops    shopLoader
	managers managerLoader
}

// NewResolver builds a resolver from the two loaders it depends on.
func NewResolver(shops shopLoader, managers managerLoader) (*Resolver, error) {
	if shops == nil {
		return nil, fmt.Errorf("shop loader required")
	}
	if managers == nil {
		return nil, fmt.Errorf("manager loader required")
	}
	return &Resolver{shops: shops, managers: managers}, nil
}

// Require loads the shop by slug and verifies the caller holds every listed
// permission. Existence is checked before authorization, so an unknown slug
// is always a not-found error regardless of who asks.
func (r *Resolver) Require(ctx context.Context, userID uuid.UUID, slug string, perms ...enums.Permission) (*Access, error) {
	shop, err := r.shops.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}

	acc, err := r.resolve(ctx, userID, shop)
	if err != nil {
		return nil, err
	}
	if !acc.CanAll(perms...) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "missing permission")
	}
	return acc, nil
}

func (r *Resolver) resolve(ctx context.Context, userID uuid.UUID, shop *models.Shop) (*Access, error) {
	if shop.OwnerID == userID {
		return &Access{Shop: shop, Role: enums.ShopRoleOwner}, nil
	}

	manager, err := r.managers.GetManager(ctx, userID, shop.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no access to shop")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manager record")
	}
	return &Access{
		Shop:        shop,
		Role:        enums.ShopRoleManager,
		Permissions: manager.Permissions,
	}, nil
}
