// Package shops implements shop lifecycle and settings management.
package shops

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/pkg/db"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

// slugAttempts bounds the disambiguation loop before giving up.
const slugAttempts = 50

type shopStore interface {
	CreateWithDefaultCategory(ctx context.Context, shop *models.Shop) (*models.Shop, error)
	SlugTaken(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, shop *models.Shop) (*models.Shop, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListOwnedBy(ctx context.Context, userID uuid.UUID) ([]models.Shop, error)
	ListManagedBy(ctx context.Context, userID uuid.UUID) ([]models.Shop, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type accessResolver interface {
	Require(ctx context.Context, userID uuid.UUID, slug string, perms ...enums.Permission) (*access.Access, error)
}

// CreateShopInput captures a new shop request.
type CreateShopInput struct {
	Name               string
	CurrencyCode       string
	DiscountPercentage decimal.Decimal
	TaxPercentage      decimal.Decimal
}

// UpdateShopInput captures the mutable settings. The slug never changes after
// creation, even when the name does.
type UpdateShopInput struct {
	Name               *string
	CurrencyCode       *string
	DiscountPercentage *decimal.Decimal
	TaxPercentage      *decimal.Decimal
}

// Service exposes shop operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateShopInput) (*ShopDTO, error)
	Get(ctx context.Context, userID uuid.UUID, slug string) (*ShopDTO, error)
	Update(ctx context.Context, userID uuid.UUID, slug string, input UpdateShopInput) (*ShopDTO, error)
	Delete(ctx context.Context, userID uuid.UUID, slug string) error
	ListMine(ctx context.Context, userID uuid.UUID) ([]ShopDTO, error)
}

type service struct {
	repo     shopStore
	users    userLoader
	resolver accessResolver
}

// NewService builds a shop service with the provided dependencies.
func NewService(repo shopStore, users userLoader, resolver accessResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("access resolver required")
	}
	return &service{repo: repo, users: users, resolver: resolver}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateShopInput) (*ShopDTO, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !owner.CanCreateShops {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account may not create shops")
	}

	if fields := validateShopFields(input.Name, input.DiscountPercentage, input.TaxPercentage); len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	slug, err := s.generateSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	shop := &models.Shop{
		Name:               input.Name,
		OwnerID:            ownerID,
		Slug:               slug,
		DiscountPercentage: input.DiscountPercentage,
		TaxPercentage:      input.TaxPercentage,
		CurrencyCode:       input.CurrencyCode,
	}
	created, err := s.repo.CreateWithDefaultCategory(ctx, shop)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			// Lost the race on the slug; the unique index is the backstop.
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "shop slug already taken, retry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}

	dto := ToDTO(created, enums.ShopRoleOwner)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, slug string) (*ShopDTO, error) {
	acc, err := s.resolver.Require(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(acc.Shop, acc.Role)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, slug string, input UpdateShopInput) (*ShopDTO, error) {
	acc, err := s.resolver.Require(ctx, userID, slug, enums.PermEditShopSettings)
	if err != nil {
		return nil, err
	}

	shop := acc.Shop
	if input.Name != nil {
		shop.Name = *input.Name
	}
	if input.CurrencyCode != nil {
		shop.CurrencyCode = *input.CurrencyCode
	}
	if input.DiscountPercentage != nil {
		shop.DiscountPercentage = *input.DiscountPercentage
	}
	if input.TaxPercentage != nil {
		shop.TaxPercentage = *input.TaxPercentage
	}

	if fields := validateShopFields(shop.Name, shop.DiscountPercentage, shop.TaxPercentage); len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	updated, err := s.repo.Update(ctx, shop)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop")
	}
	dto := ToDTO(updated, acc.Role)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID, slug string) error {
	acc, err := s.resolver.Require(ctx, userID, slug)
	if err != nil {
		return err
	}
	if acc.Role != enums.ShopRoleOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner may delete a shop")
	}
	if err := s.repo.Delete(ctx, acc.Shop.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shop")
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]ShopDTO, error) {
	owned, err := s.repo.ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owned shops")
	}
	managed, err := s.repo.ListManagedBy(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list managed shops")
	}

	out := make([]ShopDTO, 0, len(owned)+len(managed))
	for i := range owned {
		out = append(out, ToDTO(&owned[i], enums.ShopRoleOwner))
	}
	for i := range managed {
		out = append(out, ToDTO(&managed[i], enums.ShopRoleManager))
	}
	return out, nil
}

// generateSlug slugifies the name and appends -2, -3, ... until a free slug
// is found.
func (s *service) generateSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", pkgerrors.NewValidation(map[string]string{"name": "name must contain letters or digits"})
	}

	candidate := base
	for i := 2; i <= slugAttempts; i++ {
		taken, err := s.repo.SlugTaken(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not find a free slug")
}

var percentCeiling = decimal.NewFromInt(100)

func validateShopFields(name string, discount, tax decimal.Decimal) map[string]string {
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "name is required"
	}
	if discount.IsNegative() || discount.GreaterThan(percentCeiling) {
		fields["discount_percentage"] = "must be between 0 and 100"
	}
	if tax.IsNegative() || tax.GreaterThan(percentCeiling) {
		fields["tax_percentage"] = "must be between 0 and 100"
	}
	return fields
}
