package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

func (s *service) AddVariant(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID, input VariantInput) (*VariantDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermCreateProducts)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadProduct(ctx, acc.Shop.ID, productID); err != nil {
		return nil, err
	}

	fields, err := s.validateVariant(ctx, acc.Shop.ID, input, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	variant := buildVariant(input)
	variant.ProductID = productID
	created, err := s.repo.CreateVariant(ctx, &variant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
	}
	dto := variantToDTO(created)
	return &dto, nil
}

func (s *service) UpdateVariant(ctx context.Context, actorID uuid.UUID, slug string, variantID uuid.UUID, input VariantInput) (*VariantDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditProducts)
	if err != nil {
		return nil, err
	}

	variant, err := s.loadVariant(ctx, acc.Shop.ID, variantID)
	if err != nil {
		return nil, err
	}
	if variant.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}

	fields, err := s.validateVariant(ctx, acc.Shop.ID, input, variant.ID)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	variant.Name = input.Name
	variant.SKU = input.SKU
	variant.Barcode = input.Barcode
	variant.Price = input.Price
	variant.StockQuantity = input.StockQuantity
	variant.DiscountPercentage = input.normalizedDiscount()
	variant.PriceAfterDiscount = PriceAfterDiscount(variant.Price, variant.DiscountPercentage)
	variant.ReorderPoint = input.ReorderPoint

	updated, err := s.repo.UpdateVariant(ctx, variant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant")
	}
	dto := variantToDTO(updated)
	return &dto, nil
}

func (s *service) DeleteVariant(ctx context.Context, actorID uuid.UUID, slug string, variantID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermDeleteProducts)
	if err != nil {
		return err
	}
	variant, err := s.loadVariant(ctx, acc.Shop.ID, variantID)
	if err != nil {
		return err
	}
	if variant.IsDeleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if err := s.repo.SoftDeleteVariant(ctx, variant.ID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant")
	}
	return nil
}

func (s *service) GetVariant(ctx context.Context, actorID uuid.UUID, slug string, variantID uuid.UUID) (*VariantDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewProducts)
	if err != nil {
		return nil, err
	}
	variant, err := s.loadVariant(ctx, acc.Shop.ID, variantID)
	if err != nil {
		return nil, err
	}
	dto := variantToDTO(variant)
	return &dto, nil
}

func (s *service) loadVariant(ctx context.Context, shopID, variantID uuid.UUID) (*models.ProductVariant, error) {
	variant, err := s.repo.GetVariant(ctx, shopID, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	return variant, nil
}

// validateVariant combines the field-local rules with shop-scoped
// uniqueness, reporting every violation at once.
func (s *service) validateVariant(ctx context.Context, shopID uuid.UUID, input VariantInput, excludeID uuid.UUID) (map[string]string, error) {
	fields := validateVariantFields(input)

	if input.Barcode != "" {
		taken, err := s.repo.BarcodeTaken(ctx, shopID, input.Barcode, excludeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check barcode")
		}
		if taken {
			fields["barcode"] = "barcode must be unique within the shop"
		}
	}
	if input.SKU != "" {
		taken, err := s.repo.SKUTaken(ctx, shopID, input.SKU, excludeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check sku")
		}
		if taken {
			fields["sku"] = "sku must be unique within the shop"
		}
	}
	return fields, nil
}

// buildVariant maps validated input to a row, deriving the discounted price.
func buildVariant(input VariantInput) models.ProductVariant {
	discount := input.normalizedDiscount()
	return models.ProductVariant{
		Name:               input.Name,
		SKU:                input.SKU,
		Barcode:            input.Barcode,
		Price:              input.Price,
		StockQuantity:      input.StockQuantity,
		DiscountPercentage: discount,
		PriceAfterDiscount: PriceAfterDiscount(input.Price, discount),
		ReorderPoint:       input.ReorderPoint,
	}
}
