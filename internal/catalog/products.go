package catalog

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

func (s *service) CreateProduct(ctx context.Context, actorID uuid.UUID, slug string, input ProductInput) (*ProductDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermCreateProducts)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if input.Name == "" {
		fields["name"] = "name is required"
	}

	categoryID, err := s.resolveCategoryID(ctx, acc.Shop.ID, input.CategoryID, fields)
	if err != nil {
		return nil, err
	}

	variants := make([]models.ProductVariant, 0, len(input.Variants))
	for i, variantInput := range input.Variants {
		variantFields, err := s.validateVariant(ctx, acc.Shop.ID, variantInput, uuid.Nil)
		if err != nil {
			return nil, err
		}
		for field, message := range variantFields {
			fields[fmt.Sprintf("variants[%d].%s", i, field)] = message
		}
		variants = append(variants, buildVariant(variantInput))
	}
	// Duplicates inside the request never reach the per-row uniqueness query.
	for field, message := range intraRequestDuplicates(input.Variants) {
		fields[field] = message
	}

	if len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	product := &models.Product{
		ShopID:     acc.Shop.ID,
		Name:       input.Name,
		CategoryID: categoryID,
	}
	created, err := s.repo.CreateProductWithVariants(ctx, product, variants)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	full, err := s.repo.GetProduct(ctx, acc.Shop.ID, created.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	dto := productToDTO(full)
	return &dto, nil
}

func (s *service) GetProduct(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID) (*ProductDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewProducts)
	if err != nil {
		return nil, err
	}
	product, err := s.loadProduct(ctx, acc.Shop.ID, productID)
	if err != nil {
		return nil, err
	}
	dto := productToDTO(product)
	return &dto, nil
}

func (s *service) ListProducts(ctx context.Context, actorID uuid.UUID, slug string) ([]ProductDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewProducts)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListProducts(ctx, acc.Shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, productToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateProduct(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditProducts)
	if err != nil {
		return nil, err
	}

	product, err := s.loadProduct(ctx, acc.Shop.ID, productID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if input.Name != nil {
		if *input.Name == "" {
			fields["name"] = "name is required"
		} else {
			product.Name = *input.Name
		}
	}
	if input.CategoryID != nil {
		categoryID, err := s.resolveCategoryID(ctx, acc.Shop.ID, input.CategoryID, fields)
		if err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
	}
	if len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	// Strip loaded associations so Save touches only the product row.
	product.Category = nil
	product.Variants = nil
	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	full, err := s.loadProduct(ctx, acc.Shop.ID, product.ID)
	if err != nil {
		return nil, err
	}
	dto := productToDTO(full)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermDeleteProducts)
	if err != nil {
		return err
	}
	product, err := s.loadProduct(ctx, acc.Shop.ID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, shopID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetProduct(ctx, shopID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// resolveCategoryID validates an explicit category against the shop, or
// falls back to the guaranteed default when none was given.
func (s *service) resolveCategoryID(ctx context.Context, shopID uuid.UUID, categoryID *uuid.UUID, fields map[string]string) (*uuid.UUID, error) {
	if categoryID != nil {
		if _, err := s.repo.GetCategory(ctx, shopID, *categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fields["category_id"] = "category does not belong to this shop"
				return nil, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
		return categoryID, nil
	}

	fallback, err := s.repo.EnsureDefaultCategory(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure default category")
	}
	return &fallback.ID, nil
}

// intraRequestDuplicates flags barcodes and SKUs repeated between variants of
// the same create request.
func intraRequestDuplicates(variants []VariantInput) map[string]string {
	fields := map[string]string{}
	barcodes := map[string]int{}
	skus := map[string]int{}
	for i, variant := range variants {
		if variant.Barcode != "" {
			if _, seen := barcodes[variant.Barcode]; seen {
				fields[fmt.Sprintf("variants[%d].barcode", i)] = "barcode repeated in request"
			}
			barcodes[variant.Barcode] = i
		}
		if variant.SKU != "" {
			if _, seen := skus[variant.SKU]; seen {
				fields[fmt.Sprintf("variants[%d].sku", i)] = "sku repeated in request"
			}
			skus[variant.SKU] = i
		}
	}
	return fields
}
