// Package catalog implements categories, products, variants, and attributes
// for one shop, including the variant pricing rules.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
)

type categoryStore interface {
	EnsureDefaultCategory(ctx context.Context, shopID uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	GetCategory(ctx context.Context, shopID, categoryID uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, shopID uuid.UUID) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	DeleteCategoryReassign(ctx context.Context, categoryID, fallbackID uuid.UUID) error
}

type productStore interface {
	CreateProductWithVariants(ctx context.Context, product *models.Product, variants []models.ProductVariant) (*models.Product, error)
	GetProduct(ctx context.Context, shopID, productID uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, shopID uuid.UUID) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

type variantStore interface {
	GetVariant(ctx context.Context, shopID, variantID uuid.UUID) (*models.ProductVariant, error)
	CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error)
	UpdateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error)
	SoftDeleteVariant(ctx context.Context, variantID uuid.UUID, at time.Time) error
	BarcodeTaken(ctx context.Context, shopID uuid.UUID, barcode string, excludeID uuid.UUID) (bool, error)
	SKUTaken(ctx context.Context, shopID uuid.UUID, sku string, excludeID uuid.UUID) (bool, error)
}

type attributeStore interface {
	CreateAttribute(ctx context.Context, attribute *models.ProductAttribute) (*models.ProductAttribute, error)
	ListAttributes(ctx context.Context, shopID uuid.UUID) ([]models.ProductAttribute, error)
	GetAttribute(ctx context.Context, shopID, attributeID uuid.UUID) (*models.ProductAttribute, error)
	DeleteAttribute(ctx context.Context, attributeID uuid.UUID) error
	CreateAttributeValue(ctx context.Context, value *models.ProductAttributeValue) (*models.ProductAttributeValue, error)
	GetAttributeValue(ctx context.Context, shopID, valueID uuid.UUID) (*models.ProductAttributeValue, error)
	AttributeValueInUse(ctx context.Context, valueID uuid.UUID) (bool, error)
	DeleteAttributeValue(ctx context.Context, valueID uuid.UUID) error
	AssignAttributeValue(ctx context.Context, link *models.ProductVariantAttributeValue) error
	UnassignAttributeValue(ctx context.Context, variantID, valueID uuid.UUID) error
}

// catalogStore is the full persistence surface the service needs; the
// concrete Repository satisfies it.
type catalogStore interface {
	categoryStore
	productStore
	variantStore
	attributeStore
}

type accessResolver interface {
	Require(ctx context.Context, userID uuid.UUID, slug string, perms ...enums.Permission) (*access.Access, error)
}

// CategoryInput captures a category create/update request.
type CategoryInput struct {
	Name  string
	Color enums.CategoryColor
}

// ProductInput captures a product create request.
type ProductInput struct {
	Name       string
	CategoryID *uuid.UUID
	Variants   []VariantInput
}

// UpdateProductInput captures the mutable product fields.
type UpdateProductInput struct {
	Name       *string
	CategoryID *uuid.UUID
}

// Service exposes catalog operations.
type Service interface {
	ListCategories(ctx context.Context, actorID uuid.UUID, slug string) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, actorID uuid.UUID, slug string, input CategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, actorID uuid.UUID, slug string, categoryID uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, actorID uuid.UUID, slug string, categoryID uuid.UUID) error
	EnsureDefaultCategory(ctx context.Context, actorID uuid.UUID, slug string) (*CategoryDTO, error)

	CreateProduct(ctx context.Context, actorID uuid.UUID, slug string, input ProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, actorID uuid.UUID, slug string) ([]ProductDTO, error)
	UpdateProduct(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID) error

	AddVariant(ctx context.Context, actorID uuid.UUID, slug string, productID uuid.UUID, input VariantInput) (*VariantDTO, error)
	UpdateVariant(ctx context.Context, actorID uuid.UUID, slug string, variantID uuid.UUID, input VariantInput) (*VariantDTO, error)
	DeleteVariant(ctx context.Context, actorID uuid.UUID, slug string, variantID uuid.UUID) error
	GetVariant(ctx context.Context, actorID uuid.UUID, slug string, variantID uuid.UUID) (*VariantDTO, error)

	CreateAttribute(ctx context.Context, actorID uuid.UUID, slug string, name string) (*AttributeDTO, error)
	ListAttributes(ctx context.Context, actorID uuid.UUID, slug string) ([]AttributeDTO, error)
	DeleteAttribute(ctx context.Context, actorID uuid.UUID, slug string, attributeID uuid.UUID) error
	AddAttributeValue(ctx context.Context, actorID uuid.UUID, slug string, attributeID uuid.UUID, name string) (*AttributeValueDTO, error)
	DeleteAttributeValue(ctx context.Context, actorID uuid.UUID, slug string, valueID uuid.UUID) error
	AssignAttributeValue(ctx context.Context, actorID uuid.UUID, slug string, variantID, valueID uuid.UUID) error
	UnassignAttributeValue(ctx context.Context, actorID uuid.UUID, slug string, variantID, valueID uuid.UUID) error
}

type service struct {
	repo     catalogStore
	resolver accessResolver
	now      func() time.Time
}

// NewService builds a catalog service with the provided dependencies.
func NewService(repo catalogStore, resolver accessResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("access resolver required")
	}
	return &service{repo: repo, resolver: resolver, now: time.Now}, nil
}
