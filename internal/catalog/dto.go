package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	"github.com/omarashraf/kasher-backend/pkg/types"
)

// CategoryDTO is the public shape of a category.
type CategoryDTO struct {
	ID       uuid.UUID           `json:"id"`
	Name     string              `json:"name"`
	Color    enums.CategoryColor `json:"color"`
	ColorHex string              `json:"color_hex"`
}

// ProductDTO is the public shape of a product with its live variants.
type ProductDTO struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Category  *CategoryDTO `json:"category,omitempty"`
	Variants  []VariantDTO `json:"variants"`
	CreatedAt time.Time    `json:"created_at"`
}

// VariantDTO is the public shape of a product variant.
type VariantDTO struct {
	ID                  uuid.UUID  `json:"id"`
	ProductID           uuid.UUID  `json:"product_id"`
	Name                string     `json:"name,omitempty"`
	SKU                 string     `json:"sku"`
	Barcode             string     `json:"barcode"`
	Price               string     `json:"price"`
	StockQuantity       int        `json:"stock_quantity"`
	DiscountPercentage  string     `json:"discount_percentage"`
	PriceAfterDiscount  string     `json:"price_after_discount"`
	ReorderPoint        *int       `json:"reorder_point,omitempty"`
	IsDeleted           bool       `json:"is_deleted"`
	MarkedForDeletionAt *time.Time `json:"marked_for_deletion_at,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// AttributeDTO is the public shape of an attribute and its values.
type AttributeDTO struct {
	ID     uuid.UUID           `json:"id"`
	Name   string              `json:"name"`
	Values []AttributeValueDTO `json:"values"`
}

// AttributeValueDTO is the public shape of one attribute value.
type AttributeValueDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func categoryToDTO(category *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:       category.ID,
		Name:     category.Name,
		Color:    category.Color,
		ColorHex: enums.CategoryColorHex[category.Color],
	}
}

func productToDTO(product *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:        product.ID,
		Name:      product.Name,
		Variants:  make([]VariantDTO, 0, len(product.Variants)),
		CreatedAt: product.CreatedAt,
	}
	if product.Category != nil {
		category := categoryToDTO(product.Category)
		dto.Category = &category
	}
	for i := range product.Variants {
		dto.Variants = append(dto.Variants, variantToDTO(&product.Variants[i]))
	}
	return dto
}

func variantToDTO(variant *models.ProductVariant) VariantDTO {
	return VariantDTO{
		ID:                  variant.ID,
		ProductID:           variant.ProductID,
		Name:                variant.Name,
		SKU:                 variant.SKU,
		Barcode:             variant.Barcode,
		Price:               types.DisplayAmount(variant.Price),
		StockQuantity:       variant.StockQuantity,
		DiscountPercentage:  types.DisplayAmount(variant.DiscountPercentage),
		PriceAfterDiscount:  types.DisplayAmount(variant.PriceAfterDiscount),
		ReorderPoint:        variant.ReorderPoint,
		IsDeleted:           variant.IsDeleted,
		MarkedForDeletionAt: variant.MarkedForDeletionAt,
		UpdatedAt:           variant.UpdatedAt,
	}
}

func attributeToDTO(attribute *models.ProductAttribute) AttributeDTO {
	dto := AttributeDTO{
		ID:     attribute.ID,
		Name:   attribute.Name,
		Values: make([]AttributeValueDTO, 0, len(attribute.Values)),
	}
	for _, value := range attribute.Values {
		dto.Values = append(dto.Values, AttributeValueDTO{ID: value.ID, Name: value.Name})
	}
	return dto
}
