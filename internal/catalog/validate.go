package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/omarashraf/kasher-backend/pkg/barcode"
)

// VariantInput carries the caller-supplied variant fields. The derived
// price_after_discount is never part of the input.
type VariantInput struct {
	Name               string
	SKU                string
	Barcode            string
	Price              decimal.Decimal
	StockQuantity      int
	DiscountPercentage *decimal.Decimal
	ReorderPoint       *int
}

// normalizedDiscount treats an absent discount as zero.
func (in VariantInput) normalizedDiscount() decimal.Decimal {
	if in.DiscountPercentage == nil {
		return decimal.Zero
	}
	return *in.DiscountPercentage
}

// validateVariantFields checks every field-local rule and returns the full
// violation map; uniqueness checks are layered on by the service.
func validateVariantFields(in VariantInput) map[string]string {
	fields := map[string]string{}

	if in.Barcode != "" && !barcode.IsValid(in.Barcode) {
		fields["barcode"] = "incorrect barcode format or check digit"
	}
	if in.Barcode == "" {
		fields["barcode"] = "barcode is required"
	}
	if in.SKU == "" {
		fields["sku"] = "sku cannot be empty"
	}

	discount := in.normalizedDiscount()
	if discount.GreaterThan(hundred) {
		fields["discount_percentage"] = "discount percentage cannot exceed 100"
	}
	if discount.IsNegative() {
		fields["discount_percentage"] = "discount percentage cannot be negative"
	}

	if in.Price.IsNegative() {
		fields["price"] = "price cannot be negative"
	}
	if in.StockQuantity < 0 {
		fields["stock_quantity"] = "stock quantity cannot be negative"
	}

	return fields
}
