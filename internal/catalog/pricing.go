package catalog

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PriceAfterDiscount derives the stored discounted price:
// price × (100 − discount) / 100, quantized to two decimal places.
func PriceAfterDiscount(price, discount decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(discount)).Div(hundred).Round(2)
}
