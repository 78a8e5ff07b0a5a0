package sales

import (
	"github.com/shopspring/decimal"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// ItemSubTotal derives a line item's sub total from its quantity and the unit
// price captured at sale time.
func ItemSubTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// SaleTotals recomputes the three sale aggregates from the current line items
// and the shop's discount and tax at recompute time. The cascade is
// total_amount, then the shop discount, then the shop tax on the discounted
// amount, each rounded to cents.
func SaleTotals(items []models.SaleProduct, shopDiscount, shopTax decimal.Decimal) (total, afterDiscount, afterTax decimal.Decimal) {
	total = decimal.Zero
	for i := range items {
		total = total.Add(items[i].SubTotal)
	}
	total = total.Round(2)
	afterDiscount = total.Mul(hundred.Sub(shopDiscount)).Div(hundred).Round(2)
	afterTax = afterDiscount.Mul(hundred.Add(shopTax)).Div(hundred).Round(2)
	return total, afterDiscount, afterTax
}

func applyTotals(sale *models.Sale, items []models.SaleProduct, shop *models.Shop) {
	sale.TotalAmount, sale.TotalAfterShopDiscount, sale.TotalAfterShopTax =
		SaleTotals(items, shop.DiscountPercentage, shop.TaxPercentage)
}
