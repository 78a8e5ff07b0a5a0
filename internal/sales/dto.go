package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/types"
)

// SaleDTO is the public shape of a sale with its line items and aggregates.
type SaleDTO struct {
	ID                     uuid.UUID     `json:"id"`
	AddedBy                string        `json:"added_by,omitempty"`
	TotalAmount            string        `json:"total_amount"`
	TotalAfterShopDiscount string        `json:"total_after_shop_discount"`
	TotalAfterShopTax      string        `json:"total_after_shop_tax"`
	Items                  []SaleItemDTO `json:"items"`
	CreatedAt              time.Time     `json:"created_at"`
}

// SaleItemDTO is the public shape of one line item.
type SaleItemDTO struct {
	ID               uuid.UUID `json:"id"`
	ProductVariantID uuid.UUID `json:"product_variant_id"`
	Quantity         int       `json:"quantity"`
	UnitPrice        string    `json:"unit_price"`
	SubTotal         string    `json:"sub_total"`
}

// SalesPage is one cursor page of sales.
type SalesPage struct {
	Sales      []SaleDTO `json:"sales"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// WindowTotalsDTO carries quantity and revenue for one reporting window.
type WindowTotalsDTO struct {
	Quantity int64  `json:"quantity"`
	Revenue  string `json:"revenue"`
}

// StatsDTO reports sales totals over the five reporting windows.
type StatsDTO struct {
	AllTime     WindowTotalsDTO `json:"all_time"`
	YearToDate  WindowTotalsDTO `json:"ytd"`
	MonthToDate WindowTotalsDTO `json:"mtd"`
	WeekToDate  WindowTotalsDTO `json:"wtd"`
	DayToDate   WindowTotalsDTO `json:"dtd"`
}

// DashboardDTO is the shop revenue summary shown on the dashboard.
type DashboardDTO struct {
	Today   string `json:"today"`
	Week    string `json:"week"`
	Month   string `json:"month"`
	Year    string `json:"year"`
	AllTime string `json:"all_time"`
}

func saleToDTO(sale *models.Sale) SaleDTO {
	dto := SaleDTO{
		ID:                     sale.ID,
		AddedBy:                sale.AddedBy,
		TotalAmount:            types.DisplayAmount(sale.TotalAmount),
		TotalAfterShopDiscount: types.DisplayAmount(sale.TotalAfterShopDiscount),
		TotalAfterShopTax:      types.DisplayAmount(sale.TotalAfterShopTax),
		Items:                  make([]SaleItemDTO, 0, len(sale.Items)),
		CreatedAt:              sale.CreatedAt,
	}
	for i := range sale.Items {
		dto.Items = append(dto.Items, itemToDTO(&sale.Items[i]))
	}
	return dto
}

func itemToDTO(item *models.SaleProduct) SaleItemDTO {
	return SaleItemDTO{
		ID:               item.ID,
		ProductVariantID: item.ProductVariantID,
		Quantity:         item.Quantity,
		UnitPrice:        types.DisplayAmount(item.UnitPrice),
		SubTotal:         types.DisplayAmount(item.SubTotal),
	}
}
