package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceAfterDiscount(t *testing.T) {
	cases := []struct {
		name     string
		price    string
		discount string
		want     string
	}{
		{"no discount", "160", "0", "160"},
		{"flat 20", "100", "20", "80"},
		{"rounds to cents", "99.99", "33", "66.99"},
		{"full discount", "45.50", "100", "0"},
		{"fractional discount", "10", "12.5", "8.75"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price := decimal.RequireFromString(tc.price)
			discount := decimal.RequireFromString(tc.discount)
			want := decimal.RequireFromString(tc.want)
			if got := PriceAfterDiscount(price, discount); !got.Equal(want) {
				t.Fatalf("PriceAfterDiscount(%s, %s) = %s, want %s", tc.price, tc.discount, got, want)
			}
		})
	}
}
