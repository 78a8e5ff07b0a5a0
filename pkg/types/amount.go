package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayAmount renders a decimal with trailing zeros trimmed for UI use.
// Stored values keep their full scale; only the rendered string is shortened.
func DisplayAmount(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
