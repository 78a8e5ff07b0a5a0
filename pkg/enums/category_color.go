package enums

import "fmt"

// CategoryColor is the fixed display palette for product categories.
type CategoryColor string

const (
	CategoryColorGray   CategoryColor = "gray"
	CategoryColorRed    CategoryColor = "red"
	CategoryColorBlue   CategoryColor = "blue"
	CategoryColorGreen  CategoryColor = "green"
	CategoryColorYellow CategoryColor = "yellow"
	CategoryColorBrown  CategoryColor = "brown"
	CategoryColorOrange CategoryColor = "orange"
)

var validCategoryColors = []CategoryColor{
	CategoryColorGray,
	CategoryColorRed,
	CategoryColorBlue,
	CategoryColorGreen,
	CategoryColorYellow,
	CategoryColorBrown,
	CategoryColorOrange,
}

// CategoryColorHex maps each palette entry to its hex value for display.
var CategoryColorHex = map[CategoryColor]string{
	CategoryColorGray:   "#9e9e9e",
	CategoryColorRed:    "#ef4444",
	CategoryColorBlue:   "#3b82f6",
	CategoryColorGreen:  "#22c55e",
	CategoryColorYellow: "#eab308",
	CategoryColorBrown:  "#92400e",
	CategoryColorOrange: "#f97316",
}

// String implements fmt.Stringer.
func (c CategoryColor) String() string {
	return string(c)
}

// IsValid reports whether the color belongs to the palette.
func (c CategoryColor) IsValid() bool {
	for _, candidate := range validCategoryColors {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategoryColor converts a raw string into a CategoryColor.
func ParseCategoryColor(value string) (CategoryColor, error) {
	for _, candidate := range validCategoryColors {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category color %q", value)
}
