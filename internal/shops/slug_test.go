package shops

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Corner Store", "corner-store"},
		{"punctuation", "Omar's Kiosk!", "omar-s-kiosk"},
		{"collapses runs", "a  --  b", "a-b"},
		{"trims edges", "  ...Fresh Market...  ", "fresh-market"},
		{"digits kept", "Shop 24/7", "shop-24-7"},
		{"already clean", "bodega", "bodega"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
