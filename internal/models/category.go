package models

import "strings"

type Category string

const (
	CategoryLivingRoom Category = "living room"
	CategoryBedroom    Category = "bedroom"
	CategoryDining     Category = "dining"
	CategoryOffice     Category = "office"

	// CategoryAll is a browse filter only, never stored on a product.
	CategoryAll Category = "all"
)

var categories = []Category{CategoryLivingRoom, CategoryBedroom, CategoryDining, CategoryOffice}

// Categories returns the closed product category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c belongs to the product category set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label renders the category with a leading capital, e.g. "Living room".
func (c Category) Label() string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseFilter maps a browse query value to a filter; unknown values mean all.
func ParseFilter(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c.Valid() {
		return c
	}
	return CategoryAll
}
