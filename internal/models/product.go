package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryTools              Category = "Tools"
	CategoryFasteners          Category = "Fasteners"
	CategoryFittings           Category = "Fittings"
	CategoryPlumbingElectrical Category = "Plumbing & Electrical"
	CategoryBuildingMaterials  Category = "Building Materials"
)

// CategoryAll is the listing pseudo-category that disables category filtering
const CategoryAll = "All"

// Categories returns the closed category set in display order
func Categories() []Category {
	return []Category{
		CategoryTools,
		CategoryFasteners,
		CategoryFittings,
		CategoryPlumbingElectrical,
		CategoryBuildingMaterials,
	}
}

// ParseCategory maps a raw value onto the category enumeration
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

const (
	MinRating = 0.0
	MaxRating = 5.0
)

type Product struct {
	ID          int64           `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Category    Category        `json:"category" yaml:"category"`
	Image       string          `json:"image" yaml:"image"`
	Description string          `json:"description" yaml:"description"`
	Rating      float64         `json:"rating" yaml:"rating"` // 0.0 - 5.0
	Specs       []string        `json:"specs,omitempty" yaml:"specs"`
}

// CartItem is a product line in the cart. Quantity never drops below 1.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price × quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
