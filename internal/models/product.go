package models

import "github.com/shopspring/decimal"

// Product is a single catalog entry. Products are supplied by an external
// static data source and are never mutated by the engine.
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Discount      int             `json:"discount"`
	Rating        float64         `json:"rating"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
	Image         string          `json:"image"`
}

// DefaultSize returns the size used when the caller does not pick one.
func (p Product) DefaultSize() string {
	if len(p.Sizes) == 0 {
		return ""
	}
	return p.Sizes[0]
}

// DefaultColor returns the color used when the caller does not pick one.
func (p Product) DefaultColor() string {
	if len(p.Colors) == 0 {
		return ""
	}
	return p.Colors[0]
}
