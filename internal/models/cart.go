package models

import "github.com/shopspring/decimal"

// CartLine is one row in the cart: a product snapshot taken at add time plus
// the chosen variant and quantity. Two lines for the same product with a
// different size or color are distinct.
type CartLine struct {
	ProductID     int             `json:"productId"`
	Name          string          `json:"name"`
	Brand         string          `json:"brand"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image"`
	Quantity      int             `json:"quantity"`
	SelectedSize  string          `json:"selectedSize"`
	SelectedColor string          `json:"selectedColor"`
}

// Matches reports whether the line carries the given product/variant key.
func (l CartLine) Matches(productID int, size, color string) bool {
	return l.ProductID == productID && l.SelectedSize == size && l.SelectedColor == color
}

// WishlistEntry is a saved product snapshot. The wishlist holds at most one
// entry per product id.
type WishlistEntry struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

// Totals are the derived cart amounts. Subtotal is in the catalog's native
// currency; Shipping is defined directly in the display currency; Total is
// the converted subtotal plus shipping.
type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay decimal.Decimal `json:"subtotalDisplay"`
	Shipping        decimal.Decimal `json:"shipping"`
	Total           decimal.Decimal `json:"total"`
}
