// Package session owns one visitor's mutable storefront state: the cart, the
// wishlist and the current catalog view. Every mutation persists to the
// key-value store before returning, so persisted state is never older than
// what the caller just observed in memory.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"clothfit/internal/catalog"
	"clothfit/internal/kvstore"
	"clothfit/internal/models"
)

var (
	// ErrQuantityInvalid is returned for quantities below 1.
	ErrQuantityInvalid = errors.New("session: quantity must be at least 1")
	// ErrLineNotFound is returned when a removal or update references a cart
	// line that does not exist.
	ErrLineNotFound = errors.New("session: cart line not found")
)

// Pricing carries the totals parameters: the flat shipping fee (display
// currency) and the native-to-display exchange rate.
type Pricing struct {
	ShippingFee  decimal.Decimal
	ExchangeRate decimal.Decimal
}

// Session is a single visitor's state. Concurrent requests can carry the same
// session cookie (multiple tabs, retries), so every exported method holds the
// session mutex for its full read-mutate-persist cycle.
type Session struct {
	ID string

	catalog *catalog.Catalog
	store   kvstore.Store
	pricing Pricing

	mu       sync.Mutex
	cart     []models.CartLine
	wishlist []models.WishlistEntry
	view     ViewState
}

// ViewState is the visitor's current catalog view selection.
type ViewState struct {
	Filter   string
	Sort     catalog.Sort
	Search   string
	Page     int
	PageSize int
}

// ViewResult is one rendered page of the current view.
type ViewResult struct {
	Products   []models.Product
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

func New(id string, cat *catalog.Catalog, store kvstore.Store, pricing Pricing, pageSize int) *Session {
	return &Session{
		ID:      id,
		catalog: cat,
		store:   store,
		pricing: pricing,
		view: ViewState{
			Filter:   catalog.FilterAll,
			Sort:     catalog.SortDefault,
			Page:     1,
			PageSize: pageSize,
		},
	}
}

func (s *Session) cartKey() string     { return "cart:" + s.ID }
func (s *Session) wishlistKey() string { return "wishlist:" + s.ID }

// Load rehydrates the cart and wishlist from the store. Missing keys leave
// the collections empty.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Get(ctx, s.cartKey(), &s.cart); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return fmt.Errorf("load cart: %w", err)
	}
	if err := s.store.Get(ctx, s.wishlistKey(), &s.wishlist); err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return fmt.Errorf("load wishlist: %w", err)
	}
	return nil
}

// persist writes the cart and wishlist together. On failure the in-memory
// state the caller passed in is not committed, keeping mutations
// all-or-nothing. Callers hold the session mutex.
func (s *Session) persist(ctx context.Context, cart []models.CartLine, wishlist []models.WishlistEntry) error {
	if cart == nil {
		cart = []models.CartLine{}
	}
	if wishlist == nil {
		wishlist = []models.WishlistEntry{}
	}
	if err := s.store.SetMulti(ctx, map[string]interface{}{
		s.cartKey():     cart,
		s.wishlistKey(): wishlist,
	}); err != nil {
		return fmt.Errorf("persist session state: %w", err)
	}
	s.cart = cart
	s.wishlist = wishlist
	return nil
}

// AddToCart merges the requested quantity into the line matching
// (productId, size, color), appending a fresh snapshot line when no match
// exists. Empty size/color default to the product's first option.
func (s *Session) AddToCart(ctx context.Context, productID, quantity int, size, color string) error {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return err
	}
	if quantity < 1 {
		return ErrQuantityInvalid
	}
	if size == "" {
		size = product.DefaultSize()
	}
	if color == "" {
		color = product.DefaultColor()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := append([]models.CartLine(nil), s.cart...)
	merged := false
	for i, line := range cart {
		if line.Matches(productID, size, color) {
			cart[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart = append(cart, models.CartLine{
			ProductID:     product.ID,
			Name:          product.Name,
			Brand:         product.Brand,
			Price:         product.Price,
			Image:         product.Image,
			Quantity:      quantity,
			SelectedSize:  size,
			SelectedColor: color,
		})
	}

	return s.persist(ctx, cart, s.wishlist)
}

// RemoveLine removes the single line matching (productId, size, color).
func (s *Session) RemoveLine(ctx context.Context, productID int, size, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := make([]models.CartLine, 0, len(s.cart))
	removed := false
	for _, line := range s.cart {
		if line.Matches(productID, size, color) {
			removed = true
			continue
		}
		cart = append(cart, line)
	}
	if !removed {
		return ErrLineNotFound
	}
	return s.persist(ctx, cart, s.wishlist)
}

// RemoveProduct removes every line for the product id regardless of variant.
func (s *Session) RemoveProduct(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := make([]models.CartLine, 0, len(s.cart))
	removed := false
	for _, line := range s.cart {
		if line.ProductID == productID {
			removed = true
			continue
		}
		cart = append(cart, line)
	}
	if !removed {
		return ErrLineNotFound
	}
	return s.persist(ctx, cart, s.wishlist)
}

// SetQuantity replaces the quantity of the line matching the key. Quantities
// below 1 are rejected; lines never reach zero quantity.
func (s *Session) SetQuantity(ctx context.Context, productID int, size, color string, quantity int) error {
	if quantity < 1 {
		return ErrQuantityInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := append([]models.CartLine(nil), s.cart...)
	for i, line := range cart {
		if line.Matches(productID, size, color) {
			cart[i].Quantity = quantity
			return s.persist(ctx, cart, s.wishlist)
		}
	}
	return ErrLineNotFound
}

// ToggleWishlist adds the product when absent and removes it when present,
// reporting which happened.
func (s *Session) ToggleWishlist(ctx context.Context, productID int) (string, error) {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wishlist := make([]models.WishlistEntry, 0, len(s.wishlist)+1)
	removed := false
	for _, entry := range s.wishlist {
		if entry.ProductID == productID {
			removed = true
			continue
		}
		wishlist = append(wishlist, entry)
	}
	if !removed {
		wishlist = append(wishlist, models.WishlistEntry{
			ProductID: product.ID,
			Name:      product.Name,
			Brand:     product.Brand,
			Price:     product.Price,
			Image:     product.Image,
		})
	}

	if err := s.persist(ctx, s.cart, wishlist); err != nil {
		return "", err
	}
	if removed {
		return "removed", nil
	}
	return "added", nil
}

// IsWishlisted reports whether the product is in the wishlist.
func (s *Session) IsWishlisted(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.wishlist {
		if entry.ProductID == productID {
			return true
		}
	}
	return false
}

// Cart returns a copy of the cart lines.
func (s *Session) Cart() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartLine(nil), s.cart...)
}

// Wishlist returns a copy of the wishlist entries.
func (s *Session) Wishlist() []models.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WishlistEntry(nil), s.wishlist...)
}

// CartCount is the sum of line quantities, as shown on the cart badge.
func (s *Session) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, line := range s.cart {
		count += line.Quantity
	}
	return count
}

// Totals computes the derived cart amounts. The subtotal accumulates in the
// catalog's native currency; the flat shipping fee applies only to non-empty
// carts and is already in the display currency; the total converts the
// subtotal by the exchange rate before adding shipping.
func (s *Session) Totals() models.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	subtotal := decimal.Zero
	for _, line := range s.cart {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	shipping := decimal.Zero
	if len(s.cart) > 0 {
		shipping = s.pricing.ShippingFee
	}

	subtotalDisplay := subtotal.Mul(s.pricing.ExchangeRate).Round(2)
	return models.Totals{
		Subtotal:        subtotal,
		SubtotalDisplay: subtotalDisplay,
		Shipping:        shipping,
		Total:           subtotalDisplay.Add(shipping),
	}
}

// Clear empties the cart and wishlist and persists the empty collections.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, []models.CartLine{}, []models.WishlistEntry{})
}

// SetFilter selects a category ("all" for everything) and resets to page 1.
func (s *Session) SetFilter(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Filter = category
	s.view.Page = 1
}

// SetSort selects an ordering and resets to page 1.
func (s *Session) SetSort(sortBy catalog.Sort) error {
	if !sortBy.Valid() {
		return fmt.Errorf("session: unknown sort %q", sortBy)
	}
	if sortBy == "" {
		sortBy = catalog.SortDefault
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Sort = sortBy
	s.view.Page = 1
	return nil
}

// SetSearch sets the search term and resets to page 1.
func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Search = term
	s.view.Page = 1
}

// SetPageSize changes the page length and re-clamps the current page.
func (s *Session) SetPageSize(size int) {
	if size < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.PageSize = size
	s.setPage(s.view.Page)
}

// SetPage moves to the requested page, clamped into the valid range for the
// current filtered set.
func (s *Session) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPage(page)
}

func (s *Session) setPage(page int) {
	total := len(s.currentResult())
	pages := catalog.Pages(total, s.view.PageSize)
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	s.view.Page = page
}

// View returns the current page of the filtered, searched and sorted catalog.
func (s *Session) View() ViewResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.currentResult()
	return ViewResult{
		Products:   catalog.Paginate(result, s.view.Page, s.view.PageSize),
		Page:       s.view.Page,
		PageSize:   s.view.PageSize,
		TotalItems: len(result),
		TotalPages: catalog.Pages(len(result), s.view.PageSize),
	}
}

// ViewState returns the current view selection.
func (s *Session) ViewState() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) currentResult() []models.Product {
	return s.catalog.Run(catalog.Query{
		Category: s.view.Filter,
		Search:   s.view.Search,
		Sort:     s.view.Sort,
	})
}
