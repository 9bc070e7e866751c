package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"clothfit/internal/catalog"
	"clothfit/internal/kvstore"
	"clothfit/internal/models"
)

func price(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]models.Product{
		{ID: 1, Name: "Classic Tee", Brand: "UrbanWear", Category: "Men", Price: price("10.00"), Sizes: []string{"M", "L"}, Colors: []string{"Black", "White"}},
		{ID: 2, Name: "Summer Dress", Brand: "Bella", Category: "Women", Price: price("25.50"), Sizes: []string{"S"}, Colors: []string{"Red"}},
		{ID: 3, Name: "Denim Jacket", Brand: "UrbanWear", Category: "Men", Price: price("40.00"), Sizes: []string{"L"}, Colors: []string{"Blue"}},
	})
}

func testPricing() Pricing {
	return Pricing{
		ShippingFee:  price("50.00"),
		ExchangeRate: price("83"),
	}
}

func newTestSession(t *testing.T, store kvstore.Store) *Session {
	t.Helper()
	sess := New("test-session", testCatalog(), store, testPricing(), 12)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("load session: %v", err)
	}
	return sess
}

func TestAddToCartMergesSameVariant(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	if err := sess.AddToCart(ctx, 1, 1, "M", "Black"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := sess.AddToCart(ctx, 1, 1, "M", "Black"); err != nil {
		t.Fatalf("second add: %v", err)
	}

	cart := sess.Cart()
	if len(cart) != 1 {
		t.Fatalf("expected one merged line, got %d", len(cart))
	}
	if cart[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart[0].Quantity)
	}
}

func TestAddToCartDistinctSizesMakeDistinctLines(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	if err := sess.AddToCart(ctx, 1, 1, "M", "Black"); err != nil {
		t.Fatalf("add M: %v", err)
	}
	if err := sess.AddToCart(ctx, 1, 1, "L", "Black"); err != nil {
		t.Fatalf("add L: %v", err)
	}

	if got := len(sess.Cart()); got != 2 {
		t.Fatalf("expected two lines, got %d", got)
	}
}

func TestAddToCartDefaultsToFirstVariant(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	if err := sess.AddToCart(ctx, 1, 1, "", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	line := sess.Cart()[0]
	if line.SelectedSize != "M" || line.SelectedColor != "Black" {
		t.Fatalf("expected default variant M/Black, got %s/%s", line.SelectedSize, line.SelectedColor)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	err := sess.AddToCart(ctx, 99, 1, "", "")
	if !errors.Is(err, catalog.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if len(sess.Cart()) != 0 {
		t.Fatal("failed add must not change the cart")
	}
}

func TestAddToCartRejectsZeroQuantity(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	if err := sess.AddToCart(ctx, 1, 0, "", ""); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}
}

func TestRemoveLineKeepsOtherVariants(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	_ = sess.AddToCart(ctx, 1, 1, "M", "Black")
	_ = sess.AddToCart(ctx, 1, 1, "L", "Black")

	if err := sess.RemoveLine(ctx, 1, "M", "Black"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	cart := sess.Cart()
	if len(cart) != 1 || cart[0].SelectedSize != "L" {
		t.Fatalf("expected only the L line to remain, got %+v", cart)
	}

	if err := sess.RemoveLine(ctx, 1, "M", "Black"); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestRemoveProductDropsAllVariants(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	_ = sess.AddToCart(ctx, 1, 1, "M", "Black")
	_ = sess.AddToCart(ctx, 1, 1, "L", "White")
	_ = sess.AddToCart(ctx, 2, 1, "", "")

	if err := sess.RemoveProduct(ctx, 1); err != nil {
		t.Fatalf("remove product: %v", err)
	}

	cart := sess.Cart()
	if len(cart) != 1 || cart[0].ProductID != 2 {
		t.Fatalf("expected only product 2 to remain, got %+v", cart)
	}
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	_ = sess.AddToCart(ctx, 1, 1, "M", "Black")

	if err := sess.SetQuantity(ctx, 1, "M", "Black", 5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if got := sess.Cart()[0].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}

	if err := sess.SetQuantity(ctx, 1, "M", "Black", 0); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}
	if err := sess.SetQuantity(ctx, 2, "S", "Red", 1); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestToggleWishlist(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	action, err := sess.ToggleWishlist(ctx, 2)
	if err != nil || action != "added" {
		t.Fatalf("first toggle: action=%q err=%v", action, err)
	}
	if !sess.IsWishlisted(2) {
		t.Fatal("expected product 2 in wishlist")
	}

	action, err = sess.ToggleWishlist(ctx, 2)
	if err != nil || action != "removed" {
		t.Fatalf("second toggle: action=%q err=%v", action, err)
	}
	if len(sess.Wishlist()) != 0 {
		t.Fatal("toggle pair must be a net no-op")
	}

	if _, err := sess.ToggleWishlist(ctx, 99); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t, kvstore.NewMemoryStore())

	empty := sess.Totals()
	if !empty.Subtotal.IsZero() || !empty.Shipping.IsZero() || !empty.Total.IsZero() {
		t.Fatalf("empty cart totals must be zero, got %+v", empty)
	}

	_ = sess.AddToCart(ctx, 1, 2, "M", "Black") // 2 x 10.00
	_ = sess.AddToCart(ctx, 2, 1, "", "")       // 1 x 25.50

	totals := sess.Totals()
	if !totals.Subtotal.Equal(price("45.50")) {
		t.Fatalf("subtotal: got %s, want 45.50", totals.Subtotal)
	}
	if !totals.Shipping.Equal(price("50.00")) {
		t.Fatalf("shipping: got %s, want 50.00", totals.Shipping)
	}
	// 45.50 * 83 = 3776.50; + 50.00 shipping = 3826.50
	if !totals.SubtotalDisplay.Equal(price("3776.50")) {
		t.Fatalf("display subtotal: got %s, want 3776.50", totals.SubtotalDisplay)
	}
	if !totals.Total.Equal(price("3826.50")) {
		t.Fatalf("total: got %s, want 3826.50", totals.Total)
	}
}

func TestMutationsPersistImmediately(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	sess := newTestSession(t, store)

	_ = sess.AddToCart(ctx, 1, 2, "M", "Black")
	_, _ = sess.ToggleWishlist(ctx, 2)

	// A fresh session against the same store must see the same state.
	rehydrated := newTestSession(t, store)
	if got := len(rehydrated.Cart()); got != 1 {
		t.Fatalf("rehydrated cart: got %d lines, want 1", got)
	}
	if rehydrated.Cart()[0].Quantity != 2 {
		t.Fatalf("rehydrated quantity: got %d, want 2", rehydrated.Cart()[0].Quantity)
	}
	if !rehydrated.IsWishlisted(2) {
		t.Fatal("rehydrated wishlist missing product 2")
	}
}

func TestClearEmptiesAndPersists(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	sess := newTestSession(t, store)

	_ = sess.AddToCart(ctx, 1, 1, "", "")
	_, _ = sess.ToggleWishlist(ctx, 2)

	if err := sess.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(sess.Cart()) != 0 || len(sess.Wishlist()) != 0 {
		t.Fatal("clear must empty both collections")
	}

	rehydrated := newTestSession(t, store)
	if len(rehydrated.Cart()) != 0 || len(rehydrated.Wishlist()) != 0 {
		t.Fatal("cleared state must be persisted")
	}
}

func TestViewStateResetsAndClampsPage(t *testing.T) {
	sess := New("view-test", testCatalog(), kvstore.NewMemoryStore(), testPricing(), 2)

	sess.SetPage(2)
	if sess.ViewState().Page != 2 {
		t.Fatalf("expected page 2, got %d", sess.ViewState().Page)
	}

	sess.SetFilter("Men")
	if sess.ViewState().Page != 1 {
		t.Fatal("filter change must reset to page 1")
	}

	// Two Men products at page size 2 gives a single page.
	sess.SetPage(9)
	if sess.ViewState().Page != 1 {
		t.Fatalf("page must clamp into range, got %d", sess.ViewState().Page)
	}

	if err := sess.SetSort("price-low"); err != nil {
		t.Fatalf("set sort: %v", err)
	}
	if err := sess.SetSort("bogus"); err == nil {
		t.Fatal("expected error for unknown sort")
	}

	view := sess.View()
	if view.TotalItems != 2 || view.TotalPages != 1 {
		t.Fatalf("view metadata wrong: %+v", view)
	}
	if view.Products[0].ID != 1 {
		t.Fatalf("price-low first product should be 1, got %d", view.Products[0].ID)
	}

	sess.SetPageSize(1)
	view = sess.View()
	if view.PageSize != 1 || view.TotalPages != 2 || len(view.Products) != 1 {
		t.Fatalf("page size change not applied: %+v", view)
	}
	sess.SetPageSize(0)
	if sess.ViewState().PageSize != 1 {
		t.Fatal("invalid page size must be ignored")
	}
}

// Two browser tabs (or a retried request) hit one session with the same
// cookie at once; no update may be lost.
func TestConcurrentMutationsOnSharedSession(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	reg := NewRegistry(testCatalog(), store, testPricing(), 12)

	const workers = 8
	const adds = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := reg.Attach(ctx, "same-cookie")
			if err != nil {
				t.Errorf("attach: %v", err)
				return
			}
			for j := 0; j < adds; j++ {
				if err := sess.AddToCart(ctx, 1, 1, "M", "Black"); err != nil {
					t.Errorf("add: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	sess, err := reg.Attach(ctx, "same-cookie")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if got := sess.CartCount(); got != workers*adds {
		t.Fatalf("lost updates: cart count %d, want %d", got, workers*adds)
	}

	// The persisted copy carries the same total.
	rehydrated := New("same-cookie", testCatalog(), store, testPricing(), 12)
	if err := rehydrated.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := rehydrated.CartCount(); got != workers*adds {
		t.Fatalf("persisted count %d, want %d", got, workers*adds)
	}
}

func TestRegistrySweepEvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	reg := NewRegistry(testCatalog(), store, testPricing(), 12)

	sess, err := reg.Attach(ctx, "visitor-1")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := sess.AddToCart(ctx, 1, 2, "M", "Black"); err != nil {
		t.Fatalf("add: %v", err)
	}

	if got := reg.Sweep(0); got != 1 {
		t.Fatalf("sweep evicted %d sessions, want 1", got)
	}
	if reg.Len() != 0 {
		t.Fatalf("registry still holds %d sessions", reg.Len())
	}

	// Eviction only drops the in-memory view; the next attach rehydrates.
	again, err := reg.Attach(ctx, "visitor-1")
	if err != nil {
		t.Fatalf("re-attach: %v", err)
	}
	if got := again.CartCount(); got != 2 {
		t.Fatalf("rehydrated count %d, want 2", got)
	}
}
