// Package checkout implements the three-step checkout wizard: shipping,
// payment, review, then a terminal placed state. Forward transitions are
// gated by per-step validation; going back never re-validates.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"clothfit/internal/models"
)

// Step identifies the wizard position.
type Step int

const (
	StepShipping Step = 1
	StepPayment  Step = 2
	StepReview   Step = 3
	StepPlaced   Step = 4
)

var (
	// ErrCartEmpty is returned when checkout is opened on an empty cart.
	ErrCartEmpty = errors.New("checkout: cart is empty")
	// ErrShippingIncomplete is returned when a shipping field is blank.
	ErrShippingIncomplete = errors.New("checkout: all shipping fields are required")
	// ErrPaymentMethodMissing is returned when no payment method is selected.
	ErrPaymentMethodMissing = errors.New("checkout: payment method is required")
	// ErrPaymentDetailsIncomplete is returned when the selected method's
	// required fields are blank.
	ErrPaymentDetailsIncomplete = errors.New("checkout: payment details are incomplete")
	// ErrInvalidStep is returned for steps outside the wizard.
	ErrInvalidStep = errors.New("checkout: invalid step")
	// ErrOrderPlaced is returned for mutations after the order was placed.
	ErrOrderPlaced = errors.New("checkout: order already placed")
	// ErrNotAtReview is returned when the review snapshot is requested before
	// reaching the review step.
	ErrNotAtReview = errors.New("checkout: not at review step")
)

// Cart is the session surface the wizard needs: the current lines, their
// derived totals, and the post-order clear.
type Cart interface {
	Cart() []models.CartLine
	Totals() models.Totals
	Clear(ctx context.Context) error
}

// Machine is one checkout attempt. The draft lives only in memory and is
// discarded when the wizard closes or the order is placed. Concurrent
// requests can drive the same wizard, so exported methods hold the mutex.
type Machine struct {
	cart Cart

	mu    sync.Mutex
	step  Step
	draft models.CheckoutDraft
	order *models.Order
}

// Begin opens the wizard at the shipping step.
func Begin(cart Cart) (*Machine, error) {
	if len(cart.Cart()) == 0 {
		return nil, ErrCartEmpty
	}
	return &Machine{cart: cart, step: StepShipping}, nil
}

// Step returns the current wizard position.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Draft returns the current form state.
func (m *Machine) Draft() models.CheckoutDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// SetShipping records the shipping fields onto the draft. Validation happens
// on the forward transition, not here, so partial edits are fine.
func (m *Machine) SetShipping(info models.ShippingInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == StepPlaced {
		return ErrOrderPlaced
	}
	m.draft.Shipping = info
	return nil
}

// SetPayment records the payment selection onto the draft.
func (m *Machine) SetPayment(info models.PaymentInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == StepPlaced {
		return ErrOrderPlaced
	}
	if info.Method != "" && !info.Method.Valid() {
		return fmt.Errorf("checkout: unknown payment method %q", info.Method)
	}
	m.draft.Payment = info
	return nil
}

// GoToStep moves the wizard. Backward moves are always allowed; a forward
// move validates every step being passed. A failed validation leaves the
// wizard where it was.
func (m *Machine) GoToStep(target Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == StepPlaced {
		return ErrOrderPlaced
	}
	if target < StepShipping || target > StepReview {
		return ErrInvalidStep
	}
	if target <= m.step {
		m.step = target
		return nil
	}
	if target >= StepPayment {
		if err := m.validateShipping(); err != nil {
			return err
		}
	}
	if target >= StepReview {
		if err := m.validatePayment(); err != nil {
			return err
		}
	}
	m.step = target
	return nil
}

// ReviewSummary is the read-only snapshot shown on the review step.
type ReviewSummary struct {
	Shipping      models.ShippingInfo  `json:"shipping"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	PaymentLabel  string               `json:"paymentLabel"`
	Items         []models.CartLine    `json:"items"`
	Totals        models.Totals        `json:"totals"`
}

// Review returns the snapshot. Only available once the wizard reached the
// review step.
func (m *Machine) Review() (ReviewSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepReview {
		return ReviewSummary{}, ErrNotAtReview
	}
	return ReviewSummary{
		Shipping:      m.draft.Shipping,
		PaymentMethod: m.draft.Payment.Method,
		PaymentLabel:  m.draft.Payment.Method.Label(),
		Items:         m.cart.Cart(),
		Totals:        m.cart.Totals(),
	}, nil
}

// PlaceOrder validates the full draft, freezes the lines and totals into an
// order, clears the cart and wishlist, and moves to the terminal state. The
// draft is invalidated; the machine accepts no further mutations.
func (m *Machine) PlaceOrder(ctx context.Context) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == StepPlaced {
		return models.Order{}, ErrOrderPlaced
	}
	if err := m.validateShipping(); err != nil {
		return models.Order{}, err
	}
	if err := m.validatePayment(); err != nil {
		return models.Order{}, err
	}
	items := m.cart.Cart()
	if len(items) == 0 {
		return models.Order{}, ErrCartEmpty
	}

	id, err := newOrderID()
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		ID:            id,
		Items:         items,
		Shipping:      m.draft.Shipping,
		PaymentMethod: m.draft.Payment.Method,
		PaymentLabel:  m.draft.Payment.Method.Label(),
		Totals:        m.cart.Totals(),
		PlacedAt:      time.Now(),
	}

	if err := m.cart.Clear(ctx); err != nil {
		return models.Order{}, err
	}

	m.step = StepPlaced
	m.draft = models.CheckoutDraft{}
	m.order = &order
	return order, nil
}

// Order returns the placed order, if any.
func (m *Machine) Order() (models.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.order == nil {
		return models.Order{}, false
	}
	return *m.order, true
}

func (m *Machine) validateShipping() error {
	s := m.draft.Shipping
	fields := []string{s.Name, s.Phone, s.Email, s.Address, s.City, s.State, s.Zip}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return ErrShippingIncomplete
		}
	}
	return nil
}

func (m *Machine) validatePayment() error {
	p := m.draft.Payment
	if p.Method == "" {
		return ErrPaymentMethodMissing
	}
	if !p.Method.Valid() {
		return fmt.Errorf("checkout: unknown payment method %q", p.Method)
	}
	switch p.Method {
	case models.PaymentCard:
		if blank(p.CardNumber) || blank(p.CardHolder) || blank(p.CardExpiry) || blank(p.CardCVV) {
			return fmt.Errorf("%w: all card fields are required", ErrPaymentDetailsIncomplete)
		}
	case models.PaymentUPI:
		if blank(p.UPIID) {
			return fmt.Errorf("%w: upi id is required", ErrPaymentDetailsIncomplete)
		}
	case models.PaymentNetBanking:
		if blank(p.Bank) {
			return fmt.Errorf("%w: bank selection is required", ErrPaymentDetailsIncomplete)
		}
	}
	// Wallet and cash on delivery need no extra fields.
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
