package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clothfit/internal/checkout"
	"clothfit/internal/logger"
	"clothfit/internal/models"
	"clothfit/internal/session"
)

// CheckoutHandlers owns the open checkout wizards, one per session. Drafts
// live only here; closing or placing the order discards them.
type CheckoutHandlers struct {
	sessions *session.Registry

	mu       sync.Mutex
	machines map[string]*checkout.Machine
}

func NewCheckoutHandlers(sessions *session.Registry) *CheckoutHandlers {
	return &CheckoutHandlers{
		sessions: sessions,
		machines: make(map[string]*checkout.Machine),
	}
}

func (h *CheckoutHandlers) machine(sessionID string) (*checkout.Machine, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.machines[sessionID]
	return m, ok
}

type shippingRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

type paymentRequest struct {
	Method     string `json:"method" binding:"required"`
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	CardExpiry string `json:"cardExpiry"`
	CardCVV    string `json:"cardCvv"`
	UPIID      string `json:"upiId"`
	Bank       string `json:"bank"`
}

// Begin opens the wizard for the session's cart.
func (h *CheckoutHandlers) Begin() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		sess := attachSession(c, route, h.sessions)
		if sess == nil {
			return
		}

		m, err := checkout.Begin(sess)
		if errors.Is(err, checkout.ErrCartEmpty) {
			respondWithError(c, http.StatusBadRequest, route, "your cart is empty")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "could not open checkout")
			return
		}

		h.mu.Lock()
		h.machines[sess.ID] = m
		h.mu.Unlock()

		c.JSON(http.StatusCreated, gin.H{"step": m.Step()})
	}
}

// SetShipping records the shipping form onto the draft.
func (h *CheckoutHandlers) SetShipping() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /checkout/shipping"
		defer handlePanic(c, route)

		m, ok := h.machine(sessionIDFrom(c))
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "no checkout in progress")
			return
		}

		var req shippingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		if err := m.SetShipping(models.ShippingInfo(req)); err != nil {
			respondWithError(c, http.StatusConflict, route, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"step": m.Step()})
	}
}

// SetPayment records the payment selection onto the draft.
func (h *CheckoutHandlers) SetPayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /checkout/payment"
		defer handlePanic(c, route)

		m, ok := h.machine(sessionIDFrom(c))
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "no checkout in progress")
			return
		}

		var req paymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		info := models.PaymentInfo{
			Method:     models.PaymentMethod(req.Method),
			CardNumber: req.CardNumber,
			CardHolder: req.CardHolder,
			CardExpiry: req.CardExpiry,
			CardCVV:    req.CardCVV,
			UPIID:      req.UPIID,
			Bank:       req.Bank,
		}
		if err := m.SetPayment(info); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"step": m.Step()})
	}
}

// GoToStep moves the wizard forward or back.
func (h *CheckoutHandlers) GoToStep() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/step/:step"
		defer handlePanic(c, route)

		m, ok := h.machine(sessionIDFrom(c))
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "no checkout in progress")
			return
		}

		step, err := strconv.Atoi(c.Param("step"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid step")
			return
		}

		if err := m.GoToStep(checkout.Step(step)); err != nil {
			respondWithError(c, checkoutStatus(err), route, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"step": m.Step()})
	}
}

// Review returns the read-only order summary.
func (h *CheckoutHandlers) Review() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /checkout/review"
		defer handlePanic(c, route)

		m, ok := h.machine(sessionIDFrom(c))
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "no checkout in progress")
			return
		}

		summary, err := m.Review()
		if err != nil {
			respondWithError(c, http.StatusConflict, route, err.Error())
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// PlaceOrder finalizes the checkout: the order is returned with frozen
// totals and the session's cart and wishlist are cleared.
func (h *CheckoutHandlers) PlaceOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/order"
		defer handlePanic(c, route)

		sessionID := sessionIDFrom(c)
		m, ok := h.machine(sessionID)
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "no checkout in progress")
			return
		}

		order, err := m.PlaceOrder(c.Request.Context())
		if err != nil {
			respondWithError(c, checkoutStatus(err), route, err.Error())
			return
		}

		h.mu.Lock()
		delete(h.machines, sessionID)
		h.mu.Unlock()

		logger.Log.Info("order placed",
			zap.String("orderId", order.ID),
			zap.String("paymentMethod", string(order.PaymentMethod)),
		)
		c.JSON(http.StatusCreated, order)
	}
}

// Close abandons the wizard and discards the draft. The cart is untouched.
func (h *CheckoutHandlers) Close() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /checkout"
		defer handlePanic(c, route)

		sessionID := sessionIDFrom(c)
		h.mu.Lock()
		_, ok := h.machines[sessionID]
		delete(h.machines, sessionID)
		h.mu.Unlock()

		if !ok {
			respondWithError(c, http.StatusNotFound, route, "no checkout in progress")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "checkout closed"})
	}
}

func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrOrderPlaced):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, checkout.ErrShippingIncomplete),
		errors.Is(err, checkout.ErrPaymentMethodMissing),
		errors.Is(err, checkout.ErrPaymentDetailsIncomplete),
		errors.Is(err, checkout.ErrInvalidStep):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
