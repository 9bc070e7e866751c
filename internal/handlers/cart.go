package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clothfit/internal/catalog"
	"clothfit/internal/session"
)

type addCartItemRequest struct {
	ProductID int    `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type cartLineKeyRequest struct {
	ProductID int    `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
}

type setQuantityRequest struct {
	ProductID int    `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

func cartResponse(sess *session.Session) gin.H {
	return gin.H{
		"items":  sess.Cart(),
		"count":  sess.CartCount(),
		"totals": sess.Totals(),
	}
}

// GetCart returns the cart lines with derived totals.
func GetCart(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		sess := attachSession(c, route, sessions)
		if sess == nil {
			return
		}
		c.JSON(http.StatusOK, cartResponse(sess))
	}
}

// AddCartItem adds a product (quantity defaults to 1, variant to the
// product's first size and color) and returns the updated cart.
func AddCartItem(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		sess := attachSession(c, route, sessions)
		if sess == nil {
			return
		}

		err := sess.AddToCart(c.Request.Context(), req.ProductID, req.Quantity, req.Size, req.Color)
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			respondWithError(c, http.StatusNotFound, route, "product not found")
		case errors.Is(err, session.ErrQuantityInvalid):
			respondWithError(c, http.StatusBadRequest, route, "quantity must be at least 1")
		case err != nil:
			respondWithError(c, http.StatusInternalServerError, route, "could not update cart")
		default:
			c.JSON(http.StatusOK, cartResponse(sess))
		}
	}
}

// UpdateCartItem sets the quantity of one cart line.
func UpdateCartItem(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/items"
		defer handlePanic(c, route)

		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		sess := attachSession(c, route, sessions)
		if sess == nil {
			return
		}

		err := sess.SetQuantity(c.Request.Context(), req.ProductID, req.Size, req.Color, req.Quantity)
		switch {
		case errors.Is(err, session.ErrQuantityInvalid):
			respondWithError(c, http.StatusBadRequest, route, "quantity must be at least 1")
		case errors.Is(err, session.ErrLineNotFound):
			respondWithError(c, http.StatusNotFound, route, "cart line not found")
		case err != nil:
			respondWithError(c, http.StatusInternalServerError, route, "could not update cart")
		default:
			c.JSON(http.StatusOK, cartResponse(sess))
		}
	}
}

// RemoveCartLine removes the single line matching (productId, size, color).
func RemoveCartLine(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items"
		defer handlePanic(c, route)

		var req cartLineKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		sess := attachSession(c, route, sessions)
		if sess == nil {
			return
		}

		err := sess.RemoveLine(c.Request.Context(), req.ProductID, req.Size, req.Color)
		switch {
		case errors.Is(err, session.ErrLineNotFound):
			respondWithError(c, http.StatusNotFound, route, "cart line not found")
		case err != nil:
			respondWithError(c, http.StatusInternalServerError, route, "could not update cart")
		default:
			c.JSON(http.StatusOK, cartResponse(sess))
		}
	}
}

// RemoveCartProduct removes every line for a product id regardless of
// variant, matching the storefront's cart sidebar behavior.
func RemoveCartProduct(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:id"
		defer handlePanic(c, route)

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		sess := attachSession(c, route, sessions)
		if sess == nil {
			return
		}

		err = sess.RemoveProduct(c.Request.Context(), id)
		switch {
		case errors.Is(err, session.ErrLineNotFound):
			respondWithError(c, http.StatusNotFound, route, "cart line not found")
		case err != nil:
			respondWithError(c, http.StatusInternalServerError, route, "could not update cart")
		default:
			c.JSON(http.StatusOK, cartResponse(sess))
		}
	}
}
