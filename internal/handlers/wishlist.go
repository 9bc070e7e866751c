package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clothfit/internal/catalog"
	"clothfit/internal/session"
)

// GetWishlist returns the saved product snapshots.
func GetWishlist(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /wishlist"
		defer handlePanic(c, route)

		sess := attachSession(c, route, sessions)
		if sess == nil {
			return
		}
		items := sess.Wishlist()
		c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
	}
}

// ToggleWishlist adds the product when absent and removes it when present.
func ToggleWishlist(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /wishlist/:id/toggle"
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

		action, err := sess.ToggleWishlist(c.Request.Context(), id)
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			respondWithError(c, http.StatusNotFound, route, "product not found")
		case err != nil:
			respondWithError(c, http.StatusInternalServerError, route, "could not update wishlist")
		default:
			c.JSON(http.StatusOK, gin.H{
				"action": action,
				"items":  sess.Wishlist(),
				"count":  len(sess.Wishlist()),
			})
		}
	}
}
