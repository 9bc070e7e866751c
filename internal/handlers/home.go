package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clothfit/internal/catalog"
)

// Home reports service status and catalog size.
func Home(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /"
		defer handlePanic(c, route)

		c.JSON(http.StatusOK, gin.H{
			"service":  "clothfit",
			"products": cat.Len(),
		})
	}
}
