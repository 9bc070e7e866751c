package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clothfit/internal/catalog"
	"clothfit/internal/session"
)

// GetProducts renders one page of the visitor's current catalog view. Query
// parameters update the view selection: category, search, sort, page, limit.
// Any change to category, search or sort resets the page to 1; an explicit
// page parameter is applied afterwards, clamped into range.
func GetProducts(cat *catalog.Catalog, sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		sess := attachSession(c, route, sessions)
		if sess == nil {
			return
		}

		state := sess.ViewState()
		if category, ok := c.GetQuery("category"); ok && category != state.Filter {
			sess.SetFilter(category)
		}
		if search, ok := c.GetQuery("search"); ok && search != state.Search {
			sess.SetSearch(search)
		}
		if sortBy, ok := c.GetQuery("sort"); ok && catalog.Sort(sortBy) != state.Sort {
			if err := sess.SetSort(catalog.Sort(sortBy)); err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid sort option")
				return
			}
		}
		if limitStr, ok := c.GetQuery("limit"); ok {
			limit, err := strconv.Atoi(limitStr)
			if err != nil || limit < 1 {
				respondWithError(c, http.StatusBadRequest, route, "invalid limit")
				return
			}
			sess.SetPageSize(limit)
		}
		if pageStr, ok := c.GetQuery("page"); ok {
			page, err := strconv.Atoi(pageStr)
			if err != nil || page < 1 {
				respondWithError(c, http.StatusBadRequest, route, "invalid page")
				return
			}
			sess.SetPage(page)
		}

		view := sess.View()
		c.JSON(http.StatusOK, gin.H{
			"data": view.Products,
			"pagination": gin.H{
				"page":       view.Page,
				"pageSize":   view.PageSize,
				"totalItems": view.TotalItems,
				"totalPages": view.TotalPages,
			},
		})
	}
}

// GetProduct returns one product by id.
func GetProduct(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		product, err := cat.Get(id)
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GetCategories returns the distinct catalog categories for the filter bar.
func GetCategories(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		c.JSON(http.StatusOK, gin.H{"categories": cat.Categories()})
	}
}
