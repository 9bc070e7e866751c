// Package catalog holds the immutable product list and the pure query
// operations over it: category filtering, search, sorting and pagination.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"clothfit/internal/models"
)

// ErrProductNotFound is returned when an operation references an id the
// catalog does not contain.
var ErrProductNotFound = errors.New("catalog: product not found")

// Sort enumerates the supported orderings.
type Sort string

const (
	SortDefault   Sort = "default"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortRating    Sort = "rating"
	SortDiscount  Sort = "discount"
)

// Valid reports whether the sort is a known option. The empty string counts
// as default.
func (s Sort) Valid() bool {
	switch s {
	case "", SortDefault, SortPriceLow, SortPriceHigh, SortRating, SortDiscount:
		return true
	}
	return false
}

// FilterAll matches every category.
const FilterAll = "all"

// Catalog is an immutable, externally supplied product list.
type Catalog struct {
	products []models.Product
	byID     map[int]models.Product
}

func New(products []models.Product) *Catalog {
	byID := make(map[int]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{products: products, byID: byID}
}

// LoadFile reads a JSON-encoded product array.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(products), nil
}

// Get returns the product with the given id.
func (c *Catalog) Get(id int) (models.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Categories returns the distinct categories in catalog order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories
}

// Query combines category filter, search term and sort. Empty fields are
// no-ops; filter and search compose.
type Query struct {
	Category string
	Search   string
	Sort     Sort
}

// FilterAndSort returns a fresh slice filtered to the category ("all" or ""
// keeps everything, otherwise exact case-sensitive match) and ordered by the
// sort option. The sort is stable: ties keep catalog order. The receiver's
// product list is never mutated.
func (c *Catalog) FilterAndSort(category string, sortBy Sort) []models.Product {
	return c.Run(Query{Category: category, Sort: sortBy})
}

// Search returns products whose name, brand or category contains the term,
// case-insensitively. An empty term keeps everything.
func (c *Catalog) Search(term string) []models.Product {
	return c.Run(Query{Search: term})
}

// Run executes a combined query against the catalog.
func (c *Catalog) Run(q Query) []models.Product {
	result := make([]models.Product, 0, len(c.products))
	term := strings.ToLower(strings.TrimSpace(q.Search))

	for _, p := range c.products {
		if q.Category != "" && q.Category != FilterAll && p.Category != q.Category {
			continue
		}
		if term != "" && !matchesSearch(p, term) {
			continue
		}
		result = append(result, p)
	}

	switch q.Sort {
	case SortPriceLow:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price.LessThan(result[j].Price)
		})
	case SortPriceHigh:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price.GreaterThan(result[j].Price)
		})
	case SortRating:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Rating > result[j].Rating
		})
	case SortDiscount:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Discount > result[j].Discount
		})
	}

	return result
}

func matchesSearch(p models.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Brand), term) ||
		strings.Contains(strings.ToLower(p.Category), term)
}

// Paginate slices one page out of an already filtered and sorted result.
// Pages beyond the range yield an empty slice, not an error.
func Paginate(items []models.Product, page, pageSize int) []models.Product {
	if page < 1 || pageSize < 1 {
		return []models.Product{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []models.Product{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Pages returns the page count for a result of the given size. An empty
// result still has one page.
func Pages(total, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
