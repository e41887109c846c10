package listing

import (
	"slices"
	"strings"

	"github.com/matthieukhl/buildright/internal/models"
)

type SortOrder string

const (
	SortDefault SortOrder = "default"
	SortAsc     SortOrder = "asc"
	SortDesc    SortOrder = "desc"
)

// ParseSort maps unknown values onto SortDefault
func ParseSort(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortAsc:
		return SortAsc
	case SortDesc:
		return SortDesc
	default:
		return SortDefault
	}
}

// Query selects a view of the catalog
type Query struct {
	Search   string    `form:"q" json:"q"`
	Category string    `form:"category" json:"category"`
	Sort     SortOrder `form:"sort" json:"sort"`
}

// Filter applies category, then search, then the price sort. The input slice
// is never modified and the same query always yields the same order.
func Filter(products []models.Product, q Query) []models.Product {
	result := make([]models.Product, 0, len(products))

	term := strings.ToLower(q.Search)
	for _, p := range products {
		if q.Category != "" && q.Category != models.CategoryAll && string(p.Category) != q.Category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		result = append(result, p)
	}

	switch ParseSort(string(q.Sort)) {
	case SortAsc:
		slices.SortStableFunc(result, func(a, b models.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortDesc:
		slices.SortStableFunc(result, func(a, b models.Product) int {
			return b.Price.Cmp(a.Price)
		})
	}
	return result
}

const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

type Page struct {
	Items   []models.Product `json:"items"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"perPage"`
}

// Paginate slices one page out of products. Out-of-range pages are empty.
func Paginate(products []models.Product, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	start := (page - 1) * perPage
	items := []models.Product{}
	if start < len(products) {
		end := min(start+perPage, len(products))
		items = products[start:end]
	}
	return Page{
		Items:   items,
		Total:   len(products),
		Page:    page,
		PerPage: perPage,
	}
}

// Detail looks a product up by id for the detail view
func Detail(products []models.Product, id int64) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
