package listing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/buildright/internal/models"
)

func p(id int64, name, desc, price string, c models.Category) models.Product {
	return models.Product{
		ID:          id,
		Name:        name,
		Description: desc,
		Price:       decimal.RequireFromString(price),
		Category:    c,
	}
}

func catalog() []models.Product {
	return []models.Product{
		p(1, "Claw Hammer", "Steel head", "39.90", models.CategoryTools),
		p(2, "Wood Screws", "Zinc plated", "24.90", models.CategoryFasteners),
		p(3, "Drill", "Cordless, includes hammer mode", "289.00", models.CategoryTools),
		p(4, "Hex Bolts", "Galvanised", "24.90", models.CategoryFasteners),
		p(5, "Wrench", "Adjustable", "45.50", models.CategoryTools),
	}
}

func ids(products []models.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []int64
	}{
		{"no filters keeps catalog order", Query{}, []int64{1, 2, 3, 4, 5}},
		{"All category", Query{Category: models.CategoryAll}, []int64{1, 2, 3, 4, 5}},
		{"category", Query{Category: "Fasteners"}, []int64{2, 4}},
		{"search name or description case-insensitively", Query{Search: "HAMMER"}, []int64{1, 3}},
		{"category and search", Query{Category: "Tools", Search: "wrench"}, []int64{5}},
		{"ascending price is stable", Query{Sort: SortAsc}, []int64{2, 4, 1, 5, 3}},
		{"descending price is stable", Query{Sort: SortDesc}, []int64{3, 5, 1, 2, 4}},
		{"unknown sort is default", Query{Sort: "sideways"}, []int64{1, 2, 3, 4, 5}},
		{"no match", Query{Search: "chainsaw"}, []int64{}},
		{"unknown category", Query{Category: "Gadgets"}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(catalog(), tt.query)))
		})
	}
}

func TestFilterIdempotent(t *testing.T) {
	queries := []Query{
		{},
		{Category: "Tools", Sort: SortAsc},
		{Search: "e", Sort: SortDesc},
		{Category: "Fasteners", Search: "o", Sort: SortAsc},
	}
	for _, q := range queries {
		once := Filter(catalog(), q)
		twice := Filter(once, q)
		assert.Equal(t, once, twice)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := catalog()
	_ = Filter(in, Query{Sort: SortDesc})
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(in))
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSort("ASC"))
	assert.Equal(t, SortDesc, ParseSort(" desc "))
	assert.Equal(t, SortDefault, ParseSort(""))
	assert.Equal(t, SortDefault, ParseSort("price"))
}

func TestPaginate(t *testing.T) {
	all := catalog()

	page := Paginate(all, 2, 2)
	assert.Equal(t, []int64{3, 4}, ids(page.Items))
	assert.Equal(t, 5, page.Total)

	last := Paginate(all, 3, 2)
	assert.Equal(t, []int64{5}, ids(last.Items))

	empty := Paginate(all, 9, 2)
	assert.Empty(t, empty.Items)
	assert.NotNil(t, empty.Items)

	clamped := Paginate(all, 0, 1000)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, MaxPerPage, clamped.PerPage)

	defaulted := Paginate(all, 1, 0)
	assert.Equal(t, DefaultPerPage, defaulted.PerPage)
}

func TestDetail(t *testing.T) {
	found, ok := Detail(catalog(), 3)
	require.True(t, ok)
	assert.Equal(t, "Drill", found.Name)

	_, ok = Detail(catalog(), 42)
	assert.False(t, ok)
}
