package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/matthieukhl/buildright/internal/listing"
	"github.com/matthieukhl/buildright/internal/models"
)

func (s *Server) listCategories(c *gin.Context) {
	categories := []string{models.CategoryAll}
	for _, cat := range models.Categories() {
		categories = append(categories, string(cat))
	}
	ok(c, categories)
}

func (s *Server) listProducts(c *gin.Context) {
	var q listing.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid query parameters", err.Error())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", strconv.Itoa(listing.DefaultPerPage)))

	products := listing.Filter(s.deps.Catalog.All(), q)
	ok(c, listing.Paginate(products, page, perPage))
}

func (s *Server) getProduct(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	product, found := listing.Detail(s.deps.Catalog.All(), id)
	if !found {
		fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
		return
	}
	ok(c, product)
}
