package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
}

// Delta is a pointer so a missing field is told apart from a zero delta
type updateItemRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

func (s *Server) getCart(c *gin.Context) {
	ok(c, s.deps.Cart.Summary())
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "productId is required", err.Error())
		return
	}
	product, found := s.deps.Catalog.Find(req.ProductID)
	if !found {
		fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
		return
	}
	s.deps.Cart.Add(product)
	ok(c, s.deps.Cart.Summary())
}

// updateCartItem changes a quantity by delta; the cart clamps at 1 and
// ignores ids it does not hold
func (s *Server) updateCartItem(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "delta must be an integer", err.Error())
		return
	}
	s.deps.Cart.UpdateQuantity(id, *req.Delta)
	ok(c, s.deps.Cart.Summary())
}

func (s *Server) removeCartItem(c *gin.Context) {
	id, valid := paramID(c)
	if !valid {
		return
	}
	s.deps.Cart.Remove(id)
	ok(c, s.deps.Cart.Summary())
}

func (s *Server) clearCart(c *gin.Context) {
	s.deps.Cart.Clear()
	ok(c, s.deps.Cart.Summary())
}
