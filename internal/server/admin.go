package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/matthieukhl/buildright/internal/auth"
	"github.com/matthieukhl/buildright/internal/catalog"
	"github.com/matthieukhl/buildright/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type productRequest struct {
	Name        string           `json:"name" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Category    string           `json:"category" binding:"required"`
	Image       string           `json:"image"`
	Description string           `json:"description"`
	Specs       []string         `json:"specs"`
}

type describeRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
}

func (s *Server) requireAdmin(c *gin.Context) {
	if !s.deps.Gate.Authenticated() {
		fail(c, http.StatusForbidden, "FORBIDDEN", "Admin login required", nil)
		return
	}
	c.Next()
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid login request", err.Error())
		return
	}
	if err := s.deps.Gate.Login(req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
			return
		}
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", nil)
		return
	}
	ok(c, gin.H{"authenticated": true})
}

func (s *Server) logout(c *gin.Context) {
	s.deps.Gate.Logout()
	ok(c, gin.H{"authenticated": false})
}

func (s *Server) adminSession(c *gin.Context) {
	ok(c, gin.H{"authenticated": s.deps.Gate.Authenticated()})
}

func (s *Server) inventory(c *gin.Context) {
	ok(c, s.deps.Catalog.Inventory())
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_PRODUCT", "name, numeric price and category are required", err.Error())
		return
	}
	if req.Price.IsNegative() {
		fail(c, http.StatusBadRequest, "INVALID_PRODUCT", "price must not be negative", nil)
		return
	}
	category, err := models.ParseCategory(req.Category)
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_PRODUCT", err.Error(), nil)
		return
	}

	product := s.deps.Catalog.AddProduct(catalog.Draft{
		Name:        req.Name,
		Price:       *req.Price,
		Category:    category,
		Image:       req.Image,
		Description: req.Description,
		Specs:       req.Specs,
	})
	s.logger.Info("product added", zap.Int64("id", product.ID), zap.String("name", product.Name))
	c.JSON(http.StatusCreated, gin.H{"data": product})
}

func (s *Server) describeProduct(c *gin.Context) {
	var req describeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "name and category are required", err.Error())
		return
	}
	ok(c, gin.H{"description": s.deps.Describer.Describe(c.Request.Context(), req.Name, req.Category)})
}
