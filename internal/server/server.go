package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matthieukhl/buildright/internal/assistant"
	"github.com/matthieukhl/buildright/internal/auth"
	"github.com/matthieukhl/buildright/internal/cart"
	"github.com/matthieukhl/buildright/internal/catalog"
	"github.com/matthieukhl/buildright/internal/describe"
)

// Deps are the stores and bridges the HTTP surface drives
type Deps struct {
	Catalog   *catalog.Store
	Cart      *cart.Cart
	Gate      *auth.Gate
	Describer *describe.Describer
	Chats     *assistant.Registry
	Logger    *zap.Logger
	Model     string
}

type Server struct {
	router *gin.Engine
	deps   Deps
	logger *zap.Logger
}

// NewServer creates a new server instance
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Logger))

	server := &Server{
		router: router,
		deps:   deps,
		logger: deps.Logger,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/categories", s.listCategories)
		api.GET("/products", s.listProducts)
		api.GET("/products/:id", s.getProduct)

		api.GET("/cart", s.getCart)
		api.POST("/cart/items", s.addCartItem)
		api.PATCH("/cart/items/:id", s.updateCartItem)
		api.DELETE("/cart/items/:id", s.removeCartItem)
		api.DELETE("/cart", s.clearCart)

		api.POST("/chat/sessions", s.createChat)
		api.GET("/chat/sessions/:id", s.getChat)
		api.DELETE("/chat/sessions/:id", s.closeChat)
		api.POST("/chat/sessions/:id/messages", s.sendChatMessage)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/login", s.login)
		admin.POST("/logout", s.logout)
		admin.GET("/session", s.adminSession)

		gated := admin.Group("", s.requireAdmin)
		gated.GET("/products", s.inventory)
		gated.POST("/products", s.createProduct)
		gated.POST("/describe", s.describeProduct)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "buildright",
		"version":  "0.1.0",
		"model":    s.deps.Model,
		"products": s.deps.Catalog.Len(),
	})
}

// Run serves on addr until ctx is cancelled, then shuts down and closes the
// open chat sessions
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if s.deps.Chats != nil {
			err = errors.Join(err, s.deps.Chats.CloseAll())
		}
		s.logger.Info("http server stopped")
		return err
	})
	return g.Wait()
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
