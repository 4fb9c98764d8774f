package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/api/handlers"
	"github.com/ayurbazaar/storefront/internal/api/middleware"
	"github.com/ayurbazaar/storefront/internal/cart"
	"github.com/ayurbazaar/storefront/internal/checkout"
	"github.com/ayurbazaar/storefront/internal/config"
	"github.com/ayurbazaar/storefront/internal/marketplace"
)

// NewRouter creates and configures the Gin router
func NewRouter(
	cfg *config.Config,
	store *cart.Store,
	notifier *cart.Notifier,
	orchestrator *checkout.Orchestrator,
	client *marketplace.Client,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))
	router.Use(middleware.TokenMiddleware())

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Storefront API",
			"endpoints": []string{
				"GET /health",
				"GET /v1/cart",
				"GET /v1/cart/count",
				"GET /v1/cart/events",
				"POST /v1/cart/items",
				"PATCH /v1/cart/items/:productId",
				"DELETE /v1/cart/items/:productId",
				"DELETE /v1/cart",
				"POST /v1/cart/sync",
				"POST /v1/checkout",
				"GET /v1/checkout/:id",
				"POST /v1/checkout/:id/submit",
				"GET /v1/products",
				"GET /v1/products/:id",
				"GET /v1/wishlist",
				"POST /v1/wishlist/:id",
				"DELETE /v1/wishlist/:id",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Cart routes (scoped to a cart key)
		cartRoutes := v1.Group("/cart")
		cartRoutes.Use(middleware.CartKeyMiddleware())
		{
			cartRoutes.GET("", handlers.HandleGetCart(store, logger))
			cartRoutes.GET("/count", handlers.HandleGetCartCount(store, logger))
			cartRoutes.GET("/events", handlers.HandleCartEvents(store, notifier, logger))
			cartRoutes.POST("/items", handlers.HandleAddItem(store, logger))
			cartRoutes.PATCH("/items/:productId", handlers.HandleUpdateItem(store, logger))
			cartRoutes.DELETE("/items/:productId", handlers.HandleRemoveItem(store, logger))
			cartRoutes.DELETE("", handlers.HandleClearCart(store, logger))
			cartRoutes.POST("/sync", middleware.RequireToken(), handlers.HandleSyncCart(store, client, logger))
		}

		// Checkout routes (cart key scoped; submit carries the bearer token
		// through to the marketplace backend)
		checkoutRoutes := v1.Group("/checkout")
		checkoutRoutes.Use(middleware.CartKeyMiddleware())
		{
			checkoutRoutes.POST("", handlers.HandleBeginCheckout(orchestrator, logger))
			checkoutRoutes.GET("/:id", handlers.HandleGetCheckout(orchestrator, logger))
			checkoutRoutes.POST("/:id/submit", handlers.HandleSubmitCheckout(orchestrator, logger))
		}

		// Catalog pass-throughs (public)
		v1.GET("/products", handlers.HandleGetProducts(client, logger))
		v1.GET("/products/:id", handlers.HandleGetProduct(client, logger))

		// Wishlist pass-throughs (require authentication)
		wishlistRoutes := v1.Group("/wishlist")
		wishlistRoutes.Use(middleware.RequireToken())
		{
			wishlistRoutes.GET("", handlers.HandleGetWishlist(client, logger))
			wishlistRoutes.POST("/:id", handlers.HandleAddToWishlist(client, logger))
			wishlistRoutes.DELETE("/:id", handlers.HandleRemoveFromWishlist(client, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
