package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/api/middleware"
	"github.com/ayurbazaar/storefront/internal/marketplace"
)

// Wishlist routes proxy the marketplace wishlist with the shopper's bearer
// token. Payloads are opaque; a 401 from the backend maps to session-expired.

func HandleGetWishlist(client *marketplace.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := middleware.GetToken(c)

		raw, err := client.GetWishlist(c.Request.Context(), token)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Data(http.StatusOK, jsonContentType, raw)
	}
}

func HandleAddToWishlist(client *marketplace.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := middleware.GetToken(c)

		raw, err := client.AddToWishlist(c.Request.Context(), token, c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Data(http.StatusOK, jsonContentType, raw)
	}
}

func HandleRemoveFromWishlist(client *marketplace.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := middleware.GetToken(c)

		raw, err := client.RemoveFromWishlist(c.Request.Context(), token, c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Data(http.StatusOK, jsonContentType, raw)
	}
}
