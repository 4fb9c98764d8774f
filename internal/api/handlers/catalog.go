package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/marketplace"
)

const jsonContentType = "application/json"

// HandleGetProducts proxies the marketplace catalog listing. The payload is
// opaque to this service; only the cart and checkout paths parse products.
func HandleGetProducts(client *marketplace.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := client.GetProducts(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Data(http.StatusOK, jsonContentType, raw)
	}
}

func HandleGetProduct(client *marketplace.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := client.GetProductRaw(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Data(http.StatusOK, jsonContentType, raw)
	}
}
