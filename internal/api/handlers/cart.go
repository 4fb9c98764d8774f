package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/api/middleware"
	"github.com/ayurbazaar/storefront/internal/cart"
	"github.com/ayurbazaar/storefront/internal/domain"
	"github.com/ayurbazaar/storefront/internal/marketplace"
)

// AddItemRequest accepts either the flat shape {productId, quantity} or a
// nested product reference {product: {_id}}. Both normalize to the flat line
// before touching the store.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Product   *struct {
		ID string `json:"_id"`
	} `json:"product"`
}

func (r *AddItemRequest) productID() string {
	if r.ProductID != "" {
		return r.ProductID
	}
	if r.Product != nil {
		return r.Product.ID
	}
	return ""
}

// UpdateItemRequest sets an absolute quantity; anything below 1 removes the line
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the canonical cart payload returned by every cart route
type CartResponse struct {
	Items []domain.CartLine `json:"items"`
	Count int               `json:"count"`
}

func cartResponse(lines []domain.CartLine) CartResponse {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return CartResponse{Items: lines, Count: count}
}

func HandleGetCart(store *cart.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := middleware.GetCartKey(c)

		lines, err := store.Read(c.Request.Context(), key)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

func HandleGetCartCount(store *cart.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := middleware.GetCartKey(c)

		count, err := store.Count(c.Request.Context(), key)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func HandleAddItem(store *cart.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := middleware.GetCartKey(c)

		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		productID := req.productID()
		if productID == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "validation failed",
				"fields": gin.H{"productId": "productId is required"},
			})
			return
		}

		lines, err := store.Add(c.Request.Context(), key, productID, req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

func HandleUpdateItem(store *cart.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := middleware.GetCartKey(c)
		productID := c.Param("productId")

		var req UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		lines, err := store.Update(c.Request.Context(), key, productID, req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

func HandleRemoveItem(store *cart.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := middleware.GetCartKey(c)
		productID := c.Param("productId")

		lines, err := store.Remove(c.Request.Context(), key, productID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

func HandleClearCart(store *cart.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := middleware.GetCartKey(c)

		if err := store.Clear(c.Request.Context(), key); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, cartResponse(nil))
	}
}

// HandleSyncCart pushes the current cart to the shopper's marketplace account
// so a login on another device sees the same cart
func HandleSyncCart(store *cart.Store, client *marketplace.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := middleware.GetCartKey(c)
		token, _ := middleware.GetToken(c)

		lines, err := store.Read(c.Request.Context(), key)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		if err := client.SyncCart(c.Request.Context(), token, lines); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"synced": len(lines)})
	}
}
