package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	TokenContextKey   = "auth_token"
	CartKeyContextKey = "cart_key"

	cartKeyHeader = "X-Cart-Key"
)

// TokenMiddleware extracts the shopper's bearer token into the context when
// present. The marketplace backend is the authority on token validity: a
// rejected token surfaces as a session-expired error at submit time, so no
// verification happens here.
func TokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token := strings.TrimSpace(parts[1])
				if token != "" {
					c.Set(TokenContextKey, token)
				}
			}
		}
		c.Next()
	}
}

// RequireToken rejects requests that carry no bearer token. Routes proxied to
// the marketplace backend on the shopper's behalf use this.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetToken(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetToken retrieves the bearer token from the Gin context
func GetToken(c *gin.Context) (string, bool) {
	token, exists := c.Get(TokenContextKey)
	if !exists {
		return "", false
	}
	t, ok := token.(string)
	return t, ok && t != ""
}

// CartKeyMiddleware requires the X-Cart-Key header identifying the shopper's
// cart and stores it in the context. Keys are opaque strings minted by the
// client; a browser session typically reuses one per device.
func CartKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(cartKeyHeader))
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + cartKeyHeader + " header"})
			c.Abort()
			return
		}
		c.Set(CartKeyContextKey, key)
		c.Next()
	}
}

// GetCartKey retrieves the cart key from the Gin context
func GetCartKey(c *gin.Context) (string, bool) {
	key, exists := c.Get(CartKeyContextKey)
	if !exists {
		return "", false
	}
	k, ok := key.(string)
	return k, ok && k != ""
}
