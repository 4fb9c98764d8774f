package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/domain"
	"github.com/ayurbazaar/storefront/pkg/errors"
)

// Client calls the marketplace backend (orders, catalog, wishlist).
// The shopper's bearer token is forwarded per call and never stored.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a marketplace HTTP client
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// OrderItem is one order line on the wire
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderRequest is the order creation payload. TotalAmount is the snapshot
// total locked at checkout entry, not re-derived from items here; the backend
// is the authority on rejecting a stale total.
type OrderRequest struct {
	CustomerID      string      `json:"customerId"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"totalAmount"`
	DeliveryAddress string      `json:"deliveryAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
}

// OrderResponse is the subset of the created order the storefront cares about
type OrderResponse struct {
	ID string `json:"_id"`
}

type errorBody struct {
	Message string `json:"message"`
}

// SubmitOrder posts an order to the marketplace backend. A 401 maps to
// ErrSessionExpired; other non-2xx statuses map to ErrBackend carrying the
// server message verbatim when one is present.
func (c *Client) SubmitOrder(ctx context.Context, token string, order OrderRequest) (*OrderResponse, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("marketplace client not configured: base URL required")
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Order submit request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &errors.ErrSessionExpired{Message: parseMessage(body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.ErrBackend{StatusCode: resp.StatusCode, Message: parseMessage(body)}
	}

	var orderResp OrderResponse
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order response: %w, body: %s", err, string(body))
	}

	return &orderResp, nil
}

// GetProducts fetches the product list. Returns the raw response body; the
// catalog contract is an opaque pass-through.
func (c *Client) GetProducts(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "", "/api/products")
}

// GetProductRaw fetches a single product by id as a raw body
func (c *Client) GetProductRaw(ctx context.Context, productID string) ([]byte, error) {
	return c.get(ctx, "", "/api/products/"+url.PathEscape(productID))
}

// GetProduct fetches a single product and parses the fields checkout pricing needs
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	body, err := c.get(ctx, "", "/api/products/"+url.PathEscape(productID))
	if err != nil {
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product %s: %w", productID, err)
	}

	return &product, nil
}

// GetWishlist fetches the shopper's wishlist (opaque pass-through)
func (c *Client) GetWishlist(ctx context.Context, token string) ([]byte, error) {
	return c.get(ctx, token, "/api/wishlist")
}

// AddToWishlist adds a product to the shopper's wishlist
func (c *Client) AddToWishlist(ctx context.Context, token, productID string) ([]byte, error) {
	return c.send(ctx, token, http.MethodPost, "/api/wishlist/"+url.PathEscape(productID), nil)
}

// RemoveFromWishlist removes a product from the shopper's wishlist
func (c *Client) RemoveFromWishlist(ctx context.Context, token, productID string) ([]byte, error) {
	return c.send(ctx, token, http.MethodDelete, "/api/wishlist/"+url.PathEscape(productID), nil)
}

// SyncCart mirrors the local cart to the backend's server-side cart
func (c *Client) SyncCart(ctx context.Context, token string, lines []domain.CartLine) error {
	payload, err := json.Marshal(map[string]interface{}{"items": lines})
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	_, err = c.send(ctx, token, http.MethodPost, "/api/cart", payload)
	return err
}

func (c *Client) get(ctx context.Context, token, path string) ([]byte, error) {
	return c.send(ctx, token, http.MethodGet, path, nil)
}

func (c *Client) send(ctx context.Context, token, method, path string, payload []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("marketplace client not configured: base URL required")
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Marketplace request failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &errors.ErrSessionExpired{Message: parseMessage(body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.ErrBackend{StatusCode: resp.StatusCode, Message: parseMessage(body)}
	}

	return body, nil
}

// parseMessage extracts the server's {message} body when present
func parseMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	return eb.Message
}
