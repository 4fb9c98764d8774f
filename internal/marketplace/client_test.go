package marketplace

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/pkg/errors"
)

func TestClient_SubmitOrder(t *testing.T) {
	var received OrderRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id": "order-123", "status": "pending"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	resp, err := client.SubmitOrder(context.Background(), "tok-1", OrderRequest{
		CustomerID:      "cust-1",
		Items:           []OrderItem{{ProductID: "A", Quantity: 2, Price: 12.5}},
		TotalAmount:     25,
		DeliveryAddress: "12 Herb Lane, Pune, MH, 41101",
		PaymentMethod:   "cod",
	})

	require.NoError(t, err)
	assert.Equal(t, "order-123", resp.ID)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "cust-1", received.CustomerID)
	assert.Equal(t, 25.0, received.TotalAmount)
}

func TestClient_SubmitOrderSessionExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "token expired"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	_, err := client.SubmitOrder(context.Background(), "stale", OrderRequest{})
	require.Error(t, err)

	var expired *errors.ErrSessionExpired
	require.ErrorAs(t, err, &expired)
	assert.Equal(t, "token expired", expired.Message)
}

func TestClient_SubmitOrderServerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "total mismatch"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	_, err := client.SubmitOrder(context.Background(), "tok", OrderRequest{})
	require.Error(t, err)

	var backend *errors.ErrBackend
	require.ErrorAs(t, err, &backend)
	assert.Equal(t, http.StatusBadRequest, backend.StatusCode)
	assert.Equal(t, "total mismatch", backend.Message)
}

func TestClient_SubmitOrderTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, zap.NewNop())

	_, err := client.SubmitOrder(context.Background(), "tok", OrderRequest{})
	require.Error(t, err)

	var backend *errors.ErrBackend
	assert.False(t, stderrors.As(err, &backend), "transport failures are not backend rejections")
}

func TestClient_GetProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/A1", r.URL.Path)
		w.Write([]byte(`{"_id": "A1", "name": "Triphala Churna", "price": 8.75, "inStock": true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	product, err := client.GetProduct(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "A1", product.ID)
	assert.Equal(t, "Triphala Churna", product.Name)
	assert.Equal(t, "8.75", product.Price.String())
	assert.True(t, product.InStock)
}

func TestClient_WishlistForwardsToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	body, err := client.GetWishlist(context.Background(), "tok-9")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", gotAuth)
	assert.JSONEq(t, `[]`, string(body))
}
