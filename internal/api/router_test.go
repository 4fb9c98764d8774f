package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/cache"
	"github.com/ayurbazaar/storefront/internal/cart"
	"github.com/ayurbazaar/storefront/internal/catalog"
	"github.com/ayurbazaar/storefront/internal/checkout"
	"github.com/ayurbazaar/storefront/internal/config"
	"github.com/ayurbazaar/storefront/internal/domain"
	"github.com/ayurbazaar/storefront/internal/marketplace"
	"github.com/ayurbazaar/storefront/internal/repository"
	"github.com/ayurbazaar/storefront/pkg/errors"
)

type memCartRepo struct {
	m    sync.RWMutex
	rows map[string][]byte
}

func (r *memCartRepo) Get(_ context.Context, key string) (*repository.CartRecord, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	raw, ok := r.rows[key]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "cart", ID: key}
	}
	return &repository.CartRecord{Key: key, Lines: raw, UpdatedAt: time.Now()}, nil
}

func (r *memCartRepo) Put(_ context.Context, key string, lines []byte, _ uuid.UUID) error {
	r.m.Lock()
	defer r.m.Unlock()
	r.rows[key] = lines
	return nil
}

func (r *memCartRepo) Delete(_ context.Context, key string, _ uuid.UUID) error {
	r.m.Lock()
	defer r.m.Unlock()
	delete(r.rows, key)
	return nil
}

func (r *memCartRepo) List(context.Context, int, int) ([]*repository.CartRecord, error) {
	return nil, nil
}

type memSubmissionRepo struct {
	m    sync.Mutex
	subs map[uuid.UUID]*domain.CheckoutSubmission
}

func (r *memSubmissionRepo) GetByDraftID(_ context.Context, draftID uuid.UUID) (*domain.CheckoutSubmission, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.subs[draftID], nil
}

func (r *memSubmissionRepo) Create(_ context.Context, sub *domain.CheckoutSubmission) error {
	r.m.Lock()
	defer r.m.Unlock()
	r.subs[sub.DraftID] = sub
	return nil
}

type memEventRepo struct{}

func (memEventRepo) Create(context.Context, *domain.CheckoutEvent) error { return nil }
func (memEventRepo) GetByDraftID(context.Context, uuid.UUID) ([]*domain.CheckoutEvent, error) {
	return nil, nil
}

// fakeBackend is an httptest marketplace: a tiny product catalog, an order
// endpoint that rejects the token "stale", and an echoing wishlist.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"_id":"prod-neem","name":"Neem Soap","price":3.25,"inStock":true}]`))
	})
	mux.HandleFunc("/api/products/prod-neem", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id":"prod-neem","name":"Neem Soap","price":3.25,"inStock":true}`))
	})
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "Bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"jwt expired"}`))
			return
		}
		w.Write([]byte(`{"_id":"order-777"}`))
	})
	mux.HandleFunc("/api/wishlist", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"unauthorized"}`))
			return
		}
		w.Write([]byte(`[]`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := fakeBackend(t)
	logger := zap.NewNop()

	cartRepo := &memCartRepo{rows: make(map[string][]byte)}
	repos := &repository.Repositories{
		Cart:               cartRepo,
		CheckoutSubmission: &memSubmissionRepo{subs: make(map[uuid.UUID]*domain.CheckoutSubmission)},
		CheckoutEvent:      memEventRepo{},
	}

	notifier := cart.NewNotifier(logger)
	store := cart.NewStore(cartRepo, notifier, uuid.New(), logger)

	client := marketplace.NewClient(backend.URL, logger)
	provider := catalog.NewCachedProvider(client, logger)
	snapshots := cache.NewInMemorySnapshotCache(time.Hour)
	orchestrator := checkout.NewOrchestrator(store, provider, snapshots, client, repos, logger)

	cfg := &config.Config{Environment: "test"}
	return NewRouter(cfg, store, notifier, orchestrator, client, logger)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, headers map[string]string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var cartHeaders = map[string]string{"X-Cart-Key": "cart-test"}

func TestCartRoutes_RequireCartKey(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/v1/cart", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartRoutes_AddAndRead(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/cart/items", cartHeaders,
		gin.H{"productId": "prod-neem", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])

	w = doJSON(t, router, http.MethodGet, "/v1/cart", cartHeaders, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	line := items[0].(map[string]interface{})
	assert.Equal(t, "prod-neem", line["productId"])
	assert.Equal(t, float64(2), line["quantity"])
}

func TestCartRoutes_NestedProductRefNormalized(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/cart/items", cartHeaders,
		gin.H{"product": gin.H{"_id": "prod-neem"}, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "prod-neem", items[0].(map[string]interface{})["productId"])
}

func TestCartRoutes_MissingProductID(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/cart/items", cartHeaders, gin.H{"quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decode(t, w)
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "productId")
}

func TestCartRoutes_UpdateBelowOneRemoves(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/cart/items", cartHeaders,
		gin.H{"productId": "prod-neem", "quantity": 2})

	w := doJSON(t, router, http.MethodPatch, "/v1/cart/items/prod-neem", cartHeaders,
		gin.H{"quantity": -1})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(0), body["count"])
	assert.Empty(t, body["items"])
}

func TestCartRoutes_CountAndClear(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/cart/items", cartHeaders,
		gin.H{"productId": "prod-neem", "quantity": 3})

	w := doJSON(t, router, http.MethodGet, "/v1/cart/count", cartHeaders, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["count"])

	w = doJSON(t, router, http.MethodDelete, "/v1/cart", cartHeaders, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/cart/count", cartHeaders, nil)
	assert.Equal(t, float64(0), decode(t, w)["count"])
}

func TestCheckout_EmptyCartRefused(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/checkout", cartHeaders, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func shippingPayload() gin.H {
	return gin.H{
		"customerId":    "cust-9",
		"fullName":      "Asha Perera",
		"email":         "asha@example.com",
		"phone":         "0771234567",
		"address":       "12 Herb Lane",
		"city":          "Colombo",
		"state":         "Western",
		"zipCode":       "10100",
		"paymentMethod": "cod",
	}
}

func TestCheckout_FullFlow(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/cart/items", cartHeaders,
		gin.H{"productId": "prod-neem", "quantity": 2})

	// Enter checkout: snapshot priced from the catalog
	w := doJSON(t, router, http.MethodPost, "/v1/checkout", cartHeaders, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	draft := decode(t, w)
	assert.Equal(t, "editing", draft["state"])
	assert.InDelta(t, 6.50, draft["total"].(float64), 0.001)
	draftID := draft["id"].(string)

	// Invalid phone: 422 with the field named, draft still editing
	bad := shippingPayload()
	bad["phone"] = "12345"
	w = doJSON(t, router, http.MethodPost, "/v1/checkout/"+draftID+"/submit", cartHeaders, bad)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "phone")

	// Valid submit completes and clears the cart
	headers := map[string]string{"X-Cart-Key": "cart-test", "Authorization": "Bearer good-token"}
	w = doJSON(t, router, http.MethodPost, "/v1/checkout/"+draftID+"/submit", headers, shippingPayload())
	require.Equal(t, http.StatusOK, w.Code)
	done := decode(t, w)
	assert.Equal(t, "complete", done["state"])
	assert.Equal(t, "order-777", done["orderId"])

	w = doJSON(t, router, http.MethodGet, "/v1/cart/count", cartHeaders, nil)
	assert.Equal(t, float64(0), decode(t, w)["count"])

	// Resubmitting a completed draft returns the same order id
	w = doJSON(t, router, http.MethodPost, "/v1/checkout/"+draftID+"/submit", headers, shippingPayload())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "order-777", decode(t, w)["orderId"])
}

func TestCheckout_ExpiredSessionKeepsCart(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/v1/cart/items", cartHeaders,
		gin.H{"productId": "prod-neem", "quantity": 1})

	w := doJSON(t, router, http.MethodPost, "/v1/checkout", cartHeaders, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	draftID := decode(t, w)["id"].(string)

	headers := map[string]string{"X-Cart-Key": "cart-test", "Authorization": "Bearer stale"}
	w = doJSON(t, router, http.MethodPost, "/v1/checkout/"+draftID+"/submit", headers, shippingPayload())
	require.Equal(t, http.StatusUnauthorized, w.Code)

	body := decode(t, w)
	draft := body["draft"].(map[string]interface{})
	assert.Equal(t, "editing", draft["state"])
	assert.True(t, strings.Contains(draft["errorMessage"].(string), "session has expired"))

	// Cart untouched
	w = doJSON(t, router, http.MethodGet, "/v1/cart/count", cartHeaders, nil)
	assert.Equal(t, float64(1), decode(t, w)["count"])
}

func TestCheckout_UnknownDraft(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/v1/checkout/"+uuid.NewString(), cartHeaders, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/checkout/not-a-uuid", cartHeaders, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProducts_Passthrough(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/v1/products", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Neem Soap")

	w = doJSON(t, router, http.MethodGet, "/v1/products/prod-neem", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prod-neem")
}

func TestWishlist_RequiresToken(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/v1/wishlist", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/wishlist",
		map[string]string{"Authorization": "Bearer good-token"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndBanner(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
