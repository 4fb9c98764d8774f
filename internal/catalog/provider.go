package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/domain"
)

// Provider resolves product details (display name, unit price) for checkout
// snapshot pricing
type Provider interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

// marketplaceAPI is the slice of the marketplace client the provider needs
type marketplaceAPI interface {
	GetProducts(ctx context.Context) ([]byte, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

// CachedProvider serves products from a periodically refreshed in-memory
// snapshot of the marketplace catalog, falling through to a direct fetch on
// miss. Checkout entry prices many lines at once; without the warm cache
// every entry would fan out one backend call per line.
type CachedProvider struct {
	client marketplaceAPI
	logger *zap.Logger

	mu       sync.RWMutex
	products map[string]domain.Product
}

// NewCachedProvider creates a catalog provider backed by the marketplace client
func NewCachedProvider(client marketplaceAPI, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		client:   client,
		logger:   logger,
		products: make(map[string]domain.Product),
	}
}

// GetProduct returns the cached product when present, otherwise fetches it
// directly and caches the result
func (p *CachedProvider) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	p.mu.RLock()
	product, ok := p.products[productID]
	p.mu.RUnlock()
	if ok {
		return &product, nil
	}

	fetched, err := p.client.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.products[fetched.ID] = *fetched
	p.mu.Unlock()

	return fetched, nil
}

// RefreshOnce replaces the cached catalog with the backend's current product
// list. Errors are logged, not returned; a stale catalog still serves.
func (p *CachedProvider) RefreshOnce(ctx context.Context) {
	body, err := p.client.GetProducts(ctx)
	if err != nil {
		p.logger.Warn("Catalog refresh: marketplace request failed", zap.Error(err))
		return
	}

	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		p.logger.Warn("Catalog refresh: parse failed", zap.Error(err))
		return
	}

	fresh := make(map[string]domain.Product, len(products))
	for _, product := range products {
		if product.ID == "" {
			continue
		}
		fresh[product.ID] = product
	}

	p.mu.Lock()
	p.products = fresh
	p.mu.Unlock()

	p.logger.Info("Catalog refreshed", zap.Int("products", len(fresh)))
}

// RunRefreshLoop refreshes once, then every interval. Call from a goroutine.
func (p *CachedProvider) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	p.RefreshOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RefreshOnce(ctx)
		}
	}
}

var _ Provider = (*CachedProvider)(nil)
