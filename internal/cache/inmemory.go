package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayurbazaar/storefront/internal/domain"
	"github.com/ayurbazaar/storefront/pkg/errors"
)

type inMemoryEntry struct {
	draft     *domain.CheckoutDraft
	expiresAt time.Time
}

// InMemorySnapshotCache is a TTL map suitable for single-instance deployments
// and tests. Expired entries are dropped lazily on access.
type InMemorySnapshotCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]inMemoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemorySnapshotCache creates a new in-memory snapshot cache
func NewInMemorySnapshotCache(ttl time.Duration) *InMemorySnapshotCache {
	return &InMemorySnapshotCache{
		entries: make(map[uuid.UUID]inMemoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *InMemorySnapshotCache) Get(_ context.Context, id uuid.UUID) (*domain.CheckoutDraft, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return nil, &errors.ErrNotFound{Resource: "checkout_draft", ID: id.String()}
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
		return nil, &errors.ErrNotFound{Resource: "checkout_draft", ID: id.String()}
	}

	return entry.draft, nil
}

func (c *InMemorySnapshotCache) Put(_ context.Context, draft *domain.CheckoutDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[draft.ID] = inMemoryEntry{
		draft:     draft,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *InMemorySnapshotCache) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
	return nil
}

var _ SnapshotCache = (*InMemorySnapshotCache)(nil)
