package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/domain"
	"github.com/ayurbazaar/storefront/internal/repository"
	"github.com/ayurbazaar/storefront/pkg/errors"
)

// Store is the sole owner of cart state. Every mutation runs
// read-modify-persist-notify synchronously under a per-key lock, so a
// subscriber invoked by the publish observes already-persisted state if it
// re-reads. The persisted row is the single source of truth: nothing is
// cached between calls.
type Store struct {
	repo     repository.CartRepository
	notifier *Notifier
	origin   uuid.UUID
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a cart store. Origin identifies this service instance in
// storage change notifications.
func NewStore(repo repository.CartRepository, notifier *Notifier, origin uuid.UUID, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:     repo,
		notifier: notifier,
		origin:   origin,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Read returns the current lines for a cart key. A missing row or corrupt
// persisted JSON reads as an empty cart; corruption is never surfaced to the
// caller and heals on the next mutation.
func (s *Store) Read(ctx context.Context, key string) ([]domain.CartLine, error) {
	record, err := s.repo.Get(ctx, key)
	if err != nil {
		if _, isNotFound := err.(*errors.ErrNotFound); isNotFound {
			return []domain.CartLine{}, nil
		}
		return nil, err
	}

	return s.decode(key, record.Lines), nil
}

// Count returns the sum of all line quantities for a cart key
func (s *Store) Count(ctx context.Context, key string) (int, error) {
	lines, err := s.Read(ctx, key)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total, nil
}

// Contains reports whether a line exists for the given product
func (s *Store) Contains(ctx context.Context, key, productID string) (bool, error) {
	lines, err := s.Read(ctx, key)
	if err != nil {
		return false, err
	}

	for _, line := range lines {
		if line.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

// Add merges quantity into an existing line for the product, or appends a new
// line. Quantities below 1 add a single unit.
func (s *Store) Add(ctx context.Context, key, productID string, quantity int) ([]domain.CartLine, error) {
	if quantity < 1 {
		quantity = 1
	}

	return s.mutate(ctx, key, func(lines []domain.CartLine) []domain.CartLine {
		for i, line := range lines {
			if line.ProductID == productID {
				lines[i].Quantity += quantity
				return lines
			}
		}
		return append(lines, domain.CartLine{ProductID: productID, Quantity: quantity})
	})
}

// Update sets a line's quantity exactly. A quantity below 1 removes the line.
// Updating an absent product leaves the cart unchanged.
func (s *Store) Update(ctx context.Context, key, productID string, quantity int) ([]domain.CartLine, error) {
	if quantity < 1 {
		return s.Remove(ctx, key, productID)
	}

	return s.mutate(ctx, key, func(lines []domain.CartLine) []domain.CartLine {
		for i, line := range lines {
			if line.ProductID == productID {
				lines[i].Quantity = quantity
				break
			}
		}
		return lines
	})
}

// Remove deletes the line for the product if present
func (s *Store) Remove(ctx context.Context, key, productID string) ([]domain.CartLine, error) {
	return s.mutate(ctx, key, func(lines []domain.CartLine) []domain.CartLine {
		kept := lines[:0]
		for _, line := range lines {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		return kept
	})
}

// Clear deletes the entire persisted cart
func (s *Store) Clear(ctx context.Context, key string) error {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repo.Delete(ctx, key, s.origin); err != nil {
		return err
	}

	s.notifier.Publish()
	return nil
}

// mutate runs read-modify-persist-notify as one synchronous step under the
// key's lock. The full resulting collection is persisted even when the
// transform was a no-op, which is also what rewrites corrupt stored data.
func (s *Store) mutate(ctx context.Context, key string, transform func([]domain.CartLine) []domain.CartLine) ([]domain.CartLine, error) {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	var current []domain.CartLine
	record, err := s.repo.Get(ctx, key)
	if err != nil {
		if _, isNotFound := err.(*errors.ErrNotFound); !isNotFound {
			return nil, err
		}
		current = []domain.CartLine{}
	} else {
		current = s.decode(key, record.Lines)
	}

	next := normalize(transform(current))

	encoded, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Put(ctx, key, encoded, s.origin); err != nil {
		return nil, err
	}

	s.notifier.Publish()
	return next, nil
}

// decode parses persisted lines, treating unparseable data as an empty cart
func (s *Store) decode(key string, raw []byte) []domain.CartLine {
	if len(raw) == 0 {
		return []domain.CartLine{}
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Warn("Corrupt cart data, treating as empty",
			zap.String("key", key),
			zap.Error(err),
		)
		return []domain.CartLine{}
	}

	return normalize(lines)
}

// normalize enforces the cart invariants: at most one line per product
// (quantities merged), no line below quantity 1.
func normalize(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, line := range lines {
		if line.ProductID == "" || line.Quantity < 1 {
			continue
		}
		if i, ok := index[line.ProductID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}

	return out
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}
