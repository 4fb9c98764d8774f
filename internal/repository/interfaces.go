package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ayurbazaar/storefront/internal/domain"
)

// CartRecord is the persisted representation of one cart: a single row whose
// Lines column holds the JSON-encoded array of {productId, quantity}.
// Parsing (and recovery from corrupt JSON) is the cart store's concern.
type CartRecord struct {
	Key       string
	Lines     []byte
	UpdatedAt time.Time
}

// CartRepository defines cart key-value data access methods
type CartRepository interface {
	// Get returns the raw persisted lines for a cart key.
	// Returns *errors.ErrNotFound when no row exists.
	Get(ctx context.Context, key string) (*CartRecord, error)
	// Put upserts the full lines value for a cart key. Origin identifies the
	// writing service instance so change notifications can be attributed.
	Put(ctx context.Context, key string, lines []byte, origin uuid.UUID) error
	// Delete removes the cart row; no-op if absent
	Delete(ctx context.Context, key string, origin uuid.UUID) error
	// List returns cart rows ordered by most recently updated
	List(ctx context.Context, limit, offset int) ([]*CartRecord, error)
}

// CheckoutSubmissionRepository defines submission (draft -> order) data access
type CheckoutSubmissionRepository interface {
	// GetByDraftID returns nil, nil when the draft has no recorded submission
	GetByDraftID(ctx context.Context, draftID uuid.UUID) (*domain.CheckoutSubmission, error)
	Create(ctx context.Context, sub *domain.CheckoutSubmission) error
}

// CheckoutEventRepository defines checkout audit event data access
type CheckoutEventRepository interface {
	Create(ctx context.Context, event *domain.CheckoutEvent) error
	GetByDraftID(ctx context.Context, draftID uuid.UUID) ([]*domain.CheckoutEvent, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Cart               CartRepository
	CheckoutSubmission CheckoutSubmissionRepository
	CheckoutEvent      CheckoutEventRepository
}
