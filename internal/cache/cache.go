package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/ayurbazaar/storefront/internal/domain"
)

// SnapshotCache holds checkout drafts between checkout entry and submission.
// Drafts expire after their TTL; an expired or unknown draft reads as not found.
type SnapshotCache interface {
	// Get returns *errors.ErrNotFound when the draft is absent or expired
	Get(ctx context.Context, id uuid.UUID) (*domain.CheckoutDraft, error)
	Put(ctx context.Context, draft *domain.CheckoutDraft) error
	Delete(ctx context.Context, id uuid.UUID) error
}
