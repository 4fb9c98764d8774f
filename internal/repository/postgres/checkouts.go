package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/domain"
)

type checkoutSubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCheckoutSubmissionRepository creates a new checkout submission repository
func NewCheckoutSubmissionRepository(db *sql.DB, logger *zap.Logger) *checkoutSubmissionRepository {
	return &checkoutSubmissionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *checkoutSubmissionRepository) GetByDraftID(ctx context.Context, draftID uuid.UUID) (*domain.CheckoutSubmission, error) {
	query := `
		SELECT draft_id, cart_key, order_id, request_hash, created_at
		FROM checkout_submissions
		WHERE draft_id = $1
	`

	var sub domain.CheckoutSubmission

	err := r.db.QueryRowContext(ctx, query, draftID).Scan(
		&sub.DraftID,
		&sub.CartKey,
		&sub.OrderID,
		&sub.RequestHash,
		&sub.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get checkout submission", zap.Error(err))
		return nil, err
	}

	return &sub, nil
}

func (r *checkoutSubmissionRepository) Create(ctx context.Context, sub *domain.CheckoutSubmission) error {
	query := `
		INSERT INTO checkout_submissions (draft_id, cart_key, order_id, request_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		sub.DraftID,
		sub.CartKey,
		sub.OrderID,
		sub.RequestHash,
		sub.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create checkout submission", zap.Error(err))
		return err
	}

	return nil
}
