package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/domain"
)

type checkoutEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCheckoutEventRepository creates a new checkout event repository
func NewCheckoutEventRepository(db *sql.DB, logger *zap.Logger) *checkoutEventRepository {
	return &checkoutEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *checkoutEventRepository) Create(ctx context.Context, event *domain.CheckoutEvent) error {
	query := `
		INSERT INTO checkout_events (id, draft_id, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	eventDataJSON, err := json.Marshal(event.EventData)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		event.ID,
		event.DraftID,
		event.EventType,
		eventDataJSON,
		event.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create checkout event", zap.Error(err))
		return err
	}

	return nil
}

func (r *checkoutEventRepository) GetByDraftID(ctx context.Context, draftID uuid.UUID) ([]*domain.CheckoutEvent, error) {
	query := `
		SELECT id, draft_id, event_type, event_data, created_at
		FROM checkout_events
		WHERE draft_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, draftID)
	if err != nil {
		r.logger.Error("Failed to get checkout events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []*domain.CheckoutEvent
	for rows.Next() {
		var event domain.CheckoutEvent
		var eventDataJSON []byte

		if err := rows.Scan(
			&event.ID,
			&event.DraftID,
			&event.EventType,
			&eventDataJSON,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}

		if len(eventDataJSON) > 0 {
			if err := json.Unmarshal(eventDataJSON, &event.EventData); err != nil {
				r.logger.Warn("Failed to unmarshal event data", zap.Error(err))
			}
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}
