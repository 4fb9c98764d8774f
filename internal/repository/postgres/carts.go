package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/repository"
	"github.com/ayurbazaar/storefront/pkg/errors"
)

type cartRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB, logger *zap.Logger) *cartRepository {
	return &cartRepository{
		db:     db,
		logger: logger,
	}
}

func (r *cartRepository) Get(ctx context.Context, key string) (*repository.CartRecord, error) {
	query := `
		SELECT key, lines, updated_at
		FROM carts
		WHERE key = $1
	`

	var record repository.CartRecord

	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&record.Key,
		&record.Lines,
		&record.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "cart", ID: key}
	}
	if err != nil {
		r.logger.Error("Failed to get cart", zap.Error(err), zap.String("key", key))
		return nil, err
	}

	return &record, nil
}

// Put upserts the cart row. The carts table carries a trigger that emits a
// pg_notify on the cart_changed channel with {key, origin}, which the
// listener bridge turns into cross-instance change notifications.
func (r *cartRepository) Put(ctx context.Context, key string, lines []byte, origin uuid.UUID) error {
	query := `
		INSERT INTO carts (key, lines, origin, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET lines = EXCLUDED.lines, origin = EXCLUDED.origin, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, key, lines, origin, time.Now())
	if err != nil {
		r.logger.Error("Failed to put cart", zap.Error(err), zap.String("key", key))
		return err
	}

	return nil
}

func (r *cartRepository) Delete(ctx context.Context, key string, origin uuid.UUID) error {
	// Stamp the origin before deleting so the delete trigger reports who
	// cleared the cart.
	query := `
		UPDATE carts SET origin = $2 WHERE key = $1;
	`
	if _, err := r.db.ExecContext(ctx, query, key, origin); err != nil {
		r.logger.Error("Failed to stamp cart origin before delete", zap.Error(err), zap.String("key", key))
		return err
	}

	_, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE key = $1`, key)
	if err != nil {
		r.logger.Error("Failed to delete cart", zap.Error(err), zap.String("key", key))
		return err
	}

	return nil
}

func (r *cartRepository) List(ctx context.Context, limit, offset int) ([]*repository.CartRecord, error) {
	query := `
		SELECT key, lines, updated_at
		FROM carts
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list carts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []*repository.CartRecord
	for rows.Next() {
		var record repository.CartRecord
		if err := rows.Scan(&record.Key, &record.Lines, &record.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}
