package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayurbazaar/storefront/internal/config"
	"github.com/ayurbazaar/storefront/internal/domain"
	"github.com/ayurbazaar/storefront/pkg/errors"
)

// RedisSnapshotCache stores checkout drafts in Redis so drafts survive a
// restart and are visible to every instance behind a load balancer
type RedisSnapshotCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSnapshotCache creates a Redis-backed snapshot cache
func NewRedisSnapshotCache(cfg config.RedisConfig, ttl time.Duration) (*RedisSnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSnapshotCache{
		client:    client,
		keyPrefix: "checkout:draft:",
		ttl:       ttl,
	}, nil
}

func (c *RedisSnapshotCache) Get(ctx context.Context, id uuid.UUID) (*domain.CheckoutDraft, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+id.String()).Bytes()
	if err == redis.Nil {
		return nil, &errors.ErrNotFound{Resource: "checkout_draft", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout draft: %w", err)
	}

	var draft domain.CheckoutDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout draft: %w", err)
	}

	return &draft, nil
}

func (c *RedisSnapshotCache) Put(ctx context.Context, draft *domain.CheckoutDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout draft: %w", err)
	}

	if err := c.client.Set(ctx, c.keyPrefix+draft.ID.String(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store checkout draft: %w", err)
	}

	return nil
}

func (c *RedisSnapshotCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.keyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete checkout draft: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}

var _ SnapshotCache = (*RedisSnapshotCache)(nil)
