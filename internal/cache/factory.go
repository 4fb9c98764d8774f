package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/config"
)

// NewSnapshotCache picks the snapshot cache backend: Redis when configured,
// in-memory otherwise. In-memory drafts do not survive a restart and are not
// shared across instances, which is acceptable for a single storefront node.
func NewSnapshotCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) SnapshotCache {
	if cfg.Host == "" {
		logger.Info("Using in-memory checkout snapshot cache")
		return NewInMemorySnapshotCache(ttl)
	}

	redisCache, err := NewRedisSnapshotCache(cfg, ttl)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory snapshot cache", zap.Error(err))
		return NewInMemorySnapshotCache(ttl)
	}

	logger.Info("Using Redis checkout snapshot cache", zap.String("host", cfg.Host))
	return redisCache
}
