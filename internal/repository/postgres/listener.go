package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/config"
	"github.com/ayurbazaar/storefront/internal/domain"
)

const cartChangedChannel = "cart_changed"

// CartListener bridges postgres LISTEN/NOTIFY on the cart_changed channel
// into a Go channel. Writes from any service instance sharing the database
// surface here, which is how cart mutations made elsewhere reach this
// instance's notifier.
type CartListener struct {
	listener *pq.Listener
	logger   *zap.Logger
	changes  chan domain.CartChange
}

// NewCartListener creates a listener on the cart_changed channel
func NewCartListener(cfg config.DatabaseConfig, logger *zap.Logger) (*CartListener, error) {
	l := pq.NewListener(cfg.DSN(), 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("Cart listener connection event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})

	if err := l.Listen(cartChangedChannel); err != nil {
		l.Close()
		return nil, err
	}

	return &CartListener{
		listener: l,
		logger:   logger,
		changes:  make(chan domain.CartChange, 64),
	}, nil
}

// Changes returns the stream of cart change notifications
func (c *CartListener) Changes() <-chan domain.CartChange {
	return c.changes
}

// Run pumps notifications until the context is cancelled. The periodic ping
// keeps the connection alive and forces a reconnect if it has gone away.
func (c *CartListener) Run(ctx context.Context) {
	defer close(c.changes)

	for {
		select {
		case <-ctx.Done():
			c.listener.Close()
			return
		case n := <-c.listener.Notify:
			if n == nil {
				// Reconnect signal; the store re-reads on every access so
				// missed notifications only delay a re-render, never corrupt state.
				continue
			}
			var change domain.CartChange
			if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
				c.logger.Warn("Failed to parse cart change payload", zap.Error(err), zap.String("payload", n.Extra))
				continue
			}
			select {
			case c.changes <- change:
			default:
				c.logger.Warn("Cart change channel full, dropping notification", zap.String("key", change.Key))
			}
		case <-time.After(90 * time.Second):
			go func() {
				if err := c.listener.Ping(); err != nil {
					c.logger.Warn("Cart listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}
