package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/api/middleware"
	"github.com/ayurbazaar/storefront/internal/cart"
)

const sseHeartbeatInterval = 30 * time.Second

// HandleCartEvents streams cart change notifications over SSE. The event
// carries the fresh item count; clients re-fetch the cart body themselves.
// Changes made by other service instances arrive through the same notifier,
// so a shopper with two open tabs sees both update.
func HandleCartEvents(store *cart.Store, notifier *cart.Notifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := middleware.GetCartKey(c)

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		// Buffered so a slow client coalesces bursts instead of blocking the
		// notifier's publish loop
		changes := make(chan struct{}, 8)
		unsubscribe := notifier.Subscribe(func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		count, err := store.Count(c.Request.Context(), key)
		if err != nil {
			logger.Warn("Failed to read cart for SSE connect", zap.String("key", key), zap.Error(err))
			count = 0
		}
		sendCartEvent(c, "connected", count)
		c.Writer.Flush()

		heartbeat := time.NewTicker(sseHeartbeatInterval)
		defer heartbeat.Stop()

		reqCtx := c.Request.Context()
		for {
			select {
			case <-reqCtx.Done():
				return
			case <-heartbeat.C:
				fmt.Fprintf(c.Writer, "event: heartbeat\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
				c.Writer.Flush()
			case <-changes:
				count, err := store.Count(reqCtx, key)
				if err != nil {
					logger.Warn("Failed to read cart for SSE event", zap.String("key", key), zap.Error(err))
					continue
				}
				sendCartEvent(c, "cart_changed", count)
				c.Writer.Flush()
			}
		}
	}
}

func sendCartEvent(c *gin.Context, event string, count int) {
	fmt.Fprintf(c.Writer, "event: %s\ndata: {\"count\":%d}\n\n", event, count)
}
