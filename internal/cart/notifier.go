package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ayurbazaar/storefront/internal/domain"
)

// Handler is a zero-argument callback invoked on every cart change.
// Handlers re-read the store for current state; no payload is delivered.
type Handler func()

type subscription struct {
	id      uint64
	handler Handler
}

// Notifier is the process-wide broadcast channel for cart changes. The store
// publishes after every mutation; Bridge folds in change notifications from
// other service instances so subscribers observe one stream regardless of
// where a mutation happened.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64
	subs   []*subscription
	logger *zap.Logger
}

// NewNotifier creates a new cart change notifier
func NewNotifier(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{logger: logger}
}

// Subscribe registers a handler and returns its unsubscribe function.
// Handlers are invoked in registration order.
func (n *Notifier) Subscribe(handler Handler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	sub := &subscription{id: n.nextID, handler: handler}
	n.subs = append(n.subs, sub)

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == sub.id {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish synchronously invokes all registered handlers in registration order
func (n *Notifier) Publish() {
	n.mu.Lock()
	subs := make([]*subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, sub := range subs {
		n.dispatch(sub.handler)
	}
}

// Bridge consumes storage change notifications and republishes them locally.
// Changes stamped with ownOrigin are dropped: the store already published
// those synchronously at mutation time.
func (n *Notifier) Bridge(ctx context.Context, changes <-chan domain.CartChange, ownOrigin string) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if change.Origin == ownOrigin {
				continue
			}
			n.logger.Debug("Cart changed in another instance",
				zap.String("key", change.Key),
				zap.String("origin", change.Origin),
			)
			n.Publish()
		}
	}
}

// dispatch safely invokes a handler
func (n *Notifier) dispatch(handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Cart change handler panicked", zap.Any("panic", r))
		}
	}()

	handler()
}
