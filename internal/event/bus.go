package event

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bus is a named-event publish/subscribe registry with per-scope bulk
// removal. Handlers for a topic are invoked synchronously in registration
// order; a handler failure is isolated and logged, never propagated.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]*Subscription
	byID   map[string]*Subscription
	scopes map[string]map[string]*Subscription

	log *zap.Logger
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the logger used for handler failures.
func WithLogger(log *zap.Logger) BusOption {
	return func(b *Bus) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs:   make(map[Topic][]*Subscription),
		byID:   make(map[string]*Subscription),
		scopes: make(map[string]map[string]*Subscription),
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// On registers a handler for a topic. Multiple handlers per topic are
// supported and run in registration order on Emit.
func (b *Bus) On(topic Topic, handler Handler) (*Subscription, error) {
	return b.on(topic, handler, "")
}

// OnScoped registers a handler for a topic and additionally records it under
// the given scope for bulk removal via RemoveScope.
func (b *Bus) OnScoped(scope string, topic Topic, handler Handler) (*Subscription, error) {
	return b.on(topic, handler, scope)
}

func (b *Bus) on(topic Topic, handler Handler, scope string) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if topic == "" {
		return nil, ErrInvalidTopic
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		topic:   topic,
		scope:   scope,
		handler: handler,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[topic] = append(b.subs[topic], sub)
	b.byID[sub.id] = sub

	if scope != "" {
		scoped := b.scopes[scope]
		if scoped == nil {
			scoped = make(map[string]*Subscription)
			b.scopes[scope] = scoped
		}
		scoped[sub.id] = sub
	}

	return sub, nil
}

// Off removes a previously registered handler.
func (b *Bus) Off(sub *Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.byID[sub.id]; !exists {
		return ErrSubscriptionNotFound
	}
	b.remove(sub)
	return nil
}

// remove unlinks a subscription from all indexes. Must be called with mu held.
func (b *Bus) remove(sub *Subscription) {
	subs := b.subs[sub.topic]
	for i, s := range subs {
		if s.id == sub.id {
			b.subs[sub.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.topic]) == 0 {
		delete(b.subs, sub.topic)
	}

	if sub.scope != "" {
		if scoped := b.scopes[sub.scope]; scoped != nil {
			delete(scoped, sub.id)
			if len(scoped) == 0 {
				delete(b.scopes, sub.scope)
			}
		}
	}

	delete(b.byID, sub.id)
}

// Emit invokes every handler registered for the topic, in registration
// order, with the given payload. A handler that returns an error or panics
// is logged and skipped; the remaining handlers still run. Emitting on a
// topic with no listeners is a no-op.
func (b *Bus) Emit(ctx context.Context, topic Topic, payload any) {
	b.mu.RLock()
	subs := b.subs[topic]
	if len(subs) == 0 {
		b.mu.RUnlock()
		return
	}
	// Copy so handlers may subscribe/unsubscribe during emission.
	ordered := make([]*Subscription, len(subs))
	copy(ordered, subs)
	b.mu.RUnlock()

	for _, sub := range ordered {
		b.dispatch(ctx, sub, topic, payload)
	}
}

// dispatch runs a single handler with panic isolation.
func (b *Bus) dispatch(ctx context.Context, sub *Subscription, topic Topic, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("topic", string(topic)),
				zap.String("subscription", sub.id),
				zap.String("scope", sub.scope),
				zap.Any("panic", r),
			)
		}
	}()

	if err := sub.handler.Handle(ctx, payload); err != nil {
		b.log.Warn("event handler failed",
			zap.String("topic", string(topic)),
			zap.String("subscription", sub.id),
			zap.String("scope", sub.scope),
			zap.Error(err),
		)
	}
}

// ListenerCount returns the number of handlers registered for a topic.
func (b *Bus) ListenerCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// RemoveAllListeners clears the handlers for the given topics, or every
// handler on the bus when called with no arguments.
func (b *Bus) RemoveAllListeners(topics ...Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(topics) == 0 {
		b.subs = make(map[Topic][]*Subscription)
		b.byID = make(map[string]*Subscription)
		b.scopes = make(map[string]map[string]*Subscription)
		return
	}

	for _, topic := range topics {
		for _, sub := range b.subs[topic] {
			delete(b.byID, sub.id)
			if sub.scope != "" {
				if scoped := b.scopes[sub.scope]; scoped != nil {
					delete(scoped, sub.id)
					if len(scoped) == 0 {
						delete(b.scopes, sub.scope)
					}
				}
			}
		}
		delete(b.subs, topic)
	}
}

// RemoveScope removes every handler registered under the scope, across all
// topics, in one call. It returns the number of handlers removed; removing
// an unknown scope is a no-op.
func (b *Bus) RemoveScope(scope string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	scoped := b.scopes[scope]
	if len(scoped) == 0 {
		delete(b.scopes, scope)
		return 0
	}

	removed := 0
	for _, sub := range scoped {
		b.remove(sub)
		removed++
	}
	return removed
}

// HasScope reports whether the scope currently has any tracked handlers.
func (b *Bus) HasScope(scope string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.scopes[scope]) > 0
}

// Topics returns all topics that currently have at least one handler.
func (b *Bus) Topics() []Topic {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.subs) == 0 {
		return nil
	}
	topics := make([]Topic, 0, len(b.subs))
	for t := range b.subs {
		topics = append(topics, t)
	}
	return topics
}
