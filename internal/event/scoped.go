package event

import "context"

// ScopedBus is a fixed-scope view over a Bus. Every registration made
// through it is recorded under the bound scope, so Destroy releases all of
// the scope's handlers in one call. The kernel creates exactly one ScopedBus
// per plugin and destroys it whenever that plugin is torn down (rollback,
// unregister, or kernel destroy), so a plugin cannot leak handlers past its
// own lifetime.
type ScopedBus struct {
	bus   *Bus
	scope string
}

// NewScopedBus creates a view over bus bound to the given scope.
func NewScopedBus(bus *Bus, scope string) *ScopedBus {
	return &ScopedBus{bus: bus, scope: scope}
}

// Scope returns the bound scope name.
func (s *ScopedBus) Scope() string {
	return s.scope
}

// On registers a handler for a topic under this bus's scope.
func (s *ScopedBus) On(topic Topic, handler Handler) (*Subscription, error) {
	return s.bus.OnScoped(s.scope, topic, handler)
}

// Off removes a previously registered handler.
func (s *ScopedBus) Off(sub *Subscription) error {
	return s.bus.Off(sub)
}

// Emit publishes a payload on the underlying bus.
func (s *ScopedBus) Emit(ctx context.Context, topic Topic, payload any) {
	s.bus.Emit(ctx, topic, payload)
}

// ListenerCount returns the handler count for a topic on the underlying bus.
func (s *ScopedBus) ListenerCount(topic Topic) int {
	return s.bus.ListenerCount(topic)
}

// HasListeners reports whether the scope currently has any tracked handlers.
func (s *ScopedBus) HasListeners() bool {
	return s.bus.HasScope(s.scope)
}

// Destroy removes every handler registered under this bus's scope. It is
// idempotent; the view stays bound to the same bus and scope afterwards.
func (s *ScopedBus) Destroy() int {
	return s.bus.RemoveScope(s.scope)
}
