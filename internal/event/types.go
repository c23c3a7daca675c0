package event

import "context"

// Topic is a named event channel. Topics use dot notation
// (e.g. "plugin.registered") and are matched exactly.
type Topic string

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes an event payload.
	// The payload is type-erased; handlers should type-assert.
	Handle(ctx context.Context, payload any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, payload any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, payload any) error {
	return f(ctx, payload)
}
