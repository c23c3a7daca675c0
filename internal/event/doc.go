// Package event provides the publish/subscribe bus used for communication
// between the kernel and its plugins.
//
// The bus is deliberately small: topics are exact-match names, handlers run
// synchronously in registration order, and a failing handler never affects
// the other handlers for the same emission or the caller of Emit. This
// matches the kernel's cooperative, strictly sequential execution model.
//
// # Topics
//
// Topics use dot notation:
//
//	plugin.registered
//	plugin.initialized
//	kernel.destroyed
//
// # Scopes
//
// A scope groups registrations for bulk removal. The kernel gives every
// plugin its own scope so that tearing a plugin down releases all of its
// handlers in one call:
//
//	sub, _ := bus.OnScoped("vim-surround", "buffer.saved", handler)
//	...
//	bus.RemoveScope("vim-surround") // releases every handler in the scope
//
// ScopedBus wraps a Bus with a fixed scope so plugin authors never track
// handlers manually.
//
// # Error Isolation
//
// A handler that returns an error or panics is logged individually. Emit
// never propagates handler failures; emission to the remaining handlers
// continues.
//
// # Thread Safety
//
// Bus and ScopedBus are safe for concurrent use. Handlers themselves must
// manage their own thread safety.
package event
