package kernel

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dshills/plugkit/internal/event"
)

// entry wraps a registered plugin with its lifecycle state and its dedicated
// scoped event bus. Entries are owned exclusively by the Kernel; state and
// err are guarded by the kernel's mutex.
type entry struct {
	plugin Plugin
	state  PluginState
	err    error
	scoped *event.ScopedBus
}

// Kernel orchestrates plugin registration, topological ordering, sequential
// initialization with rollback, and teardown. It owns the shared Context and
// the event bus exposed to plugins.
type Kernel struct {
	mu      sync.RWMutex
	state   State
	entries map[string]*entry
	order   []string

	kctx *Context
	bus  *event.Bus
	log  *zap.Logger

	// flight collapses concurrent Init calls into one pass.
	flight singleflight.Group
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithContextValues seeds the kernel's shared Context.
func WithContextValues(values map[string]any) Option {
	return func(k *Kernel) {
		k.kctx = NewContext(values)
	}
}

// WithLogger sets the logger used for teardown and background-init failures.
func WithLogger(log *zap.Logger) Option {
	return func(k *Kernel) {
		if log != nil {
			k.log = log
		}
	}
}

// New creates an idle kernel with an empty registry.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		state:   StateIdle,
		entries: make(map[string]*entry),
		log:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.kctx == nil {
		k.kctx = NewContext(nil)
	}
	k.bus = event.NewBus(event.WithLogger(k.log))

	return k
}

// Register adds a plugin to the registry and synchronously invokes its
// Install hook. On any failure the registry is left exactly as it was:
// duplicate names fail with AlreadyRegisteredError, absent dependencies with
// DependencyMissingError, and an Install error removes the entry and its
// scoped bus before being returned.
//
// If the kernel is already initialized, the plugin is initialized in the
// background; a failure there is reported on TopicPluginError, never to the
// Register caller.
func (k *Kernel) Register(p Plugin) error {
	if p == nil {
		return ErrNilPlugin
	}
	name := p.Name()
	if name == "" {
		return ErrEmptyName
	}

	k.mu.Lock()
	switch k.state {
	case StateDestroyed:
		k.mu.Unlock()
		return ErrKernelDestroyed
	case StateInitializing:
		k.mu.Unlock()
		return ErrInitInProgress
	}
	if _, exists := k.entries[name]; exists {
		k.mu.Unlock()
		return &AlreadyRegisteredError{Name: name}
	}
	for _, dep := range p.Dependencies() {
		if _, ok := k.entries[dep]; !ok {
			k.mu.Unlock()
			return &DependencyMissingError{Plugin: name, Dependency: dep}
		}
	}

	e := &entry{
		plugin: p,
		state:  PluginStateInstalling,
		scoped: event.NewScopedBus(k.bus, name),
	}
	k.entries[name] = e
	k.order = append(k.order, name)
	k.mu.Unlock()

	// Install may call back into the kernel, so it runs outside the lock.
	// The installing state keeps the entry out of any concurrent Init pass
	// until Install has succeeded.
	if err := k.runInstall(e); err != nil {
		k.mu.Lock()
		delete(k.entries, name)
		k.removeFromOrder(name)
		k.mu.Unlock()
		e.scoped.Destroy()
		return fmt.Errorf("install plugin %q: %w", name, err)
	}

	k.mu.Lock()
	e.state = PluginStateRegistered
	initialized := k.state == StateInitialized
	k.mu.Unlock()

	k.bus.Emit(context.Background(), TopicPluginRegistered, PluginRegistered{
		Name:    name,
		Version: p.Version(),
	})

	if initialized {
		go k.initLate(e)
	}
	return nil
}

// Init initializes every registered plugin in dependency order, awaiting
// each OnInit hook before starting the next. It is idempotent once the
// kernel is initialized and single-flight while a pass is in flight:
// concurrent callers share one execution and no hook runs twice.
//
// If a hook fails, its plugin transitions to the error state, its OnError
// hook is notified, every plugin activated during the pass is torn down in
// reverse order, the kernel reverts to idle, and Init returns an InitError
// naming the failing plugin and wrapping the cause. On a later pass the
// errored plugin is skipped and blocks its dependents, transitively: a
// dependent never activates over a dependency that is not active.
//
// A dependency cycle yields a CircularDependencyError. Calling Init on a
// destroyed kernel fails with ErrKernelDestroyed.
func (k *Kernel) Init(ctx context.Context) error {
	k.mu.RLock()
	state := k.state
	k.mu.RUnlock()

	switch state {
	case StateInitialized:
		return nil
	case StateDestroyed:
		return ErrKernelDestroyed
	}

	_, err, _ := k.flight.Do("init", func() (any, error) {
		return nil, k.doInit(ctx)
	})
	return err
}

// doInit runs a single initialization pass.
func (k *Kernel) doInit(ctx context.Context) error {
	k.mu.Lock()
	switch k.state {
	case StateInitialized:
		k.mu.Unlock()
		return nil
	case StateDestroyed:
		k.mu.Unlock()
		return ErrKernelDestroyed
	}
	order, err := topoSort(k.entries, k.order)
	if err != nil {
		k.mu.Unlock()
		return err
	}
	k.state = StateInitializing
	k.mu.Unlock()

	var activated []*entry
	// Entries that cannot start this pass: errored plugins and, transitively,
	// everything depending on them. A dependent never activates over a
	// dependency that is not active.
	blocked := make(map[string]bool)
	for _, name := range order {
		k.mu.Lock()
		e := k.entries[name]
		if e == nil {
			k.mu.Unlock()
			continue
		}
		switch e.state {
		case PluginStateError:
			// Terminal until corrective re-registration.
			blocked[name] = true
			k.mu.Unlock()
			continue
		case PluginStateRegistered:
		default:
			// Already active from an earlier pass, or still installing;
			// never re-run a hook.
			k.mu.Unlock()
			continue
		}
		ready := true
		for _, dep := range e.plugin.Dependencies() {
			de := k.entries[dep]
			if blocked[dep] || de == nil || de.state != PluginStateActive {
				ready = false
				break
			}
		}
		if !ready {
			blocked[name] = true
			k.mu.Unlock()
			continue
		}
		e.state = PluginStateInitializing
		k.mu.Unlock()

		k.bus.Emit(ctx, TopicPluginInitializing, PluginInitializing{Name: name})

		if err := k.runInit(ctx, e); err != nil {
			k.failEntry(ctx, e, err)
			k.rollback(ctx, activated)
			k.setKernelState(StateIdle)
			return &InitError{Plugin: name, Err: err}
		}

		k.setEntryState(e, PluginStateActive, nil)
		activated = append(activated, e)
		k.bus.Emit(ctx, TopicPluginInitialized, PluginInitialized{Name: name})
	}

	k.setKernelState(StateInitialized)
	k.bus.Emit(ctx, TopicKernelInitialized, KernelInitialized{Plugins: order})
	return nil
}

// initLate initializes a plugin registered after Init completed. Errors are
// routed to the plugin's OnError hook and TopicPluginError; no caller is
// rejected.
func (k *Kernel) initLate(e *entry) {
	ctx := context.Background()
	name := e.plugin.Name()

	k.mu.Lock()
	if k.state != StateInitialized || k.entries[name] != e || e.state != PluginStateRegistered {
		k.mu.Unlock()
		return
	}
	for _, dep := range e.plugin.Dependencies() {
		if de := k.entries[dep]; de == nil || de.state != PluginStateActive {
			k.mu.Unlock()
			k.failEntry(ctx, e, fmt.Errorf("dependency %q is not active", dep))
			k.log.Error("background plugin initialization failed",
				zap.String("plugin", name),
				zap.String("dependency", dep),
			)
			return
		}
	}
	e.state = PluginStateInitializing
	k.mu.Unlock()

	k.bus.Emit(ctx, TopicPluginInitializing, PluginInitializing{Name: name})

	if err := k.runInit(ctx, e); err != nil {
		k.failEntry(ctx, e, err)
		k.log.Error("background plugin initialization failed",
			zap.String("plugin", name),
			zap.Error(err),
		)
		return
	}

	k.setEntryState(e, PluginStateActive, nil)
	k.bus.Emit(ctx, TopicPluginInitialized, PluginInitialized{Name: name})
}

// failEntry records an init failure: error state, OnError notification,
// TopicPluginError emission.
func (k *Kernel) failEntry(ctx context.Context, e *entry, err error) {
	k.setEntryState(e, PluginStateError, err)
	if h, ok := e.plugin.(ErrorHandler); ok {
		h.OnError(err)
	}
	k.bus.Emit(ctx, TopicPluginError, PluginError{Name: e.plugin.Name(), Err: err})
}

// rollback tears down the entries activated during a failed Init pass, in
// reverse activation order. Each entry's OnDestroy is awaited and its scoped
// listeners released; the entry returns to the registered state so a later
// Init may retry it.
func (k *Kernel) rollback(ctx context.Context, activated []*entry) {
	for i := len(activated) - 1; i >= 0; i-- {
		k.teardown(ctx, activated[i], PluginStateRegistered)
	}
}

// Unregister removes a plugin from the registry and destroys it: OnDestroy
// is awaited and its scoped listeners are released. It fails with
// NotFoundError for unknown names and with DependencyConflictError while any
// other registered plugin depends on the named one; dependents must be
// removed first. Teardown failures are logged, not returned.
func (k *Kernel) Unregister(ctx context.Context, name string) error {
	k.mu.Lock()
	switch k.state {
	case StateDestroyed:
		k.mu.Unlock()
		return ErrKernelDestroyed
	case StateInitializing:
		k.mu.Unlock()
		return ErrInitInProgress
	}
	e, exists := k.entries[name]
	if !exists {
		k.mu.Unlock()
		return &NotFoundError{Name: name}
	}
	for _, other := range k.order {
		if other == name {
			continue
		}
		if slices.Contains(k.entries[other].plugin.Dependencies(), name) {
			k.mu.Unlock()
			return &DependencyConflictError{Name: name, Dependent: other}
		}
	}
	delete(k.entries, name)
	k.removeFromOrder(name)
	k.mu.Unlock()

	k.teardown(ctx, e, PluginStateDestroyed)
	k.bus.Emit(ctx, TopicPluginUnregistered, PluginUnregistered{Name: name})
	return nil
}

// Destroy tears down every plugin in reverse dependency order and leaves the
// kernel in its terminal state. It is idempotent; a second call is a no-op.
// Each plugin's teardown is isolated: a failing OnDestroy is logged and
// never aborts the teardown of the remaining plugins.
func (k *Kernel) Destroy(ctx context.Context) error {
	k.mu.Lock()
	switch k.state {
	case StateDestroyed:
		k.mu.Unlock()
		return nil
	case StateInitializing:
		k.mu.Unlock()
		return ErrInitInProgress
	}

	order, err := topoSort(k.entries, k.order)
	if err != nil {
		// Best-effort teardown must still complete; fall back to reverse
		// registration order, which is dependency-safe for everything
		// registered through Register.
		order = slices.Clone(k.order)
	}
	entries := make([]*entry, 0, len(order))
	for _, name := range order {
		entries = append(entries, k.entries[name])
	}
	k.entries = make(map[string]*entry)
	k.order = nil
	k.state = StateDestroyed
	k.mu.Unlock()

	for i := len(entries) - 1; i >= 0; i-- {
		k.teardown(ctx, entries[i], PluginStateDestroyed)
	}

	k.bus.Emit(ctx, TopicKernelDestroyed, KernelDestroyed{})
	k.bus.RemoveAllListeners()
	return nil
}

// teardown destroys one entry: OnDestroy awaited with panic isolation,
// scoped listeners released, state set to next.
func (k *Kernel) teardown(ctx context.Context, e *entry, next PluginState) {
	if err := k.runDestroy(ctx, e); err != nil {
		k.log.Error("plugin teardown failed",
			zap.String("plugin", e.plugin.Name()),
			zap.Error(err),
		)
	}
	e.scoped.Destroy()
	k.setEntryState(e, next, nil)
}

// runInstall invokes the Install hook with panic isolation.
func (k *Kernel) runInstall(e *entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("install hook panicked: %v", r)
		}
	}()
	return e.plugin.Install(k)
}

// runInit invokes the OnInit hook, if present, with panic isolation.
func (k *Kernel) runInit(ctx context.Context, e *entry) (err error) {
	init, ok := e.plugin.(Initializer)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("init hook panicked: %v", r)
		}
	}()
	return init.OnInit(ctx, k.kctx)
}

// runDestroy invokes the OnDestroy hook, if present, with panic isolation.
func (k *Kernel) runDestroy(ctx context.Context, e *entry) (err error) {
	d, ok := e.plugin.(Destroyer)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("destroy hook panicked: %v", r)
		}
	}()
	return d.OnDestroy(ctx)
}

// setEntryState updates an entry's state and error under the kernel lock.
func (k *Kernel) setEntryState(e *entry, state PluginState, err error) {
	k.mu.Lock()
	e.state = state
	e.err = err
	k.mu.Unlock()
}

// setKernelState updates the kernel state under the lock.
func (k *Kernel) setKernelState(state State) {
	k.mu.Lock()
	k.state = state
	k.mu.Unlock()
}

// removeFromOrder removes a name from the registration order.
// Must be called with mu held.
func (k *Kernel) removeFromOrder(name string) {
	for i, n := range k.order {
		if n == name {
			k.order = append(k.order[:i], k.order[i+1:]...)
			return
		}
	}
}

// On registers an event handler on the kernel's bus.
func (k *Kernel) On(topic event.Topic, handler event.Handler) (*event.Subscription, error) {
	return k.bus.On(topic, handler)
}

// Off removes a previously registered event handler.
func (k *Kernel) Off(sub *event.Subscription) error {
	return k.bus.Off(sub)
}

// Emit publishes a payload on the kernel's bus.
func (k *Kernel) Emit(ctx context.Context, topic event.Topic, payload any) {
	k.bus.Emit(ctx, topic, payload)
}

// Get returns a registered plugin by name.
func (k *Kernel) Get(name string) (Plugin, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	e, exists := k.entries[name]
	if !exists {
		return nil, false
	}
	return e.plugin, true
}

// Has reports whether a plugin is registered.
func (k *Kernel) Has(name string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	_, exists := k.entries[name]
	return exists
}

// List returns the registered plugin names in registration order.
func (k *Kernel) List() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return slices.Clone(k.order)
}

// Count returns the number of registered plugins.
func (k *Kernel) Count() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.entries)
}

// PluginState returns the lifecycle state of a registered plugin.
func (k *Kernel) PluginState(name string) (PluginState, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	e, exists := k.entries[name]
	if !exists {
		return 0, false
	}
	return e.state, true
}

// PluginErr returns the recorded initialization error for a plugin, if any.
func (k *Kernel) PluginErr(name string) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if e, exists := k.entries[name]; exists {
		return e.err
	}
	return nil
}

// State returns the kernel's lifecycle state.
func (k *Kernel) State() State {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.state
}

// IsInitialized reports whether an Init pass has completed.
func (k *Kernel) IsInitialized() bool {
	return k.State() == StateInitialized
}

// Context returns the kernel's shared Context.
func (k *Kernel) Context() *Context {
	return k.kctx
}

// ScopedBus returns the scoped event bus owned by a registered plugin.
func (k *Kernel) ScopedBus(name string) (*event.ScopedBus, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	e, exists := k.entries[name]
	if !exists {
		return nil, false
	}
	return e.scoped, true
}
