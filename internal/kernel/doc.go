// Package kernel implements a micro-kernel that manages the registration,
// dependency ordering, and lifecycle of pluggable feature modules inside a
// single process.
//
// A Kernel owns three things: a registry of plugins, a shared mutable
// Context passed to every plugin's init hook, and an event bus plugins use
// to communicate without direct dependencies.
//
// # Lifecycle
//
// Callers register plugins, then initialize the kernel once:
//
//	k := kernel.New(kernel.WithContextValues(map[string]any{"env": "dev"}))
//
//	if err := k.Register(storage); err != nil { ... }
//	if err := k.Register(httpAPI); err != nil { ... } // depends on storage
//
//	if err := k.Init(ctx); err != nil { ... }
//	defer k.Destroy(context.Background())
//
// Init topologically sorts the registry by declared dependencies and runs
// each plugin's OnInit hook strictly sequentially, so a dependency's Context
// mutations are always visible to its dependents. If a hook fails, every
// plugin activated during that pass is torn down in reverse order and the
// kernel returns to idle.
//
// Concurrent Init calls share a single in-flight pass; no hook ever runs
// twice from call fan-in. Registering a plugin after Init has completed
// initializes it in the background, with failures reported on the
// "plugin.error" topic rather than to the Register caller.
//
// # Plugins
//
// A Plugin declares a unique name, an informational semantic version, the
// names of plugins it depends on, and an Install hook invoked synchronously
// at registration. The remaining lifecycle hooks are optional interfaces
// discovered by type assertion: Initializer, Destroyer, ErrorHandler.
// NewPlugin builds a Plugin from functional options for callers that prefer
// declaring hooks as funcs.
//
// # Known limitation
//
// Hooks have no built-in timeout: a hook that never returns stalls the
// kernel. Init, Unregister, and Destroy take a context.Context so callers
// can bound hooks that honor cancellation.
package kernel
