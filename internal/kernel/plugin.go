package kernel

import "context"

// Plugin is a named, versioned capability unit registered with a Kernel.
// Plugins are supplied by callers; the kernel never implements them.
//
// Name must be unique across the registry. Version is an informational
// semantic-version string. Dependencies lists plugin names that must be
// registered - and later initialized - before this plugin. Install is
// invoked synchronously at registration time and receives the kernel; if it
// returns an error the registration is undone completely.
//
// The remaining lifecycle hooks are optional; a plugin opts in by also
// implementing Initializer, Destroyer, or ErrorHandler.
type Plugin interface {
	Name() string
	Version() string
	Dependencies() []string
	Install(k *Kernel) error
}

// Initializer is implemented by plugins with an initialization hook. OnInit
// receives the kernel's shared Context and may block on arbitrary work; the
// kernel awaits it before initializing the next plugin.
type Initializer interface {
	OnInit(ctx context.Context, kctx *Context) error
}

// Destroyer is implemented by plugins with a teardown hook.
type Destroyer interface {
	OnDestroy(ctx context.Context) error
}

// ErrorHandler is implemented by plugins that want to observe their own
// initialization failures. OnError is invoked with the cause before any
// rollback runs.
type ErrorHandler interface {
	OnError(err error)
}

// pluginDef is the Plugin built by NewPlugin. Unset hooks behave as absent.
type pluginDef struct {
	name    string
	version string
	deps    []string

	install   func(*Kernel) error
	onInit    func(context.Context, *Context) error
	onDestroy func(context.Context) error
	onError   func(error)
}

// PluginOption configures a plugin built with NewPlugin.
type PluginOption func(*pluginDef)

// WithDependencies declares the plugins this plugin depends on.
func WithDependencies(names ...string) PluginOption {
	return func(p *pluginDef) {
		p.deps = append(p.deps, names...)
	}
}

// WithInstall sets the hook invoked synchronously at registration time.
func WithInstall(fn func(k *Kernel) error) PluginOption {
	return func(p *pluginDef) {
		p.install = fn
	}
}

// WithOnInit sets the initialization hook.
func WithOnInit(fn func(ctx context.Context, kctx *Context) error) PluginOption {
	return func(p *pluginDef) {
		p.onInit = fn
	}
}

// WithOnDestroy sets the teardown hook.
func WithOnDestroy(fn func(ctx context.Context) error) PluginOption {
	return func(p *pluginDef) {
		p.onDestroy = fn
	}
}

// WithOnError sets the hook notified of this plugin's init failures.
func WithOnError(fn func(err error)) PluginOption {
	return func(p *pluginDef) {
		p.onError = fn
	}
}

// NewPlugin builds a Plugin from functional options, for callers that
// prefer declaring lifecycle hooks as funcs over implementing the optional
// interfaces on their own type.
func NewPlugin(name, version string, opts ...PluginOption) Plugin {
	p := &pluginDef{
		name:    name,
		version: version,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the plugin name.
func (p *pluginDef) Name() string { return p.name }

// Version returns the plugin version.
func (p *pluginDef) Version() string { return p.version }

// Dependencies returns the declared dependency names.
func (p *pluginDef) Dependencies() []string { return p.deps }

// Install runs the install hook, if set.
func (p *pluginDef) Install(k *Kernel) error {
	if p.install == nil {
		return nil
	}
	return p.install(k)
}

// OnInit runs the init hook, if set.
func (p *pluginDef) OnInit(ctx context.Context, kctx *Context) error {
	if p.onInit == nil {
		return nil
	}
	return p.onInit(ctx, kctx)
}

// OnDestroy runs the teardown hook, if set.
func (p *pluginDef) OnDestroy(ctx context.Context) error {
	if p.onDestroy == nil {
		return nil
	}
	return p.onDestroy(ctx)
}

// OnError runs the error hook, if set.
func (p *pluginDef) OnError(err error) {
	if p.onError != nil {
		p.onError(err)
	}
}
