package plugin

import (
	"context"
	"fmt"
	"sync"

	glua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/plugkit/internal/event"
	"github.com/dshills/plugkit/internal/kernel"
	"github.com/dshills/plugkit/internal/plugin/lua"
)

// Plugin adapts a Lua script to the kernel's plugin lifecycle. The script's
// global install, init, destroy, and on_error functions map onto the
// corresponding kernel hooks; all four are optional.
type Plugin struct {
	manifest *Manifest
	log      *zap.Logger

	mu    sync.Mutex
	state *lua.State
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger used for kernel.log and handler failures.
func WithLogger(log *zap.Logger) Option {
	return func(p *Plugin) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a plugin from a manifest. The manifest is validated; the Lua
// runtime is not created until Install runs.
func New(m *Manifest, opts ...Option) (*Plugin, error) {
	if m == nil {
		return nil, ErrNilManifest
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	p := &Plugin{
		manifest: m,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the plugin name from the manifest.
func (p *Plugin) Name() string { return p.manifest.Name }

// Version returns the plugin version from the manifest.
func (p *Plugin) Version() string { return p.manifest.Version }

// Dependencies returns the dependency names from the manifest.
func (p *Plugin) Dependencies() []string { return p.manifest.Dependencies }

// Manifest returns the plugin's manifest.
func (p *Plugin) Manifest() *Manifest { return p.manifest }

// Install creates the Lua runtime, exposes the kernel module, executes the
// entry point, and invokes the script's install function if it defines one.
// Any failure closes the runtime before returning, so a rejected plugin
// never leaks a Lua state.
func (p *Plugin) Install(k *kernel.Kernel) error {
	scoped, ok := k.ScopedBus(p.manifest.Name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPluginNotFound, p.manifest.Name)
	}

	s := lua.NewState()
	p.registerKernelModule(s, k, scoped)

	if err := s.DoFile(p.manifest.MainPath()); err != nil {
		s.Close()
		return fmt.Errorf("load %s: %w", p.manifest.Main, err)
	}
	if s.HasFunction("install") {
		if err := s.Call("install"); err != nil {
			s.Close()
			return fmt.Errorf("install: %w", err)
		}
	}

	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	return nil
}

// OnInit runs the script's init function, if present.
func (p *Plugin) OnInit(ctx context.Context, kctx *kernel.Context) error {
	s := p.runtime()
	if s == nil {
		return ErrNotInstalled
	}
	if !s.HasFunction("init") {
		return nil
	}
	return s.Call("init")
}

// OnDestroy runs the script's destroy function, if present, then closes the
// runtime. A destroy failure is returned after the runtime is closed.
func (p *Plugin) OnDestroy(ctx context.Context) error {
	p.mu.Lock()
	s := p.state
	p.state = nil
	p.mu.Unlock()

	if s == nil {
		return nil
	}

	var err error
	if s.HasFunction("destroy") {
		err = s.Call("destroy")
	}
	s.Close()
	return err
}

// OnError forwards an initialization failure to the script's on_error
// function. A failing handler is logged, never propagated.
func (p *Plugin) OnError(cause error) {
	s := p.runtime()
	if s == nil || !s.HasFunction("on_error") {
		return
	}
	if err := s.Call("on_error", glua.LString(cause.Error())); err != nil {
		p.log.Error("plugin on_error handler failed",
			zap.String("plugin", p.manifest.Name),
			zap.Error(err),
		)
	}
}

// runtime returns the live Lua state, or nil before Install / after
// OnDestroy.
func (p *Plugin) runtime() *lua.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// registerKernelModule exposes the kernel to the script as the global
// `kernel` table.
func (p *Plugin) registerKernelModule(s *lua.State, k *kernel.Kernel, scoped *event.ScopedBus) {
	s.RegisterModule("kernel", map[string]glua.LGFunction{
		"get": func(l *glua.LState) int {
			v, ok := k.Context().Get(l.CheckString(1))
			if !ok {
				l.Push(glua.LNil)
				return 1
			}
			l.Push(lua.ToLua(l, v))
			return 1
		},
		"set": func(l *glua.LState) int {
			k.Context().Set(l.CheckString(1), lua.ToGo(l.CheckAny(2)))
			return 0
		},
		"emit": func(l *glua.LState) int {
			topic := event.Topic(l.CheckString(1))
			var payload any
			if l.GetTop() >= 2 {
				payload = lua.ToGo(l.CheckAny(2))
			}
			// Delivered on a fresh goroutine: the script holds the state
			// lock while it runs, so dispatching inline would deadlock a
			// plugin that subscribes to a topic it also emits.
			go k.Emit(context.Background(), topic, payload)
			return 0
		},
		"on": func(l *glua.LState) int {
			topic := event.Topic(l.CheckString(1))
			fn := l.CheckFunction(2)
			if _, err := scoped.On(topic, p.luaHandler(s, fn)); err != nil {
				l.RaiseError("kernel.on: %s", err)
			}
			return 0
		},
		"log": func(l *glua.LState) int {
			p.log.Info(l.CheckString(1), zap.String("plugin", p.manifest.Name))
			return 0
		},
	})
}

// luaHandler wraps a Lua function as an event handler. The payload is
// converted inside the state lock; handler errors surface through the bus's
// normal isolation path.
func (p *Plugin) luaHandler(s *lua.State, fn *glua.LFunction) event.Handler {
	return event.HandlerFunc(func(ctx context.Context, payload any) error {
		return s.CallValue(fn, func(l *glua.LState) []glua.LValue {
			if payload == nil {
				return nil
			}
			return []glua.LValue{lua.ToLua(l, payload)}
		})
	})
}
