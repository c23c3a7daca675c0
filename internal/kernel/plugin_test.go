package kernel

import (
	"context"
	"errors"
	"testing"
)

func TestNewPlugin_Defaults(t *testing.T) {
	p := NewPlugin("alpha", "1.0.0")

	if p.Name() != "alpha" {
		t.Errorf("Name() = %q, want %q", p.Name(), "alpha")
	}
	if p.Version() != "1.0.0" {
		t.Errorf("Version() = %q, want %q", p.Version(), "1.0.0")
	}
	if len(p.Dependencies()) != 0 {
		t.Errorf("Dependencies() = %v, want none", p.Dependencies())
	}
	// Unset hooks are no-ops, not nil panics.
	if err := p.Install(nil); err != nil {
		t.Errorf("Install() error = %v", err)
	}
}

func TestNewPlugin_OptionalHooks(t *testing.T) {
	p := NewPlugin("alpha", "1.0.0")

	// Plugins built without hooks still satisfy the optional interfaces
	// through pluginDef, and the unset hooks do nothing.
	init, ok := p.(Initializer)
	if !ok {
		t.Fatal("pluginDef does not implement Initializer")
	}
	if err := init.OnInit(context.Background(), NewContext(nil)); err != nil {
		t.Errorf("OnInit() error = %v", err)
	}

	d, ok := p.(Destroyer)
	if !ok {
		t.Fatal("pluginDef does not implement Destroyer")
	}
	if err := d.OnDestroy(context.Background()); err != nil {
		t.Errorf("OnDestroy() error = %v", err)
	}

	h, ok := p.(ErrorHandler)
	if !ok {
		t.Fatal("pluginDef does not implement ErrorHandler")
	}
	h.OnError(errors.New("ignored"))
}

func TestNewPlugin_Hooks(t *testing.T) {
	var installed, inited, destroyed bool
	var seen error

	p := NewPlugin("alpha", "1.0.0",
		WithDependencies("beta", "gamma"),
		WithInstall(func(k *Kernel) error {
			installed = true
			return nil
		}),
		WithOnInit(func(ctx context.Context, kctx *Context) error {
			inited = true
			return nil
		}),
		WithOnDestroy(func(ctx context.Context) error {
			destroyed = true
			return nil
		}),
		WithOnError(func(err error) {
			seen = err
		}),
	)

	deps := p.Dependencies()
	if len(deps) != 2 || deps[0] != "beta" || deps[1] != "gamma" {
		t.Errorf("Dependencies() = %v, want [beta gamma]", deps)
	}

	if err := p.Install(nil); err != nil {
		t.Errorf("Install() error = %v", err)
	}
	if err := p.(Initializer).OnInit(context.Background(), NewContext(nil)); err != nil {
		t.Errorf("OnInit() error = %v", err)
	}
	if err := p.(Destroyer).OnDestroy(context.Background()); err != nil {
		t.Errorf("OnDestroy() error = %v", err)
	}
	cause := errors.New("cause")
	p.(ErrorHandler).OnError(cause)

	if !installed || !inited || !destroyed {
		t.Errorf("hooks ran = install:%v init:%v destroy:%v, want all", installed, inited, destroyed)
	}
	if !errors.Is(seen, cause) {
		t.Errorf("OnError received %v, want the cause", seen)
	}
}
