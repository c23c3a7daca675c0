package lua

import (
	"fmt"
	"sync"

	glua "github.com/yuin/gopher-lua"
)

// State hosts one plugin's Lua runtime.
//
// All methods serialize access with an internal mutex; see the package
// documentation for the threading model.
type State struct {
	mu     sync.Mutex
	l      *glua.LState
	closed bool
}

// NewState creates a Lua state with only the safe standard libraries opened.
func NewState() *State {
	l := glua.NewState(glua.Options{
		SkipOpenLibs: true,
	})

	// Base plus the safe libraries. io, os, debug, and package stay closed.
	glua.OpenBase(l)
	glua.OpenTable(l)
	glua.OpenString(l)
	glua.OpenMath(l)

	return &State{l: l}
}

// DoFile executes a Lua file synchronously.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.protect(func() error {
		return s.l.DoFile(path)
	})
}

// DoString executes Lua code synchronously.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.protect(func() error {
		return s.l.DoString(code)
	})
}

// HasFunction reports whether a global function with the given name exists.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	v := s.l.GetGlobal(name)
	return v.Type() == glua.LTFunction
}

// Call invokes a global Lua function with the given arguments, discarding
// return values.
func (s *State) Call(name string, args ...glua.LValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	fn := s.l.GetGlobal(name)
	if fn == glua.LNil {
		return fmt.Errorf("function %q not found", name)
	}
	if fn.Type() != glua.LTFunction {
		return fmt.Errorf("%w: %q is %s", ErrNotAFunction, name, fn.Type())
	}

	return s.protect(func() error {
		return s.l.CallByParam(glua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, args...)
	})
}

// CallValue invokes a Lua function value, discarding return values. The
// argument builder runs inside the state's lock so it may safely allocate
// tables; a nil builder means no arguments. Used for callbacks registered
// from Lua code.
func (s *State) CallValue(fn *glua.LFunction, build func(l *glua.LState) []glua.LValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.protect(func() error {
		var args []glua.LValue
		if build != nil {
			args = build(s.l)
		}
		return s.l.CallByParam(glua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, args...)
	})
}

// RegisterModule registers a table of Go functions as a global Lua module.
func (s *State) RegisterModule(name string, funcs map[string]glua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	mod := s.l.SetFuncs(s.l.NewTable(), funcs)
	s.l.SetGlobal(name, mod)
}

// LState returns the underlying gopher-lua state for bridge conversions.
// Callers must not retain it past the State's lifetime.
func (s *State) LState() *glua.LState {
	return s.l
}

// Close releases the Lua state. Close is idempotent.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.l.Close()
}

// protect runs fn with panic recovery; gopher-lua panics on some internal
// errors even under Protect.
func (s *State) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
