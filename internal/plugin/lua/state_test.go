package lua

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	glua "github.com/yuin/gopher-lua"
)

func TestState_DoString(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString("x = 1 + 2"); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if err := s.DoString("this is not lua"); err == nil {
		t.Error("DoString() error = nil for invalid code")
	}
}

func TestState_DoFile(t *testing.T) {
	s := NewState()
	defer s.Close()

	path := filepath.Join(t.TempDir(), "script.lua")
	if err := os.WriteFile(path, []byte("greeting = 'hello'"), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}

	if err := s.DoFile(path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if err := s.DoFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("DoFile() error = nil for a missing file")
	}
}

func TestState_HasFunction(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString("function greet() end\nnot_a_function = 42"); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if !s.HasFunction("greet") {
		t.Error("HasFunction(greet) = false")
	}
	if s.HasFunction("not_a_function") {
		t.Error("HasFunction(not_a_function) = true for a number")
	}
	if s.HasFunction("missing") {
		t.Error("HasFunction(missing) = true")
	}
}

func TestState_Call(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString("called = false\nfunction mark() called = true end"); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if err := s.Call("mark"); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got := s.LState().GetGlobal("called"); got != glua.LTrue {
		t.Errorf("called = %v, want true", got)
	}

	if err := s.Call("missing"); err == nil {
		t.Error("Call(missing) error = nil")
	}
	if err := s.DoString("num = 5"); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if err := s.Call("num"); !errors.Is(err, ErrNotAFunction) {
		t.Errorf("Call(num) error = %v, want ErrNotAFunction", err)
	}
}

func TestState_Call_LuaError(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString("function boom() error('exploded') end"); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if err := s.Call("boom"); err == nil {
		t.Error("Call(boom) error = nil, want the lua error")
	}
}

func TestState_CallValue(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString("seen = nil\nfunction handler(v) seen = v end"); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	fn, ok := s.LState().GetGlobal("handler").(*glua.LFunction)
	if !ok {
		t.Fatal("handler is not a function")
	}

	err := s.CallValue(fn, func(l *glua.LState) []glua.LValue {
		return []glua.LValue{glua.LString("payload")}
	})
	if err != nil {
		t.Fatalf("CallValue() error = %v", err)
	}
	if got := s.LState().GetGlobal("seen"); got.String() != "payload" {
		t.Errorf("seen = %v, want payload", got)
	}
}

func TestState_RegisterModule(t *testing.T) {
	s := NewState()
	defer s.Close()

	var captured string
	s.RegisterModule("host", map[string]glua.LGFunction{
		"record": func(l *glua.LState) int {
			captured = l.CheckString(1)
			return 0
		},
	})

	if err := s.DoString("host.record('from lua')"); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if captured != "from lua" {
		t.Errorf("captured = %q, want %q", captured, "from lua")
	}
}

func TestState_Close(t *testing.T) {
	s := NewState()

	s.Close()
	s.Close() // idempotent

	if err := s.DoString("x = 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() after Close error = %v, want ErrStateClosed", err)
	}
	if err := s.Call("anything"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call() after Close error = %v, want ErrStateClosed", err)
	}
	if s.HasFunction("anything") {
		t.Error("HasFunction() = true after Close")
	}
}

func TestState_UnsafeLibsClosed(t *testing.T) {
	s := NewState()
	defer s.Close()

	for _, lib := range []string{"io", "os"} {
		if err := s.DoString(lib + ".exit()"); err == nil {
			t.Errorf("%s library is reachable from scripts", lib)
		}
	}
}
