package kernel

import (
	"errors"
	"testing"
)

// graph builds the entries map for topoSort tests.
func graph(nodes map[string][]string) map[string]*entry {
	entries := make(map[string]*entry, len(nodes))
	for name, deps := range nodes {
		entries[name] = &entry{
			plugin: &mutablePlugin{name: name, deps: deps},
			state:  PluginStateRegistered,
		}
	}
	return entries
}

func TestTopoSort_Chain(t *testing.T) {
	order := []string{"a", "b", "c"}
	entries := graph(map[string][]string{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
	})

	sorted, err := topoSort(entries, order)
	if err != nil {
		t.Fatalf("topoSort() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if sorted[i] != want[i] {
			t.Fatalf("topoSort() = %v, want %v", sorted, want)
		}
	}
}

func TestTopoSort_IndependentKeepRegistrationOrder(t *testing.T) {
	order := []string{"c", "a", "b"}
	entries := graph(map[string][]string{
		"a": nil,
		"b": nil,
		"c": nil,
	})

	sorted, err := topoSort(entries, order)
	if err != nil {
		t.Fatalf("topoSort() error = %v", err)
	}
	for i := range order {
		if sorted[i] != order[i] {
			t.Fatalf("topoSort() = %v, want registration order %v", sorted, order)
		}
	}
}

func TestTopoSort_Diamond(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	entries := graph(map[string][]string{
		"a": nil,
		"b": {"a"},
		"c": {"a"},
		"d": {"b", "c"},
	})

	sorted, err := topoSort(entries, order)
	if err != nil {
		t.Fatalf("topoSort() error = %v", err)
	}

	pos := make(map[string]int, len(sorted))
	for i, name := range sorted {
		pos[name] = i
	}
	for name, deps := range map[string][]string{"b": {"a"}, "c": {"a"}, "d": {"b", "c"}} {
		for _, dep := range deps {
			if pos[dep] > pos[name] {
				t.Errorf("dependency %q sorted after dependent %q: %v", dep, name, sorted)
			}
		}
	}
}

func TestTopoSort_Cycle(t *testing.T) {
	order := []string{"a", "b", "c"}
	entries := graph(map[string][]string{
		"a": {"c"},
		"b": {"a"},
		"c": {"b"},
	})

	_, err := topoSort(entries, order)
	var cycle *CircularDependencyError
	if !errors.As(err, &cycle) {
		t.Fatalf("topoSort() error = %v, want CircularDependencyError", err)
	}
	if len(cycle.Cycle) != 4 {
		t.Fatalf("cycle = %v, want 4 names (closed)", cycle.Cycle)
	}
	if cycle.Cycle[0] != cycle.Cycle[len(cycle.Cycle)-1] {
		t.Errorf("cycle %v does not close on its first name", cycle.Cycle)
	}
}

func TestTopoSort_SelfCycle(t *testing.T) {
	order := []string{"a"}
	entries := graph(map[string][]string{
		"a": {"a"},
	})

	_, err := topoSort(entries, order)
	var cycle *CircularDependencyError
	if !errors.As(err, &cycle) {
		t.Fatalf("topoSort() error = %v, want CircularDependencyError", err)
	}
	if len(cycle.Cycle) != 2 || cycle.Cycle[0] != "a" || cycle.Cycle[1] != "a" {
		t.Errorf("cycle = %v, want [a a]", cycle.Cycle)
	}
}

func TestTopoSort_MissingDependency(t *testing.T) {
	order := []string{"a"}
	entries := graph(map[string][]string{
		"a": {"ghost"},
	})

	_, err := topoSort(entries, order)
	var missing *DependencyMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("topoSort() error = %v, want DependencyMissingError", err)
	}
	if missing.Plugin != "a" || missing.Dependency != "ghost" {
		t.Errorf("error = %v, want a -> ghost", missing)
	}
}

func TestTopoSort_Empty(t *testing.T) {
	sorted, err := topoSort(map[string]*entry{}, nil)
	if err != nil {
		t.Fatalf("topoSort() error = %v", err)
	}
	if len(sorted) != 0 {
		t.Errorf("topoSort() = %v, want empty", sorted)
	}
}
