package kernel

import "slices"

// visit marks for the depth-first topological sort.
const (
	markUnvisited = iota
	markVisiting
	markVisited
)

// topoSort orders plugin names so that every dependency precedes its
// dependents. Mutually independent plugins keep their registration order.
// Edges point from a plugin to each of its declared dependencies; a
// back-edge means a cycle and yields a CircularDependencyError carrying the
// ordered cycle. A dependency absent from the registry yields a
// DependencyMissingError (possible when a plugin's Dependencies value
// changed after registration).
func topoSort(entries map[string]*entry, order []string) ([]string, error) {
	marks := make(map[string]int, len(entries))
	sorted := make([]string, 0, len(entries))

	// stack holds the names on the current DFS path, for cycle reporting.
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch marks[name] {
		case markVisited:
			return nil
		case markVisiting:
			return &CircularDependencyError{Cycle: cycleFrom(stack, name)}
		}

		marks[name] = markVisiting
		stack = append(stack, name)

		for _, dep := range entries[name].plugin.Dependencies() {
			if _, ok := entries[dep]; !ok {
				return &DependencyMissingError{Plugin: name, Dependency: dep}
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		marks[name] = markVisited
		sorted = append(sorted, name)
		return nil
	}

	for _, name := range order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

// cycleFrom extracts the cycle from the DFS path, starting at the repeated
// name and closing with it.
func cycleFrom(stack []string, name string) []string {
	for i, n := range stack {
		if n == name {
			cycle := slices.Clone(stack[i:])
			return append(cycle, name)
		}
	}
	return []string{name, name}
}
