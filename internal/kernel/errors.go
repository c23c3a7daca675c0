package kernel

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the kernel.
var (
	// ErrNilPlugin is returned when a nil plugin is registered.
	ErrNilPlugin = errors.New("plugin cannot be nil")

	// ErrEmptyName is returned when a plugin reports an empty name.
	ErrEmptyName = errors.New("plugin name cannot be empty")

	// ErrKernelDestroyed is returned when operating on a destroyed kernel.
	ErrKernelDestroyed = errors.New("kernel is destroyed")

	// ErrInitInProgress is returned when Register, Unregister, or Destroy
	// is called while an Init pass is in flight.
	ErrInitInProgress = errors.New("kernel initialization is in progress")
)

// AlreadyRegisteredError is returned when registering a plugin whose name is
// already present in the registry.
type AlreadyRegisteredError struct {
	// Name is the conflicting plugin name.
	Name string
}

// Error implements the error interface.
func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("plugin %q is already registered", e.Name)
}

// NotFoundError is returned when an operation names a plugin that is not in
// the registry.
type NotFoundError struct {
	// Name is the missing plugin name.
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plugin %q is not registered", e.Name)
}

// DependencyMissingError is returned when a plugin declares a dependency
// that is absent from the registry.
type DependencyMissingError struct {
	// Plugin is the plugin declaring the dependency.
	Plugin string

	// Dependency is the absent plugin name.
	Dependency string
}

// Error implements the error interface.
func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("plugin %q depends on %q, which is not registered", e.Plugin, e.Dependency)
}

// DependencyConflictError is returned when unregistering a plugin that
// another registered plugin still depends on.
type DependencyConflictError struct {
	// Name is the plugin being unregistered.
	Name string

	// Dependent is the registered plugin that depends on it.
	Dependent string
}

// Error implements the error interface.
func (e *DependencyConflictError) Error() string {
	return fmt.Sprintf("cannot unregister plugin %q: plugin %q depends on it", e.Name, e.Dependent)
}

// CircularDependencyError is returned when the dependency graph contains a
// cycle. Cycle holds the ordered plugin names forming the cycle, with the
// first name repeated at the end.
type CircularDependencyError struct {
	Cycle []string
}

// Error implements the error interface.
func (e *CircularDependencyError) Error() string {
	return "circular plugin dependency: " + strings.Join(e.Cycle, " -> ")
}

// InitError is returned by Init when a plugin's OnInit hook fails. It names
// the failing plugin and wraps the original cause.
type InitError struct {
	// Plugin is the plugin whose OnInit failed.
	Plugin string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("plugin %q failed to initialize: %v", e.Plugin, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
