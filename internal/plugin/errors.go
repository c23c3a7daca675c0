package plugin

import "errors"

// Plugin loading errors.
var (
	// ErrNilManifest is returned when a nil manifest is provided.
	ErrNilManifest = errors.New("manifest is nil")

	// ErrNotInstalled is returned when using a plugin whose Install has not
	// run (or was undone).
	ErrNotInstalled = errors.New("plugin is not installed")

	// ErrNoEntryPoint is returned when a plugin directory has neither a
	// manifest nor an init.lua file.
	ErrNoEntryPoint = errors.New("plugin has no entry point (manifest or init.lua)")

	// ErrPluginNotFound is returned when a plugin cannot be located in any
	// search path.
	ErrPluginNotFound = errors.New("plugin not found")
)

// Manifest validation errors.
var (
	// ErrMissingName is returned when a manifest omits the name.
	ErrMissingName = errors.New("manifest: name is required")

	// ErrInvalidName is returned when a name is not lowercase alphanumeric
	// with hyphens.
	ErrInvalidName = errors.New("manifest: name must be alphanumeric with hyphens")

	// ErrInvalidVersion is returned when a version is not valid semver.
	ErrInvalidVersion = errors.New("manifest: version must be valid semver")

	// ErrInvalidMain is returned when the entry point is not a .lua file.
	ErrInvalidMain = errors.New("manifest: main must be a .lua file")

	// ErrUnknownManifestFormat is returned for unsupported manifest file
	// extensions.
	ErrUnknownManifestFormat = errors.New("manifest: unsupported file format")
)
