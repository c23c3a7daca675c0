package kernel

import "github.com/dshills/plugkit/internal/event"

// Kernel event topics.
const (
	// TopicPluginRegistered is published when a plugin is registered.
	TopicPluginRegistered event.Topic = "plugin.registered"

	// TopicPluginInitializing is published when a plugin's OnInit starts.
	TopicPluginInitializing event.Topic = "plugin.initializing"

	// TopicPluginInitialized is published when a plugin becomes active.
	TopicPluginInitialized event.Topic = "plugin.initialized"

	// TopicPluginError is published when a plugin's initialization fails.
	TopicPluginError event.Topic = "plugin.error"

	// TopicPluginUnregistered is published when a plugin is unregistered.
	TopicPluginUnregistered event.Topic = "plugin.unregistered"

	// TopicKernelInitialized is published when an Init pass completes.
	TopicKernelInitialized event.Topic = "kernel.initialized"

	// TopicKernelDestroyed is published when the kernel is destroyed.
	TopicKernelDestroyed event.Topic = "kernel.destroyed"
)

// PluginRegistered is published on TopicPluginRegistered.
type PluginRegistered struct {
	// Name is the plugin's unique identifier.
	Name string

	// Version is the plugin's semantic-version string.
	Version string
}

// PluginInitializing is published on TopicPluginInitializing.
type PluginInitializing struct {
	// Name is the plugin's unique identifier.
	Name string
}

// PluginInitialized is published on TopicPluginInitialized.
type PluginInitialized struct {
	// Name is the plugin's unique identifier.
	Name string
}

// PluginError is published on TopicPluginError.
type PluginError struct {
	// Name is the plugin's unique identifier.
	Name string

	// Err is the initialization failure.
	Err error
}

// PluginUnregistered is published on TopicPluginUnregistered.
type PluginUnregistered struct {
	// Name is the plugin's unique identifier.
	Name string
}

// KernelInitialized is published on TopicKernelInitialized.
type KernelInitialized struct {
	// Plugins holds the plugin names in initialization order.
	Plugins []string
}

// KernelDestroyed is published on TopicKernelDestroyed.
type KernelDestroyed struct{}
