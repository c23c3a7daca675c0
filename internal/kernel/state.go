package kernel

// State represents the lifecycle state of the kernel.
type State int

// Kernel states.
const (
	// StateIdle - the kernel accepts registrations and has not initialized.
	StateIdle State = iota

	// StateInitializing - an Init pass is in flight.
	StateInitializing

	// StateInitialized - Init completed; late registrations initialize in
	// the background.
	StateInitialized

	// StateDestroyed - the kernel has been torn down. Terminal.
	StateDestroyed
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// PluginState represents the lifecycle state of a single plugin.
type PluginState int

// Plugin states.
const (
	// PluginStateInstalling - entered the registry, Install still running.
	// Invisible to Init; Register removes the entry if Install fails.
	PluginStateInstalling PluginState = iota

	// PluginStateRegistered - registered, Install succeeded, not initialized.
	PluginStateRegistered

	// PluginStateInitializing - OnInit is running.
	PluginStateInitializing

	// PluginStateActive - OnInit completed.
	PluginStateActive

	// PluginStateError - OnInit failed. Terminal until the plugin is
	// unregistered and registered again.
	PluginStateError

	// PluginStateDestroyed - torn down by unregister or kernel destroy.
	// Terminal.
	PluginStateDestroyed
)

// String returns a string representation of the state.
func (s PluginState) String() string {
	switch s {
	case PluginStateInstalling:
		return "installing"
	case PluginStateRegistered:
		return "registered"
	case PluginStateInitializing:
		return "initializing"
	case PluginStateActive:
		return "active"
	case PluginStateError:
		return "error"
	case PluginStateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
