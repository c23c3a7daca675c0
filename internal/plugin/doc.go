// Package plugin turns Lua scripts into kernel plugins.
//
// A plugin is a directory containing a manifest (plugin.json or plugin.yaml)
// and a Lua entry point, or a bare name.lua file for manifest-less plugins.
// The manifest declares the plugin's name, semantic version, dependencies,
// and entry point; the Loader discovers plugins across a list of search
// paths with first-path-wins precedence.
//
// The Lua script's globals map onto the kernel lifecycle:
//
//	install()      - invoked synchronously at registration
//	init()         - the initialization hook
//	destroy()      - the teardown hook
//	on_error(msg)  - notified of this plugin's init failures
//
// All four are optional. Scripts interact with the kernel through the
// `kernel` module:
//
//	kernel.get(key)            - read the shared context
//	kernel.set(key, value)     - write the shared context
//	kernel.emit(topic, value)  - publish an event
//	kernel.on(topic, fn)       - subscribe; released automatically on teardown
//	kernel.log(msg)            - structured log line tagged with the plugin
package plugin
