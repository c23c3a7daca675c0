// Package lua wraps gopher-lua for plugin execution.
//
// A State hosts one plugin script. Only the safe Lua standard libraries are
// opened (base, table, string, math); io, os, debug, and package are
// intentionally unavailable to plugin code. This is a convention, not a
// security boundary - plugins run with full trust.
//
// The bridge functions ToLua and ToGo convert values across the boundary:
// Lua tables become map[string]any or []any, numbers become int64 when
// integral and float64 otherwise.
//
// gopher-lua's LState is not goroutine-safe; State serializes all access
// with a mutex, and Lua execution itself is single-threaded.
package lua
