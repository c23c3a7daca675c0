// Package config loads the host process configuration from TOML or YAML
// files with PLUGKIT_* environment variable overrides.
//
// The file format is selected by extension. A missing file falls back to the
// defaults, so the host runs without any configuration at all. Environment
// overrides always win over file values:
//
//	PLUGKIT_LOG_LEVEL      log level (debug, info, warn, error)
//	PLUGKIT_PLUGIN_PATHS   plugin search paths, OS path-list separated
//	PLUGKIT_DISABLED       comma-separated plugin names to skip
//	PLUGKIT_CONTEXT_<KEY>  seed the shared context under lowercase <key>
package config
