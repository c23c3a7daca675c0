package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the host process configuration.
type Config struct {
	// PluginPaths are the directories searched for plugins, in order.
	PluginPaths []string `toml:"plugin_paths" yaml:"plugin_paths"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// Context seeds the kernel's shared context before initialization.
	Context map[string]any `toml:"context" yaml:"context"`

	// Disabled lists plugin names that are discovered but never registered.
	Disabled []string `toml:"disabled" yaml:"disabled"`
}

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PLUGKIT_"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Context:  make(map[string]any),
	}
}

// Load reads configuration from a TOML or YAML file, selected by extension,
// then applies environment overrides. A missing file is not an error; the
// defaults are returned with overrides applied. An empty path skips the file
// entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// loadFile parses a config file into cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
	return nil
}

// applyEnv overrides config fields from PLUGKIT_* environment variables.
// PLUGKIT_PLUGIN_PATHS is a list separated by the OS path list separator;
// PLUGKIT_CONTEXT_<KEY> seeds the context under the lowercased key.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "PLUGIN_PATHS"); ok {
		c.PluginPaths = filepath.SplitList(v)
	}
	if v, ok := os.LookupEnv(EnvPrefix + "DISABLED"); ok {
		c.Disabled = strings.Split(v, ",")
	}

	const ctxPrefix = EnvPrefix + "CONTEXT_"
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, ctxPrefix) {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], ctxPrefix))
		if c.Context == nil {
			c.Context = make(map[string]any)
		}
		c.Context[key] = parseValue(parts[1])
	}
}

// normalize trims and drops empty entries left by file or env parsing.
func (c *Config) normalize() {
	c.PluginPaths = cleanList(c.PluginPaths)
	c.Disabled = cleanList(c.Disabled)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Context == nil {
		c.Context = make(map[string]any)
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// IsDisabled reports whether a plugin name is on the disabled list.
func (c *Config) IsDisabled(name string) bool {
	for _, d := range c.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// cleanList trims whitespace and removes empty strings.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseValue converts an environment string to a typed value: bool, int,
// float, JSON array/object, or string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}
