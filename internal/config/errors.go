package config

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrUnknownFormat is returned for unsupported config file extensions.
	ErrUnknownFormat = errors.New("config: unsupported file format")

	// ErrInvalidLogLevel is returned when log_level is not one of debug,
	// info, warn, error.
	ErrInvalidLogLevel = errors.New("config: invalid log level")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
