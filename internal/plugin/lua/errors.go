package lua

import "errors"

// State errors.
var (
	// ErrStateClosed is returned when using a closed State.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotAFunction is returned when calling a global that exists but is
	// not a function.
	ErrNotAFunction = errors.New("global is not a function")
)
