package script

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when running on a closed state.
	ErrStateClosed = errors.New("script state is closed")

	// ErrTimeout is returned when a script runs past its deadline.
	ErrTimeout = errors.New("script execution timeout")

	// ErrInstructionLimit is returned when a script exhausts its budget.
	ErrInstructionLimit = errors.New("script instruction limit exceeded")

	// ErrNoFile is returned when a cast function runs with no file bound.
	ErrNoFile = errors.New("no cast file bound")
)
