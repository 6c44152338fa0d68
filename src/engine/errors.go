package engine

import "errors"

var (
	// ErrExecutableNotFound is returned when no engine binary can be located.
	ErrExecutableNotFound = errors.New("engine executable not found")
	// ErrSpawn wraps failures to start the engine process.
	ErrSpawn = errors.New("failed to start engine")
)
