package session

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout      = errors.New("analysis timed out before the engine reported a line")
	ErrNoResults    = errors.New("engine finished without reporting a line")
	ErrEngineExited = errors.New("engine exited unexpectedly")
)

// ConfigError rejects a start request before any engine is spawned.
type ConfigError struct {
	FEN string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid analysis config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
