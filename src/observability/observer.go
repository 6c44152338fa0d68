// Package observability carries lifecycle telemetry for analysis sessions.
// Events are delivered synchronously to an Observer; implementations must
// not block.
package observability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Level is the event severity.
type Level int

const (
	LevelVerbose Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ZerologLevel maps the level onto zerolog.
func (l Level) ZerologLevel() zerolog.Level {
	switch l {
	case LevelVerbose:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// EventType names a lifecycle event.
type EventType string

const (
	EventSessionStart    EventType = "session.start"
	EventFirstResult     EventType = "session.first_result"
	EventSessionComplete EventType = "session.complete"
	EventSessionTimeout  EventType = "session.timeout"
	EventSessionCancel   EventType = "session.cancel"
	EventSessionError    EventType = "session.error"
)

// Event is one telemetry record.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	SessionID string
	Data      map[string]any
}

// Observer receives telemetry events.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// NoOpObserver discards all events.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// MultiObserver fans events out to several observers.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver ignores nil observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
