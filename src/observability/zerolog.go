package observability

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologObserver writes events as structured log lines.
type ZerologObserver struct {
	log zerolog.Logger
}

func NewZerologObserver(log zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{log: log.With().Str("component", "telemetry").Logger()}
}

func (o *ZerologObserver) OnEvent(ctx context.Context, event Event) {
	e := o.log.WithLevel(event.Level.ZerologLevel()).
		Str("event", string(event.Type)).
		Str("analysis_id", event.SessionID)
	if !event.Timestamp.IsZero() {
		e = e.Time("at", event.Timestamp)
	}
	e.Fields(event.Data).Msg("analysis telemetry")
}
