package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jacokyle01/analysis-bridge/src/analysis"
	"github.com/jacokyle01/analysis-bridge/src/engine"
	"github.com/jacokyle01/analysis-bridge/src/models"
	"github.com/jacokyle01/analysis-bridge/src/observability"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("session manager closed")

// Manager owns every live analysis session. Each channel owns at most one
// session at a time and every session owns exactly one engine process.
type Manager struct {
	cfg     Config
	spawner engine.Spawner
	log     zerolog.Logger
	obs     observability.Observer
	ctx     context.Context
	stop    context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session // by analysis id
	owners   map[string]*Session // by channel id
}

func NewManager(cfg Config, spawner engine.Spawner, log zerolog.Logger, obs observability.Observer) *Manager {
	if obs == nil {
		obs = observability.NoOpObserver{}
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		spawner:  spawner,
		log:      log.With().Str("component", "sessions").Logger(),
		obs:      obs,
		ctx:      ctx,
		stop:     stop,
		sessions: make(map[string]*Session),
		owners:   make(map[string]*Session),
	}
}

// Start begins analysing cfg.FEN for ch. Any session ch already owns, and
// any live session using id, is cancelled first. Configuration and spawn
// failures are reported to ch as analysis_error and returned.
func (m *Manager) Start(id string, cfg models.AnalysisConfig, ch Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return ErrClosed
	}
	if old, ok := m.owners[ch.ID()]; ok {
		m.cancelLocked(old)
	}
	if old, ok := m.sessions[id]; ok {
		m.cancelLocked(old)
	}

	cfg = cfg.WithDefaults()
	start, err := analysis.ParsePosition(cfg.FEN)
	if err == nil && start.Terminal() {
		err = fmt.Errorf("%w: %s", analysis.ErrTerminalPosition, start.Status())
	}
	if err != nil {
		cerr := &ConfigError{FEN: cfg.FEN, Err: err}
		m.log.Info().Str("analysis_id", id).Err(err).Msg("rejected analysis request")
		m.send(ch, models.ErrorMessage(id, cerr))
		return cerr
	}

	proc, err := m.spawner.Spawn()
	if err != nil {
		m.log.Error().Str("analysis_id", id).Err(err).Msg("failed to start engine")
		m.emit(observability.EventSessionError, observability.LevelError, id, map[string]any{"error": err.Error()})
		m.send(ch, models.ErrorMessage(id, err))
		return err
	}

	s := newSession(m, id, cfg, start, ch, proc)
	m.sessions[id] = s
	m.owners[ch.ID()] = s

	m.log.Debug().
		Str("analysis_id", id).
		Str("fen", cfg.FEN).
		Int("depth", cfg.Depth).
		Int("multipv", cfg.MultiPV).
		Int("time_limit_ms", cfg.TimeLimit).
		Msg("analysis started")
	m.emit(observability.EventSessionStart, observability.LevelInfo, id, map[string]any{
		"channel": ch.ID(),
		"multipv": cfg.MultiPV,
	})

	go s.run()
	return nil
}

// Cancel stops the session with the given id. Unknown ids are ignored.
func (m *Manager) Cancel(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		m.cancelLocked(s)
	}
}

// ChannelClosed cancels the session owned by ch, if any.
func (m *Manager) ChannelClosed(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.owners[ch.ID()]; ok {
		m.cancelLocked(s)
	}
}

// Close cancels every session and refuses new ones.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		m.cancelLocked(s)
	}
	m.stop()
}

// Snapshot describes a live session.
type Snapshot struct {
	ID        string    `json:"analysisId"`
	Channel   string    `json:"channel"`
	FEN       string    `json:"fen"`
	MultiPV   int       `json:"multiPV"`
	StartedAt time.Time `json:"startedAt"`
	Populated int       `json:"populated"`
}

// Sessions lists live sessions ordered by start time.
func (m *Manager) Sessions() []Snapshot {
	m.mu.Lock()
	out := make([]Snapshot, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.snapshot())
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

func (m *Manager) cancelLocked(s *Session) {
	m.removeLocked(s)
	if s.finish() {
		m.log.Debug().Str("analysis_id", s.id).Msg("analysis cancelled")
		m.emit(observability.EventSessionCancel, observability.LevelInfo, s.id, nil)
	}
}

// release drops a session that ended on its own.
func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(s)
}

func (m *Manager) removeLocked(s *Session) {
	if m.sessions[s.id] == s {
		delete(m.sessions, s.id)
	}
	if m.owners[s.channel.ID()] == s {
		delete(m.owners, s.channel.ID())
	}
}

func (m *Manager) send(ch Channel, msg models.ServerMessage) {
	if err := ch.Send(msg); err != nil {
		m.log.Warn().
			Err(err).
			Str("channel", ch.ID()).
			Str("analysis_id", msg.AnalysisID).
			Str("type", msg.Type).
			Msg("failed to deliver message")
	}
}

func (m *Manager) emit(t observability.EventType, level observability.Level, id string, data map[string]any) {
	m.obs.OnEvent(m.ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		SessionID: id,
		Data:      data,
	})
}
