package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jacokyle01/analysis-bridge/src/analysis"
	"github.com/jacokyle01/analysis-bridge/src/engine"
	"github.com/jacokyle01/analysis-bridge/src/models"
	"github.com/jacokyle01/analysis-bridge/src/observability"
)

// Session is one in-flight analysis. The sequencer and aggregator belong to
// the run goroutine; everything else is guarded.
type Session struct {
	id        string
	cfg       models.AnalysisConfig
	channel   Channel
	startedAt time.Time
	m         *Manager

	sup   *engine.Supervisor
	seq   *engine.Sequencer
	agg   *analysis.Aggregator
	timer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc

	populated atomic.Int32

	mu    sync.Mutex
	ended bool
}

func newSession(m *Manager, id string, cfg models.AnalysisConfig, start *analysis.Position, ch Channel, proc engine.Process) *Session {
	now := time.Now()
	ctx, cancel := context.WithCancel(m.ctx)

	return &Session{
		id:        id,
		cfg:       cfg,
		channel:   ch,
		startedAt: now,
		m:         m,
		sup:       engine.Supervise(proc, m.cfg.killGrace(), m.log.With().Str("analysis_id", id).Logger()),
		seq: engine.NewSequencer(engine.Search{
			FEN:      strings.TrimSpace(cfg.FEN),
			Depth:    cfg.Depth,
			MultiPV:  cfg.MultiPV,
			MoveTime: time.Duration(cfg.TimeLimit) * time.Millisecond,
			Threads:  m.cfg.Threads,
			HashMB:   m.cfg.HashMB,
		}),
		agg:    analysis.NewAggregator(start, cfg.MultiPV, now),
		timer:  time.NewTimer(m.cfg.Deadline(cfg.TimeLimit)),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Session) run() {
	for _, cmd := range s.seq.Begin() {
		s.sup.WriteLine(cmd)
	}

	for {
		select {
		case <-s.ctx.Done():
			s.seq.Finish(engine.StateCancelled)
			return

		case <-s.timer.C:
			s.end(engine.StateTimedOut, ErrTimeout)
			return

		case ev, ok := <-s.sup.Events():
			if !ok || ev.Kind == engine.EventExit {
				s.end(engine.StateErrored, exitError(ev.Err))
				return
			}

			step := s.seq.Handle(ev)
			for _, cmd := range step.Commands {
				s.sup.WriteLine(cmd)
			}
			if step.Info != nil {
				s.publish(*step.Info)
			}
			if step.Done {
				s.end(engine.StateCompleted, ErrNoResults)
				return
			}
		}
	}
}

// publish streams an accepted info report to the client.
func (s *Session) publish(info engine.Info) {
	u, ok := s.agg.Accept(info)
	if !ok {
		return
	}
	s.populated.Store(int32(s.agg.Populated()))

	if u.First {
		s.m.emit(observability.EventFirstResult, observability.LevelInfo, s.id, map[string]any{
			"latency_ms": u.PV.LatencyMS,
			"depth":      u.PV.Depth,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.m.send(s.channel, models.PVMessage(s.id, u.PV))
}

// end finishes the session from the run goroutine and sends its one
// terminal message: the populated lines, or empty when there are none.
func (s *Session) end(state engine.State, empty error) {
	s.seq.Finish(state)
	if !s.finish() {
		return
	}
	s.m.release(s)

	log := s.m.log.With().
		Str("analysis_id", s.id).
		Str("state", state.String()).
		Dur("elapsed", time.Since(s.startedAt)).
		Logger()

	results := s.agg.Results()
	if len(results) == 0 {
		log.Info().Err(empty).Msg("analysis ended without results")
		s.m.emit(terminalEvent(state, false), observability.LevelWarning, s.id, map[string]any{"error": empty.Error()})
		s.m.send(s.channel, models.ErrorMessage(s.id, empty))
		return
	}

	log.Debug().Int("lines", len(results)).Msg("analysis complete")
	s.m.emit(terminalEvent(state, true), observability.LevelInfo, s.id, map[string]any{"lines": len(results)})
	s.m.send(s.channel, models.CompleteMessage(s.id, results))
}

// finish tears the session down once. It reports whether this call did so.
func (s *Session) finish() bool {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return false
	}
	s.ended = true
	s.mu.Unlock()

	s.timer.Stop()
	s.cancel()
	s.sup.Terminate()
	return true
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:        s.id,
		Channel:   s.channel.ID(),
		FEN:       s.cfg.FEN,
		MultiPV:   s.cfg.MultiPV,
		StartedAt: s.startedAt,
		Populated: int(s.populated.Load()),
	}
}

func terminalEvent(state engine.State, ok bool) observability.EventType {
	switch {
	case state == engine.StateTimedOut:
		return observability.EventSessionTimeout
	case ok:
		return observability.EventSessionComplete
	default:
		return observability.EventSessionError
	}
}

func exitError(err error) error {
	if err == nil {
		return ErrEngineExited
	}
	return fmt.Errorf("%w: %v", ErrEngineExited, err)
}
