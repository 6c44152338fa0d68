package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/notnil/chess/uci"
	"github.com/rs/zerolog"
)

// DefaultKillGrace is how long Terminate waits after "quit" before killing.
const DefaultKillGrace = 200 * time.Millisecond

// Supervisor owns one engine process. It parses the process output and
// publishes the resulting events, in order, on a channel that ends with a
// single EventExit.
type Supervisor struct {
	proc   Process
	events chan Event
	stop   chan struct{}
	grace  time.Duration
	alive  atomic.Bool
	once   sync.Once
	log    zerolog.Logger
}

// Supervise starts pumping proc's output. grace <= 0 selects DefaultKillGrace.
func Supervise(proc Process, grace time.Duration, log zerolog.Logger) *Supervisor {
	if grace <= 0 {
		grace = DefaultKillGrace
	}
	s := &Supervisor{
		proc:   proc,
		events: make(chan Event, 64),
		stop:   make(chan struct{}),
		grace:  grace,
		log:    log,
	}
	s.alive.Store(true)
	go s.pump()
	return s
}

// Events is closed after the EventExit has been delivered.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

func (s *Supervisor) Alive() bool {
	return s.alive.Load()
}

// WriteLine sends a command. Writes to a dead process are dropped.
func (s *Supervisor) WriteLine(line string) {
	if !s.alive.Load() {
		return
	}
	if err := s.proc.WriteLine(line); err != nil {
		s.log.Debug().Err(err).Str("command", line).Msg("engine write failed")
		return
	}
	s.log.Trace().Str("command", line).Msg("engine <")
}

// Terminate asks the engine to quit and kills it if it is still running
// after the grace period. Only the first call has any effect. Events
// produced afterwards are discarded.
func (s *Supervisor) Terminate() {
	s.once.Do(func() {
		close(s.stop)
		s.WriteLine(uci.CmdQuit.String())
		go func() {
			select {
			case <-s.proc.Exited():
			case <-time.After(s.grace):
				if err := s.proc.Kill(); err != nil {
					s.log.Warn().Err(err).Msg("failed to kill engine")
				}
			}
		}()
	})
}

func (s *Supervisor) pump() {
	defer close(s.events)

	var parser LineParser
	for chunk := range s.proc.Output() {
		for _, ev := range parser.Feed(chunk) {
			s.publish(ev)
		}
	}
	for _, ev := range parser.Flush() {
		s.publish(ev)
	}

	<-s.proc.Exited()
	s.alive.Store(false)
	s.publish(Event{Kind: EventExit, Err: s.proc.Err()})
}

// publish keeps draining the process after Terminate so the reader never
// blocks on a full channel.
func (s *Supervisor) publish(ev Event) {
	select {
	case <-s.stop:
		return
	default:
	}
	select {
	case s.events <- ev:
	case <-s.stop:
	}
}
