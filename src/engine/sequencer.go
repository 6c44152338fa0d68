package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/notnil/chess/uci"
)

// Default engine resource hints sent with every search.
const (
	DefaultThreads = 1
	DefaultHashMB  = 16
)

// State is a step of the engine handshake and search lifecycle.
type State int

const (
	StateSpawned State = iota
	StateUCIHandshakeSent
	StateEngineAcked
	StateReadinessQueried
	StateReady
	StateCommandsDispatched
	StateSearching
	StateCompleted
	StateTimedOut
	StateCancelled
	StateErrored
)

var stateNames = [...]string{
	"spawned",
	"uci_handshake_sent",
	"engine_acked",
	"readiness_queried",
	"ready",
	"commands_dispatched",
	"searching",
	"completed",
	"timed_out",
	"cancelled",
	"errored",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s >= StateCompleted
}

// Search describes the search the sequencer dispatches once the engine is ready.
type Search struct {
	FEN      string
	Depth    int
	MultiPV  int
	MoveTime time.Duration
	Threads  int
	HashMB   int
}

// Commands returns the search command sequence, one line per command.
func (s Search) Commands() []string {
	threads, hash := s.Threads, s.HashMB
	if threads <= 0 {
		threads = DefaultThreads
	}
	if hash <= 0 {
		hash = DefaultHashMB
	}
	return []string{
		uci.CmdUCINewGame.String(),
		uci.CmdSetOption{Name: "MultiPV", Value: strconv.Itoa(s.MultiPV)}.String(),
		uci.CmdSetOption{Name: "Threads", Value: strconv.Itoa(threads)}.String(),
		uci.CmdSetOption{Name: "Hash", Value: strconv.Itoa(hash)}.String(),
		fmt.Sprintf("position fen %s", s.FEN),
		fmt.Sprintf("go depth %d movetime %d", s.Depth, s.MoveTime.Milliseconds()),
	}
}

// Step is the sequencer's reaction to one event.
type Step struct {
	// Commands to write to the engine, in order, each flushed on its own.
	Commands []string
	// Info is set when an info report should reach the aggregator.
	Info *Info
	// Done is set when the engine reported its best move.
	Done     bool
	BestMove string
}

// Sequencer drives one engine through the UCI handshake and issues the
// search exactly once. It performs no I/O; callers write the returned
// commands.
type Sequencer struct {
	search           Search
	state            State
	readinessQueried bool
	commandsIssued   bool
}

func NewSequencer(search Search) *Sequencer {
	return &Sequencer{search: search, state: StateSpawned}
}

func (s *Sequencer) State() State {
	return s.state
}

// Begin starts the handshake.
func (s *Sequencer) Begin() []string {
	if s.state != StateSpawned {
		return nil
	}
	s.state = StateUCIHandshakeSent
	return []string{uci.CmdUCI.String()}
}

// Handle advances the state machine for ev.
func (s *Sequencer) Handle(ev Event) Step {
	if s.state.Terminal() {
		return Step{}
	}

	switch ev.Kind {
	case EventUCIOK:
		if s.readinessQueried {
			return Step{}
		}
		// EngineAcked is transient: the readiness query goes out at once.
		s.readinessQueried = true
		s.state = StateReadinessQueried
		return Step{Commands: []string{uci.CmdIsReady.String()}}

	case EventReadyOK:
		if s.commandsIssued {
			return Step{}
		}
		// Ready and CommandsDispatched are transient for the same reason.
		s.commandsIssued = true
		s.state = StateSearching
		return Step{Commands: s.search.Commands()}

	case EventInfo:
		if s.state != StateSearching {
			return Step{}
		}
		info := ev.Info
		return Step{Info: &info}

	case EventBestMove:
		s.state = StateCompleted
		return Step{Done: true, BestMove: ev.BestMove}
	}

	return Step{}
}

// Finish moves the sequencer into a terminal state. It has no effect once
// the sequencer is already terminal.
func (s *Sequencer) Finish(state State) {
	if s.state.Terminal() || !state.Terminal() {
		return
	}
	s.state = state
}
