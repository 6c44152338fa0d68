// Package enginetest provides a scripted in-memory UCI engine for tests.
package enginetest

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/jacokyle01/analysis-bridge/src/engine"
)

// ErrKilled is the exit error of a process stopped with Kill.
var ErrKilled = errors.New("killed")

// Script controls how a fake engine answers commands.
type Script struct {
	// Info lines are written after "go", one chunk each.
	Info []string
	// BestMove is written after Info; empty means the engine never finishes.
	BestMove string
	// Silent engines never acknowledge "uci".
	Silent bool
	// DuplicateAcks repeats every uciok/readyok.
	DuplicateAcks bool
	// ExitAfterGo makes the process exit with ExitErr right after Info.
	ExitAfterGo bool
	ExitErr     error
	// IgnoreQuit keeps the process running after "quit" until killed.
	IgnoreQuit bool
}

// Process is a fake engine.Process driven by a Script.
type Process struct {
	script Script

	mu      sync.Mutex
	written []string
	done    bool
	killed  bool
	err     error
	output  chan []byte
	exited  chan struct{}
}

func NewProcess(script Script) *Process {
	return &Process{
		script: script,
		output: make(chan []byte, 256),
		exited: make(chan struct{}),
	}
}

func (p *Process) WriteLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return io.ErrClosedPipe
	}
	p.written = append(p.written, line)

	switch {
	case line == "uci":
		if p.script.Silent {
			return nil
		}
		p.emit("id name enginetest\n")
		p.emit("uciok\n")
		if p.script.DuplicateAcks {
			p.emit("uciok\n")
		}
	case line == "isready":
		p.emit("readyok\n")
		if p.script.DuplicateAcks {
			p.emit("readyok\n")
		}
	case strings.HasPrefix(line, "go"):
		for _, info := range p.script.Info {
			p.emit(info + "\n")
		}
		if p.script.ExitAfterGo {
			p.exit(p.script.ExitErr)
			return nil
		}
		if p.script.BestMove != "" {
			p.emit("bestmove " + p.script.BestMove + "\n")
		}
	case line == "quit":
		if !p.script.IgnoreQuit {
			p.exit(nil)
		}
	}
	return nil
}

func (p *Process) Output() <-chan []byte  { return p.output }
func (p *Process) Exited() <-chan struct{} { return p.exited }

func (p *Process) Err() error {
	<-p.exited
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Process) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed = true
	p.exit(ErrKilled)
	return nil
}

// Exit ends the process as if it crashed.
func (p *Process) Exit(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exit(err)
}

// Written returns every command received so far.
func (p *Process) Written() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.written...)
}

func (p *Process) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// Terminated reports whether the process has exited for any reason.
func (p *Process) Terminated() bool {
	select {
	case <-p.exited:
		return true
	default:
		return false
	}
}

func (p *Process) emit(s string) {
	if !p.done {
		p.output <- []byte(s)
	}
}

func (p *Process) exit(err error) {
	if p.done {
		return
	}
	p.done = true
	p.err = err
	close(p.output)
	close(p.exited)
}

// Spawner hands out fake processes and records them.
type Spawner struct {
	mu     sync.Mutex
	script Script
	err    error
	procs  []*Process
}

func NewSpawner(script Script) *Spawner {
	return &Spawner{script: script}
}

// FailingSpawner returns err from every Spawn.
func FailingSpawner(err error) *Spawner {
	return &Spawner{err: err}
}

func (s *Spawner) Spawn() (engine.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	p := NewProcess(s.script)
	s.procs = append(s.procs, p)
	return p, nil
}

// SetScript changes the script used by later spawns.
func (s *Spawner) SetScript(script Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = script
}

// Count is the number of processes spawned.
func (s *Spawner) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

// Process returns the i-th spawned process.
func (s *Spawner) Process(i int) *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.procs[i]
}
