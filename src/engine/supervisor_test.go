package engine_test

import (
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jacokyle01/analysis-bridge/src/engine"
	"github.com/jacokyle01/analysis-bridge/src/engine/enginetest"
)

func next(t *testing.T, events <-chan engine.Event) engine.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return engine.Event{}
}

func TestSupervisor_RelaysEventsInOrder(t *testing.T) {
	proc := enginetest.NewProcess(enginetest.Script{
		Info:     []string{"info depth 1 pv e2e4", "info depth 2 pv e2e4 e7e5"},
		BestMove: "e2e4",
	})
	sup := engine.Supervise(proc, 0, zerolog.Nop())

	sup.WriteLine("uci")
	sup.WriteLine("isready")
	sup.WriteLine("go depth 2")

	want := []engine.EventKind{engine.EventUCIOK, engine.EventReadyOK, engine.EventInfo, engine.EventInfo, engine.EventBestMove}
	for i, kind := range want {
		if ev := next(t, sup.Events()); ev.Kind != kind {
			t.Fatalf("event %d = %v, want %v", i, ev.Kind, kind)
		}
	}
}

func TestSupervisor_ExitEvent(t *testing.T) {
	proc := enginetest.NewProcess(enginetest.Script{})
	sup := engine.Supervise(proc, 0, zerolog.Nop())

	crash := errors.New("segfault")
	proc.Exit(crash)

	ev := next(t, sup.Events())
	if ev.Kind != engine.EventExit || !errors.Is(ev.Err, crash) {
		t.Fatalf("got %v (%v), want exit with %v", ev.Kind, ev.Err, crash)
	}
	if sup.Alive() {
		t.Error("supervisor reports a dead process as alive")
	}
	if _, ok := <-sup.Events(); ok {
		t.Error("events channel not closed after exit")
	}

	// Writes after exit are dropped silently.
	sup.WriteLine("isready")
	if got := proc.Written(); len(got) != 0 {
		t.Errorf("written after exit: %v", got)
	}
}

func TestSupervisor_TerminateQuitsGracefully(t *testing.T) {
	proc := enginetest.NewProcess(enginetest.Script{})
	sup := engine.Supervise(proc, time.Second, zerolog.Nop())

	sup.Terminate()
	sup.Terminate()

	select {
	case <-proc.Exited():
	case <-time.After(2 * time.Second):
		t.Fatal("process still running after Terminate")
	}
	if proc.Killed() {
		t.Error("process was killed although it honoured quit")
	}
	if got := proc.Written(); len(got) != 1 || got[0] != "quit" {
		t.Errorf("written = %v, want [quit]", got)
	}
}

func TestSupervisor_TerminateKillsStubbornEngine(t *testing.T) {
	proc := enginetest.NewProcess(enginetest.Script{IgnoreQuit: true})
	sup := engine.Supervise(proc, 10*time.Millisecond, zerolog.Nop())

	sup.Terminate()

	select {
	case <-proc.Exited():
	case <-time.After(2 * time.Second):
		t.Fatal("process still running after grace period")
	}
	if !proc.Killed() {
		t.Error("stubborn process was not killed")
	}
}

func TestStartProcess_RealPipes(t *testing.T) {
	cat, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}

	proc, err := engine.StartProcess(zerolog.Nop(), cat)
	if err != nil {
		t.Fatalf("StartProcess: %v", err)
	}
	sup := engine.Supervise(proc, 20*time.Millisecond, zerolog.Nop())

	sup.WriteLine("readyok")
	if ev := next(t, sup.Events()); ev.Kind != engine.EventReadyOK {
		t.Fatalf("echoed event = %v, want readyok", ev.Kind)
	}

	sup.Terminate()
	select {
	case <-proc.Exited():
	case <-time.After(2 * time.Second):
		t.Fatal("cat still running after Terminate")
	}
}

func TestStartProcess_MissingExecutable(t *testing.T) {
	_, err := engine.StartProcess(zerolog.Nop(), "/nonexistent/stockfish")
	if !errors.Is(err, engine.ErrExecutableNotFound) {
		t.Fatalf("err = %v, want ErrExecutableNotFound", err)
	}
}
