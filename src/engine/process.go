package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"
)

// Process is a running engine with line-oriented input and chunked output.
type Process interface {
	// WriteLine writes line followed by a newline and flushes it.
	WriteLine(line string) error
	// Output delivers raw stdout chunks and is closed at EOF.
	Output() <-chan []byte
	// Exited is closed once the process has been reaped.
	Exited() <-chan struct{}
	// Err is the exit error, valid after Exited is closed.
	Err() error
	// Kill forcibly terminates the process.
	Kill() error
}

// Spawner starts engine processes. Each call yields a fresh process.
type Spawner interface {
	Spawn() (Process, error)
}

// ExecSpawner starts the engine binary with os/exec.
type ExecSpawner struct {
	// Path is the configured executable; empty means search for one.
	Path string
	Args []string
	Log  zerolog.Logger
}

func (s ExecSpawner) Spawn() (Process, error) {
	path, err := Locate(s.Path)
	if err != nil {
		return nil, err
	}
	return StartProcess(s.Log, path, s.Args...)
}

// StartProcess runs path directly (no shell) with all three standard
// streams piped.
func StartProcess(log zerolog.Logger, path string, args ...string) (Process, error) {
	cmd := exec.Command(path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrExecutableNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	p := &execProcess{
		cmd:    cmd,
		stdin:  bufio.NewWriter(stdin),
		output: make(chan []byte, 64),
		exited: make(chan struct{}),
		log:    log.With().Str("engine", path).Int("pid", cmd.Process.Pid).Logger(),
	}

	var streams sync.WaitGroup
	streams.Add(2)
	go func() {
		defer streams.Done()
		p.readStdout(stdout)
	}()
	go func() {
		defer streams.Done()
		p.readStderr(stderr)
	}()
	go func() {
		streams.Wait()
		p.err = cmd.Wait()
		close(p.exited)
	}()

	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	mu     sync.Mutex
	stdin  *bufio.Writer
	output chan []byte
	exited chan struct{}
	err    error
	log    zerolog.Logger
}

func (p *execProcess) WriteLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.stdin.WriteString(line + "\n"); err != nil {
		return err
	}
	return p.stdin.Flush()
}

func (p *execProcess) Output() <-chan []byte  { return p.output }
func (p *execProcess) Exited() <-chan struct{} { return p.exited }

func (p *execProcess) Err() error {
	<-p.exited
	return p.err
}

func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *execProcess) readStdout(r io.Reader) {
	defer close(p.output)

	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			p.output <- chunk
		}
		if err != nil {
			return
		}
	}
}

func (p *execProcess) readStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.log.Debug().Str("stderr", scanner.Text()).Msg("engine stderr")
	}
}
