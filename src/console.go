package main

import (
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/jacokyle01/analysis-bridge/src/models"
)

// consoleChannel prints every message as one JSON line and signals when
// the terminal message has been written.
type consoleChannel struct {
	mu   sync.Mutex
	enc  *json.Encoder
	done chan struct{}
	err  error
}

func newConsoleChannel(w io.Writer) *consoleChannel {
	return &consoleChannel{enc: json.NewEncoder(w), done: make(chan struct{})}
}

func (c *consoleChannel) ID() string { return "console" }

func (c *consoleChannel) Send(msg models.ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enc.Encode(msg); err != nil {
		return err
	}
	switch msg.Type {
	case models.TypeAnalysisComplete:
		close(c.done)
	case models.TypeAnalysisError:
		c.err = errors.New(msg.Error)
		close(c.done)
	}
	return nil
}

func (c *consoleChannel) Done() <-chan struct{} {
	return c.done
}

func (c *consoleChannel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
