package primaryserver

import (
	"errors"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jacokyle01/analysis-bridge/src/models"
)

const (
	writeWait = 10 * time.Second
	// maxQueued bounds the messages waiting for a slow client.
	maxQueued = 1024
)

var (
	ErrChannelClosed = errors.New("client connection closed")
	ErrQueueFull     = errors.New("client outbound queue full")
)

// wsChannel is a session.Channel over one WebSocket connection. Send only
// enqueues; a single writer goroutine drains the queue in order.
type wsChannel struct {
	id   string
	conn *websocket.Conn
	log  zerolog.Logger

	mu      sync.Mutex
	pending *queue.Queue
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func newWSChannel(conn *websocket.Conn, log zerolog.Logger) *wsChannel {
	id := uuid.NewString()
	return &wsChannel{
		id:      id,
		conn:    conn,
		log:     log.With().Str("channel", id).Logger(),
		pending: queue.New(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (c *wsChannel) ID() string {
	return c.id
}

func (c *wsChannel) Send(msg models.ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}
	if c.pending.Length() >= maxQueued {
		return ErrQueueFull
	}
	c.pending.Add(msg)

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

func (c *wsChannel) writeLoop() {
	for {
		msg, ok := c.next()
		if !ok {
			return
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			c.log.Debug().Err(err).Str("type", msg.Type).Msg("write failed")
			c.close()
			return
		}
	}
}

// next blocks until a message is queued or the channel is closed.
func (c *wsChannel) next() (models.ServerMessage, bool) {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return models.ServerMessage{}, false
		}
		if c.pending.Length() > 0 {
			msg := c.pending.Remove().(models.ServerMessage)
			c.mu.Unlock()
			return msg, true
		}
		c.mu.Unlock()

		select {
		case <-c.wake:
		case <-c.done:
		}
	}
}

func (c *wsChannel) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.conn.Close()
}
