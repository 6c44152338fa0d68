package session

import "github.com/jacokyle01/analysis-bridge/src/models"

// Channel is a client's outbound message sink. Send must not block for long;
// it is called from session goroutines.
type Channel interface {
	ID() string
	Send(msg models.ServerMessage) error
}
