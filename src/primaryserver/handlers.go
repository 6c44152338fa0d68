package primaryserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jacokyle01/analysis-bridge/src/models"
)

const maxMessageSize = 64 << 10

var errMissingConfig = errors.New("start_analysis requires a config")

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	ch := newWSChannel(conn, s.log)
	s.track(ch)
	go ch.writeLoop()
	ch.log.Debug().Str("remote", r.RemoteAddr).Msg("client connected")

	defer func() {
		s.analyzer.ChannelClosed(ch)
		ch.close()
		s.untrack(ch)
		ch.log.Debug().Msg("client disconnected")
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ch.log.Info().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}

		var msg models.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			ch.Send(models.ErrorMessage("", fmt.Errorf("invalid message: %w", err)))
			continue
		}
		s.dispatch(ch, msg)
	}
}

func (s *Server) dispatch(ch *wsChannel, msg models.ClientMessage) {
	switch msg.Type {
	case models.TypeStartAnalysis:
		id := msg.AnalysisID
		if id == "" {
			id = uuid.NewString()
		}
		if msg.Config == nil {
			ch.Send(models.ErrorMessage(id, errMissingConfig))
			return
		}
		// Failures have already been reported on the channel.
		if err := s.analyzer.Start(id, *msg.Config, ch); err != nil {
			ch.log.Debug().Err(err).Str("analysis_id", id).Msg("analysis not started")
		}

	case models.TypeCancelAnalysis:
		s.analyzer.Cancel(msg.AnalysisID)

	default:
		ch.Send(models.ErrorMessage(msg.AnalysisID, fmt.Errorf("unknown message type %q", msg.Type)))
	}
}

func (s *Server) handleViewSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions := s.analyzer.Sessions()
	status := map[string]interface{}{
		"active_sessions": len(sessions),
		"connections":     s.connections(),
		"sessions":        sessions,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
