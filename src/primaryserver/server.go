package primaryserver

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jacokyle01/analysis-bridge/src/models"
	"github.com/jacokyle01/analysis-bridge/src/session"
)

// Analyzer is the session manager as seen by the transport.
type Analyzer interface {
	Start(id string, cfg models.AnalysisConfig, ch session.Channel) error
	Cancel(id string)
	ChannelClosed(ch session.Channel)
	Sessions() []session.Snapshot
}

// Server exposes the analysis socket and a few HTTP endpoints.
type Server struct {
	analyzer Analyzer
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu    sync.RWMutex
	conns map[string]*wsChannel
}

// NewServer creates the transport. allowedOrigins may contain "*"; when empty
// only same-origin browser connections are accepted.
func NewServer(analyzer Analyzer, allowedOrigins []string, log zerolog.Logger) *Server {
	s := &Server{
		analyzer: analyzer,
		log:      log.With().Str("component", "server").Logger(),
		conns:    make(map[string]*wsChannel),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return s
}

// Handler routes every endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleSocket)
	mux.HandleFunc("/sessions", s.handleViewSessions)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// StartServer serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) StartServer(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) track(ch *wsChannel) {
	s.mu.Lock()
	s.conns[ch.ID()] = ch
	s.mu.Unlock()
}

func (s *Server) untrack(ch *wsChannel) {
	s.mu.Lock()
	delete(s.conns, ch.ID())
	s.mu.Unlock()
}

func (s *Server) connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// closeAll hijacked connections are not closed by http.Server.Shutdown.
func (s *Server) closeAll() {
	s.mu.RLock()
	conns := make([]*wsChannel, 0, len(s.conns))
	for _, ch := range s.conns {
		conns = append(conns, ch)
	}
	s.mu.RUnlock()

	for _, ch := range conns {
		ch.close()
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
