package primaryserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jacokyle01/analysis-bridge/src/engine/enginetest"
	"github.com/jacokyle01/analysis-bridge/src/models"
	"github.com/jacokyle01/analysis-bridge/src/session"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func newTestServer(t *testing.T, script enginetest.Script) (*httptest.Server, *enginetest.Spawner, *session.Manager) {
	t.Helper()
	spawner := enginetest.NewSpawner(script)
	cfg := session.Config{SafetyMarginMS: 10, MinTimeoutMS: 5000, KillGraceMS: 10}
	manager := session.NewManager(cfg, spawner, zerolog.Nop(), nil)
	srv := httptest.NewServer(NewServer(manager, nil, zerolog.Nop()).Handler())
	t.Cleanup(func() {
		srv.Close()
		manager.Close()
	})
	return srv, spawner, manager
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) models.ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg models.ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestServer_AnalysisRoundTrip(t *testing.T) {
	srv, _, _ := newTestServer(t, enginetest.Script{
		Info: []string{
			"info depth 8 multipv 1 score cp 31 pv e2e4 e7e5",
			"info depth 8 multipv 2 score cp 22 pv d2d4",
		},
		BestMove: "e2e4",
	})
	conn := dial(t, srv)

	err := conn.WriteJSON(models.ClientMessage{
		Type:       models.TypeStartAnalysis,
		AnalysisID: "r1",
		Config:     &models.AnalysisConfig{FEN: startFEN, MultiPV: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	var pvs []models.PVResult
	for {
		msg := read(t, conn)
		if msg.AnalysisID != "r1" {
			t.Fatalf("unexpected analysis id %q", msg.AnalysisID)
		}
		if msg.Type == models.TypeAnalysisPV {
			pvs = append(pvs, *msg.PV)
			continue
		}
		if msg.Type != models.TypeAnalysisComplete {
			t.Fatalf("terminal message = %+v", msg)
		}
		if len(msg.PVs) != 2 {
			t.Fatalf("complete has %d lines, want 2", len(msg.PVs))
		}
		break
	}

	if len(pvs) != 2 || pvs[0].Moves[0] != "e4" || pvs[1].LineIndex != 1 {
		t.Errorf("streamed pvs = %+v", pvs)
	}
}

func TestServer_RejectsBadMessages(t *testing.T) {
	srv, spawner, _ := newTestServer(t, enginetest.Script{})
	conn := dial(t, srv)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "invalid json", payload: "{not json", want: "invalid message"},
		{name: "unknown type", payload: `{"type":"resign","analysisId":"q"}`, want: "unknown message type"},
		{name: "missing config", payload: `{"type":"start_analysis","analysisId":"q"}`, want: "requires a config"},
		{name: "empty fen", payload: `{"type":"start_analysis","analysisId":"q","config":{"fen":""}}`, want: "position is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatal(err)
			}
			msg := read(t, conn)
			if msg.Type != models.TypeAnalysisError || !strings.Contains(msg.Error, tt.want) {
				t.Errorf("got %+v, want error containing %q", msg, tt.want)
			}
		})
	}

	if spawner.Count() != 0 {
		t.Errorf("spawned %d engines for rejected requests", spawner.Count())
	}
}

func TestServer_GeneratesMissingAnalysisID(t *testing.T) {
	srv, _, _ := newTestServer(t, enginetest.Script{
		Info:     []string{"info depth 1 score cp 1 pv e2e4"},
		BestMove: "e2e4",
	})
	conn := dial(t, srv)

	conn.WriteJSON(models.ClientMessage{
		Type:   models.TypeStartAnalysis,
		Config: &models.AnalysisConfig{FEN: startFEN},
	})
	msg := read(t, conn)
	if msg.AnalysisID == "" {
		t.Fatal("no analysis id assigned")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestServer_CancelAndSessionsEndpoint(t *testing.T) {
	srv, spawner, manager := newTestServer(t, enginetest.Script{})
	conn := dial(t, srv)

	conn.WriteJSON(models.ClientMessage{
		Type:       models.TypeStartAnalysis,
		AnalysisID: "c1",
		Config:     &models.AnalysisConfig{FEN: startFEN},
	})
	waitFor(t, func() bool { return len(manager.Sessions()) == 1 })

	resp, err := http.Get(srv.URL + "/sessions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var status struct {
		ActiveSessions int                `json:"active_sessions"`
		Connections    int                `json:"connections"`
		Sessions       []session.Snapshot `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.ActiveSessions != 1 || status.Connections != 1 || status.Sessions[0].ID != "c1" {
		t.Errorf("status = %+v", status)
	}

	conn.WriteJSON(models.ClientMessage{Type: models.TypeCancelAnalysis, AnalysisID: "c1"})
	waitFor(t, func() bool { return len(manager.Sessions()) == 0 })
	waitFor(t, spawner.Process(0).Terminated)
}

func TestServer_DisconnectCancelsSession(t *testing.T) {
	srv, spawner, manager := newTestServer(t, enginetest.Script{})
	conn := dial(t, srv)

	conn.WriteJSON(models.ClientMessage{
		Type:       models.TypeStartAnalysis,
		AnalysisID: "d1",
		Config:     &models.AnalysisConfig{FEN: startFEN},
	})
	waitFor(t, func() bool { return len(manager.Sessions()) == 1 })

	conn.Close()
	waitFor(t, func() bool { return len(manager.Sessions()) == 0 })
	waitFor(t, spawner.Process(0).Terminated)
}

func TestServer_SessionsMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t, enginetest.Script{})

	resp, err := http.Post(srv.URL+"/sessions", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestOriginChecker(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://example.org")

	if originChecker(nil) != nil {
		t.Error("empty allow list should fall back to the same-origin default")
	}
	if !originChecker([]string{"*"})(req) {
		t.Error("wildcard rejected origin")
	}
	if !originChecker([]string{"https://example.org"})(req) {
		t.Error("listed origin rejected")
	}
	if originChecker([]string{"https://other.org"})(req) {
		t.Error("unlisted origin accepted")
	}
}
