package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridge.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"addr": ":9000", "allowed_origins": ["*"]},
		"session": {"engine_path": "/usr/games/stockfish", "threads": 2, "min_timeout_ms": 500},
		"log": {"level": "debug"}
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Addr != ":9000" || len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Session.EnginePath != "/usr/games/stockfish" || cfg.Session.Threads != 2 || cfg.Session.MinTimeoutMS != 500 {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Session.HashMB != DefaultConfig().Session.HashMB || cfg.Session.SafetyMarginMS != 1000 {
		t.Errorf("unset session values lost their defaults: %+v", cfg.Session)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file accepted")
	}
	if _, err := LoadConfig(writeConfig(t, "{")); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("malformed file err = %v", err)
	}
}

func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	log, err := LogConfig{Level: "warn"}.Logger(&buf)
	if err != nil {
		t.Fatal(err)
	}

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := (LogConfig{Level: "loud"}).Logger(&buf); err == nil {
		t.Error("invalid level accepted")
	}
}
