// Package config loads the bridge's service configuration.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/jacokyle01/analysis-bridge/src/session"
)

// Config holds every section of the service configuration.
type Config struct {
	Server  ServerConfig   `json:"server"`
	Session session.Config `json:"session"`
	Log     LogConfig      `json:"log"`
}

type ServerConfig struct {
	Addr           string   `json:"addr,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Pretty bool   `json:"pretty,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		Session: session.DefaultConfig(),
		Log:     LogConfig{Level: "info"},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Server.Addr != "" {
		c.Server.Addr = source.Server.Addr
	}
	if len(source.Server.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = source.Server.AllowedOrigins
	}
	c.Session.Merge(&source.Session)
	if source.Log.Level != "" {
		c.Log.Level = source.Log.Level
	}
	if source.Log.Pretty {
		c.Log.Pretty = true
	}
}

// LoadConfig reads a JSON config file and merges it over the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// Logger builds the process logger writing to w.
func (c LogConfig) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if c.Pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
