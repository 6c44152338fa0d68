package session

import (
	"time"

	"github.com/jacokyle01/analysis-bridge/src/engine"
)

// Config tunes the session manager. Durations are in milliseconds in JSON.
type Config struct {
	EnginePath     string `json:"engine_path,omitempty"`
	Threads        int    `json:"threads,omitempty"`
	HashMB         int    `json:"hash_mb,omitempty"`
	SafetyMarginMS int    `json:"safety_margin_ms,omitempty"`
	MinTimeoutMS   int    `json:"min_timeout_ms,omitempty"`
	KillGraceMS    int    `json:"kill_grace_ms,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Threads:        engine.DefaultThreads,
		HashMB:         engine.DefaultHashMB,
		SafetyMarginMS: 1000,
		MinTimeoutMS:   2000,
		KillGraceMS:    int(engine.DefaultKillGrace / time.Millisecond),
	}
}

// Merge applies non-zero values from source.
func (c *Config) Merge(source *Config) {
	if source.EnginePath != "" {
		c.EnginePath = source.EnginePath
	}
	if source.Threads > 0 {
		c.Threads = source.Threads
	}
	if source.HashMB > 0 {
		c.HashMB = source.HashMB
	}
	if source.SafetyMarginMS > 0 {
		c.SafetyMarginMS = source.SafetyMarginMS
	}
	if source.MinTimeoutMS > 0 {
		c.MinTimeoutMS = source.MinTimeoutMS
	}
	if source.KillGraceMS > 0 {
		c.KillGraceMS = source.KillGraceMS
	}
}

// Deadline is the session timeout for a search of timeLimitMS.
func (c Config) Deadline(timeLimitMS int) time.Duration {
	d := time.Duration(timeLimitMS+c.SafetyMarginMS) * time.Millisecond
	return max(d, time.Duration(c.MinTimeoutMS)*time.Millisecond)
}

func (c Config) killGrace() time.Duration {
	return time.Duration(c.KillGraceMS) * time.Millisecond
}
