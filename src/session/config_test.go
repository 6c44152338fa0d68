package session

import (
	"testing"
	"time"
)

func TestConfig_Deadline(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		timeLimitMS int
		want        time.Duration
	}{
		{timeLimitMS: 50, want: 2 * time.Second},
		{timeLimitMS: 750, want: 2 * time.Second},
		{timeLimitMS: 5000, want: 6 * time.Second},
	}

	for _, tt := range tests {
		if got := cfg.Deadline(tt.timeLimitMS); got != tt.want {
			t.Errorf("Deadline(%d) = %v, want %v", tt.timeLimitMS, got, tt.want)
		}
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(&Config{EnginePath: "/opt/sf", Threads: 4})

	if cfg.EnginePath != "/opt/sf" || cfg.Threads != 4 {
		t.Errorf("merged values missing: %+v", cfg)
	}
	if cfg.HashMB != DefaultConfig().HashMB || cfg.MinTimeoutMS != 2000 {
		t.Errorf("defaults overwritten by zero values: %+v", cfg)
	}
}
