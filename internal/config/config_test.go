package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "5175" || c.LeaderboardSize != 5 || c.CanvasWidth != 800 || c.CanvasHeight != 200 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.TickInterval() != time.Second/60 {
		t.Fatalf("unexpected tick interval %v", c.TickInterval())
	}
	if c.JWTTTL() != 14*24*time.Hour {
		t.Fatalf("unexpected jwt ttl %v", c.JWTTTL())
	}
}

func TestLoadFromEnvAndDotenv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("LEADERBOARD_SIZE=7\nCANVAS_WIDTH=640\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("PORT", "9000")
	t.Setenv("LEADERBOARD_BACKEND", "MEMORY")
	t.Setenv("TICK_RATE", "not-a-number")
	t.Cleanup(func() {
		os.Unsetenv("LEADERBOARD_SIZE")
		os.Unsetenv("CANVAS_WIDTH")
	})

	c, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != "9000" {
		t.Fatalf("expected PORT from env, got %q", c.Port)
	}
	if c.LeaderboardBackend != BackendMemory {
		t.Fatalf("expected memory backend, got %q", c.LeaderboardBackend)
	}
	if c.LeaderboardSize != 7 || c.CanvasWidth != 640 {
		t.Fatalf("expected values from .env, got size=%d width=%v", c.LeaderboardSize, c.CanvasWidth)
	}
	if c.TickRate != 60 {
		t.Fatalf("invalid number should fall back to default, got %d", c.TickRate)
	}
}

func TestValidate(t *testing.T) {
	good, err := Load(filepath.Join(t.TempDir(), "none.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cases := map[string]func(*Config){
		"width":    func(c *Config) { c.CanvasWidth = 0 },
		"tickrate": func(c *Config) { c.TickRate = -1 },
		"maxticks": func(c *Config) { c.MaxTicksPerCall = 0 },
		"size":     func(c *Config) { c.LeaderboardSize = 0 },
		"backend":  func(c *Config) { c.LeaderboardBackend = "redis" },
		"level":    func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		c := good
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
