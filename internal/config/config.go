// internal/config/config.go
//
// Environment-driven configuration for the runner server.
// `.env` files are loaded with godotenv when present; real environment
// variables always win.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Leaderboard backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // console | json
	AppEnv    string

	DBPath             string
	LeaderboardBackend string
	LeaderboardSize    int

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string

	CanvasWidth     float64
	CanvasHeight    float64
	TickRate        int
	MaxTicksPerCall int
}

// Load reads `.env` files (missing files are ignored) and then the process
// environment.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	c := Config{
		Port:      getEnv("PORT", "5175"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		AppEnv:    getEnv("APP_ENV", "development"),

		DBPath:             getEnv("DB_PATH", "./data/runner.db"),
		LeaderboardBackend: strings.ToLower(getEnv("LEADERBOARD_BACKEND", BackendSQLite)),
		LeaderboardSize:    envInt("LEADERBOARD_SIZE", 5),

		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: envInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "runner_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		CanvasWidth:     envFloat("CANVAS_WIDTH", 800),
		CanvasHeight:    envFloat("CANVAS_HEIGHT", 200),
		TickRate:        envInt("TICK_RATE", 60),
		MaxTicksPerCall: envInt("MAX_TICKS_PER_REQUEST", 600),
	}
	return c, c.Validate()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("config: canvas must be positive, got %vx%v", c.CanvasWidth, c.CanvasHeight)
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("config: TICK_RATE must be positive, got %d", c.TickRate)
	}
	if c.MaxTicksPerCall <= 0 {
		return fmt.Errorf("config: MAX_TICKS_PER_REQUEST must be positive, got %d", c.MaxTicksPerCall)
	}
	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("config: LEADERBOARD_SIZE must be positive, got %d", c.LeaderboardSize)
	}
	switch c.LeaderboardBackend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("config: unknown LEADERBOARD_BACKEND %q", c.LeaderboardBackend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return nil
}

// Production reports whether cookies should be Secure.
func (c Config) Production() bool { return c.AppEnv == "production" }

// TickInterval is the server-paced tick period for websocket sessions.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// JWTTTL is the lifetime of issued auth tokens.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
