// internal/game/types.go
//
// Core type definitions for the runner engine.
// Defines:
//   - Config: playfield geometry shared by every session.
//   - Player: the jumping sprite box.
//   - Session: all mutable state for one run.
//   - State: JSON snapshot handed to clients.

package game

import (
	"time"

	"github.com/robalobadob/runner/internal/spawner"
)

// Config describes the playfield. Ground level is Height.
type Config struct {
	Width        float64 // canvas width; background wrap distance
	Height       float64 // canvas height; obstacles and player stand on it
	SpawnX       float64 // x of the first obstacle in a pattern (defaults to Width)
	SpriteFrames int     // frames in the player sprite strip
}

// DefaultConfig matches an 800x200 canvas.
func DefaultConfig() Config {
	return Config{Width: 800, Height: 200, SpawnX: 800, SpriteFrames: 1}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.SpawnX <= 0 {
		c.SpawnX = c.Width
	}
	if c.SpriteFrames <= 0 {
		c.SpriteFrames = d.SpriteFrames
	}
	return c
}

// Player is the runner's collision box and vertical motion.
type Player struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	VelocityY float64 `json:"velocityY"`
	Jumping   bool    `json:"jumping"`
}

// Session holds the state of a single run. It is not safe for concurrent
// use; callers serialize access (see store.Update and the websocket loop).
type Session struct {
	ID        string             // Unique session identifier (random hex string).
	Name      string             // Display name used for the leaderboard.
	UserID    string             // Owning account; empty for guests.
	Run       int                // Runs started in this session, from 1.
	StartedAt time.Time          // Start of the current run.
	Player    Player             // Player box.
	Obstacles []spawner.Obstacle // Live obstacles, in spawn order.
	Speed     float64            // Current scroll speed.
	Score     int                // Ticks survived.
	Ticks     int                // Ticks simulated since the last restart.
	Spawns    int                // Patterns spawned since the last restart.
	Scheduler Scheduler          // Spawn cooldown.
	Paused    bool
	Over      bool

	// presentation counters
	BgX1, BgX2 float64
	Frame      int
	frameCount int

	cfg Config
	rng spawner.Rand
}

// State is the client-facing snapshot of a Session.
type State struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Run       int                `json:"run"`
	Score     int                `json:"score"`
	Speed     float64            `json:"speed"`
	Cooldown  int                `json:"cooldown"`
	Paused    bool               `json:"paused"`
	Over      bool               `json:"over"`
	Player    Player             `json:"player"`
	Obstacles []spawner.Obstacle `json:"obstacles"`
	BgX1      float64            `json:"bgX1"`
	BgX2      float64            `json:"bgX2"`
	Frame     int                `json:"frame"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
}
