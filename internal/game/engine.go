// internal/game/engine.go
//
// Core game engine for a single runner session.
// Responsibilities:
//   - Create sessions for a validated player name.
//   - Advance the simulation one tick at a time: parallax, jump physics,
//     obstacle scroll and cull, pattern spawning, collision, score and speed.
//   - Player input: jump, tap (jump or restart), pause.
//
// Notes:
//   - Pattern choice and layout come from the spawner package; speed and
//     cooldown come from the difficulty package.
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/robalobadob/runner/internal/difficulty"
	"github.com/robalobadob/runner/internal/spawner"
)

const (
	gravity      = 0.4
	jumpVelocity = -10
	playerX      = 50
	playerSize   = 40
	frameEvery   = 6
	farLayer     = 0.1
	nearLayer    = 0.5

	// MaxNameLen bounds player names in runes.
	MaxNameLen = 24
)

var (
	ErrNameRequired = errors.New("please enter your name")
	ErrNameTooLong  = errors.New("name too long")
)

// NormalizeName trims a player name and validates it.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return "", ErrNameTooLong
	}
	return name, nil
}

// NewSession constructs a session ready to tick. The first tick always
// spawns a pattern.
func NewSession(name string, cfg Config, rng spawner.Rand) (*Session, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:   randomID(),
		Name: name,
		cfg:  cfg.withDefaults(),
		rng:  rng,
	}
	s.Restart()
	return s, nil
}

// Config returns the session's playfield geometry.
func (s *Session) Config() Config { return s.cfg }

// Restart begins a new run, keeping ID, name and owner.
func (s *Session) Restart() {
	s.Run++
	s.StartedAt = time.Now()
	ground := s.cfg.Height
	s.Player = Player{
		X:      playerX,
		Y:      ground - playerSize,
		Width:  playerSize,
		Height: playerSize,
	}
	s.Obstacles = []spawner.Obstacle{}
	s.Score = 0
	s.Ticks = 0
	s.Spawns = 0
	s.Speed = difficulty.SpeedFor(0)
	s.Scheduler.Reset()
	s.Paused = false
	s.Over = false
	s.BgX1, s.BgX2 = 0, 0
	s.Frame, s.frameCount = 0, 0
}

// Tick advances the simulation by one step. Paused or finished sessions
// are left untouched. Returns true on the tick the run ends.
func (s *Session) Tick() bool {
	if s.Paused || s.Over {
		return false
	}
	s.Ticks++

	s.BgX1 -= s.Speed * farLayer
	s.BgX2 -= s.Speed * nearLayer
	if s.BgX1 <= -s.cfg.Width {
		s.BgX1 = 0
	}
	if s.BgX2 <= -s.cfg.Width {
		s.BgX2 = 0
	}

	s.stepPlayer()

	live := s.Obstacles[:0]
	for _, o := range s.Obstacles {
		o.X -= s.Speed
		if o.Right() > 0 {
			live = append(live, o)
		}
	}
	s.Obstacles = live

	if s.Scheduler.Step(s.Score) {
		s.Obstacles = append(s.Obstacles, spawner.Spawn(s.rng, s.Score, s.cfg.SpawnX, s.cfg.Height)...)
		s.Spawns++
	}

	for _, o := range s.Obstacles {
		if overlaps(s.Player, o) {
			s.Over = true
			break
		}
	}

	s.Score++
	s.Speed = difficulty.SpeedFor(s.Score)

	s.frameCount++
	if s.frameCount >= frameEvery {
		s.Frame = (s.Frame + 1) % s.cfg.SpriteFrames
		s.frameCount = 0
	}
	return s.Over
}

func (s *Session) stepPlayer() {
	p := &s.Player
	if !p.Jumping {
		return
	}
	p.Y += p.VelocityY
	p.VelocityY += gravity
	if floor := s.cfg.Height - p.Height; p.Y >= floor {
		p.Y = floor
		p.VelocityY = 0
		p.Jumping = false
	}
}

// Jump starts a jump when the player is grounded and the run is live.
func (s *Session) Jump() bool {
	if s.Over || s.Paused || s.Player.Jumping {
		return false
	}
	s.Player.Jumping = true
	s.Player.VelocityY = jumpVelocity
	return true
}

// Tap is the single-button input: restart a finished run, otherwise jump.
func (s *Session) Tap() {
	if s.Over {
		s.Restart()
		return
	}
	s.Jump()
}

// TogglePause flips the pause flag and returns the new value.
func (s *Session) TogglePause() bool {
	s.Paused = !s.Paused
	return s.Paused
}

// Snapshot copies the session into a client-facing State.
func (s *Session) Snapshot() State {
	obs := make([]spawner.Obstacle, len(s.Obstacles))
	copy(obs, s.Obstacles)
	return State{
		ID:        s.ID,
		Name:      s.Name,
		Run:       s.Run,
		Score:     s.Score,
		Speed:     s.Speed,
		Cooldown:  s.Scheduler.Cooldown,
		Paused:    s.Paused,
		Over:      s.Over,
		Player:    s.Player,
		Obstacles: obs,
		BgX1:      s.BgX1,
		BgX2:      s.BgX2,
		Frame:     s.Frame,
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
	}
}

// overlaps is a strict axis-aligned rectangle intersection test.
func overlaps(p Player, o spawner.Obstacle) bool {
	return p.X < o.X+o.Width &&
		p.X+p.Width > o.X &&
		p.Y < o.Y+o.Height &&
		p.Y+p.Height > o.Y
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
