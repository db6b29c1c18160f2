package game

import "github.com/robalobadob/runner/internal/difficulty"

// Scheduler gates pattern spawns with a tick cooldown.
//
// Idle (Cooldown > 0) counts down one per tick. Due (Cooldown <= 0) spawns
// and re-arms with difficulty.CooldownFor(score). The zero value is due.
type Scheduler struct {
	Cooldown int `json:"cooldown"`
}

// Due reports whether the next Step will spawn.
func (s *Scheduler) Due() bool { return s.Cooldown <= 0 }

// Step advances one tick and reports whether a pattern should spawn now.
func (s *Scheduler) Step(score int) bool {
	if s.Cooldown <= 0 {
		s.Cooldown = difficulty.CooldownFor(score)
		return true
	}
	s.Cooldown--
	return false
}

// Reset makes the scheduler due on the next tick.
func (s *Scheduler) Reset() { s.Cooldown = 0 }
