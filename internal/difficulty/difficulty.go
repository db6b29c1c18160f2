// internal/difficulty/difficulty.go
//
// Score-indexed difficulty model for the runner.
// Responsibilities:
//   - Pattern selection weights per score bracket (200 / 500 / 800).
//   - Spawn cooldown after a pattern is placed.
//   - Scroll speed for a given score.
//
// Everything here is a pure function of score.

package difficulty

// Weights holds one selection weight per obstacle pattern, ordered
// single, cluster, stairs, gap. Totals are arbitrary; selection normalizes.
type Weights [4]float64

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	var t float64
	for _, v := range w {
		t += v
	}
	return t
}

const (
	maxCooldown = 150
	minCooldown = 90
	cooldownDiv = 10
	baseSpeed   = 2.0
	speedStep   = 0.5
	speedEvery  = 100
	maxSpeed    = 80.0
)

var brackets = []struct {
	below   int
	weights Weights
}{
	{200, Weights{80, 10, 5, 5}},
	{500, Weights{50, 30, 15, 5}},
	{800, Weights{30, 30, 25, 15}},
}

var lateGame = Weights{20, 25, 30, 25}

// WeightsFor returns the pattern weights for score.
// The first bracket whose upper bound exceeds score wins.
func WeightsFor(score int) Weights {
	for _, b := range brackets {
		if score < b.below {
			return b.weights
		}
	}
	return lateGame
}

// CooldownFor returns the tick count to wait after a spawn at score:
// max(90, 150 - floor(score/10)).
func CooldownFor(score int) int {
	if score < 0 {
		score = 0
	}
	c := maxCooldown - score/cooldownDiv
	if c < minCooldown {
		return minCooldown
	}
	return c
}

// SpeedFor returns the horizontal scroll speed (pixels per tick) at score.
// Speed starts at 2 and gains 0.5 every 100 points, capped at 80.
func SpeedFor(score int) float64 {
	if score < 0 {
		score = 0
	}
	s := baseSpeed + speedStep*float64(score/speedEvery)
	if s > maxSpeed {
		return maxSpeed
	}
	return s
}
