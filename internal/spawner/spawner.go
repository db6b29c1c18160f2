// internal/spawner/spawner.go
//
// Obstacle pattern spawner.
// Responsibilities:
//   - Weighted random choice over the difficulty weights (cumulative draw).
//   - Laying out obstacles for each pattern (single, cluster, stairs, gap).
//
// Notes:
//   - Randomness comes from an injected Rand so draws are reproducible in tests.
//   - All obstacles sit on the ground: y = groundY - height.

package spawner

import (
	"github.com/robalobadob/runner/internal/difficulty"
)

// Rand is the random source used by the spawner.
// *rand.Rand from math/rand and math/rand/v2 both satisfy it.
type Rand interface {
	Float64() float64
}

// Pattern identifies an obstacle layout template.
type Pattern int

const (
	PatternSingle Pattern = iota
	PatternCluster
	PatternStairs
	PatternGap
)

// Patterns lists every pattern in weight order.
var Patterns = [...]Pattern{PatternSingle, PatternCluster, PatternStairs, PatternGap}

func (p Pattern) String() string {
	switch p {
	case PatternSingle:
		return "single"
	case PatternCluster:
		return "cluster"
	case PatternStairs:
		return "stairs"
	case PatternGap:
		return "gap"
	}
	return "unknown"
}

// Obstacle is an axis-aligned rectangle standing on the ground.
type Obstacle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the obstacle's right edge.
func (o Obstacle) Right() float64 { return o.X + o.Width }

const (
	obstacleWidth = 20
	minHeight     = 20
	maxHeight     = 40
	stairsMin     = 15
	stairsMax     = 25
	stairStep     = 10
	stepOffset    = 30
	gapOffset     = 100
	// score at which clusters grow from two to three blocks
	clusterGrowAt = 500
)

// WeightedChoice returns an index into weights using a cumulative draw:
// sample uniformly in [0,total) and walk left to right, subtracting each
// weight until the remainder falls below the current one.
//
// When nothing matches (all weights zero, or float rounding on the last
// step) the last index is returned.
func WeightedChoice(r Rand, weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	rnd := r.Float64() * total
	for i, w := range weights {
		if rnd < w {
			return i
		}
		rnd -= w
	}
	return len(weights) - 1
}

// Choose picks a pattern for score.
func Choose(r Rand, score int) Pattern {
	w := difficulty.WeightsFor(score)
	return Patterns[WeightedChoice(r, w[:])]
}

// Spawn picks a pattern from the difficulty weights for score and lays it
// out starting at spawnX. The caller appends the result to its live set.
func Spawn(r Rand, score int, spawnX, groundY float64) []Obstacle {
	return Layout(r, Choose(r, score), score, spawnX, groundY)
}

// Layout emits the obstacles for pattern p.
func Layout(r Rand, p Pattern, score int, spawnX, groundY float64) []Obstacle {
	switch p {
	case PatternSingle:
		return []Obstacle{newObstacle(spawnX, groundY, between(r, minHeight, maxHeight))}

	case PatternCluster:
		n := 2
		if score >= clusterGrowAt {
			n = 3
		}
		out := make([]Obstacle, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, newObstacle(spawnX+float64(i*stepOffset), groundY, between(r, minHeight, maxHeight)))
		}
		return out

	case PatternStairs:
		base := between(r, stairsMin, stairsMax)
		out := make([]Obstacle, 0, 3)
		for i := 0; i < 3; i++ {
			out = append(out, newObstacle(spawnX+float64(i*stepOffset), groundY, base+float64(i*stairStep)))
		}
		return out

	case PatternGap:
		return []Obstacle{
			newObstacle(spawnX, groundY, between(r, minHeight, maxHeight)),
			newObstacle(spawnX+gapOffset, groundY, between(r, minHeight, maxHeight)),
		}
	}
	return nil
}

func newObstacle(x, groundY, height float64) Obstacle {
	return Obstacle{X: x, Y: groundY - height, Width: obstacleWidth, Height: height}
}

// between returns a uniform value in [lo,hi).
func between(r Rand, lo, hi float64) float64 {
	return r.Float64()*(hi-lo) + lo
}
