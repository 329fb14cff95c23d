package avoidance

import (
	"math/rand"
	"sync"
)

// TurnPolicy resolves a symmetric obstacle (no lateral bias in the sensor
// readings) to a concrete turn direction.
type TurnPolicy interface {
	// Resolve returns +magnitude or -magnitude.
	Resolve(magnitude float64) float64
}

// RandomTurn picks each direction with equal probability. The seed is
// injectable so decision-tree tests can pin down a branch and statistical
// tests can reproduce a run exactly.
type RandomTurn struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomTurn creates a policy backed by its own seeded generator.
func NewRandomTurn(seed int64) *RandomTurn {
	return &RandomTurn{rng: rand.New(rand.NewSource(seed))}
}

// Resolve returns magnitude with a uniformly random sign. Negative is a
// left turn, positive a right turn.
func (t *RandomTurn) Resolve(magnitude float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rng.Intn(2) == 0 {
		return -magnitude
	}
	return magnitude
}
