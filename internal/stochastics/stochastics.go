package stochastics

import (
	"math"
	"math/rand"
)

// Default is the kernel's built-in Stochastics implementation, registered
// under the "default" name in the binding static registry so
// a scenario with no stochastics library configured still draws
// deterministic, seed-reproducible values. It satisfies
// internal/world/navigation.RandomSource.
type Default struct {
	rng *rand.Rand
}

// New returns a Default seeded with seed.
func New(seed uint32) *Default {
	return &Default{rng: rand.New(rand.NewSource(int64(seed)))}
}

// InitGenerator reseeds the generator.
func (d *Default) InitGenerator(seed uint32) {
	d.rng = rand.New(rand.NewSource(int64(seed)))
}

// UniformDistributed returns a draw in [0,1), the minimal capability
// navigation.RandomSource requires for junction-connection selection.
func (d *Default) UniformDistributed() float64 {
	return d.rng.Float64()
}

// GetUniformDistributed returns a draw in [a,b).
func (d *Default) GetUniformDistributed(a, b float64) float64 {
	return a + d.rng.Float64()*(b-a)
}

// GetNormalDistributed returns a draw from Normal(mean, stdDev), used for
// environment parameters configured with a "normal" distribution kind.
func (d *Default) GetNormalDistributed(mean, stdDev float64) float64 {
	return mean + d.rng.NormFloat64()*stdDev
}

// GetLogNormalDistributed returns a draw from a log-normal distribution
// parameterized by the underlying normal's mean and standard deviation,
// used by internal/components/driverreaction's ReactionTime to draw
// perception times and latencies.
func (d *Default) GetLogNormalDistributed(mean, stdDev float64) float64 {
	return math.Exp(mean + d.rng.NormFloat64()*stdDev)
}
