package orchestrator

import (
	"github.com/openpass-sim/kernel/internal/config"
	"github.com/openpass-sim/kernel/internal/stochastics"
)

// sampledEnvironment holds the invocation's once-per-run environment draw.
type sampledEnvironment struct {
	TimeOfDay          float64
	VisibilityDistance float64
	Friction           float64
	Weather            float64
}

// sampleEnvironment draws each configured environmentConfig distribution
// once, grounded on runInstantiator.cpp's per-invocation Sampler::Sample
// calls over timeOfDays/visibilityDistances/friction/weather.
func sampleEnvironment(cfg config.EnvironmentConfig, rng *stochastics.Default) sampledEnvironment {
	return sampledEnvironment{
		TimeOfDay:          sampleDistribution(cfg.TimeOfDay, rng),
		VisibilityDistance: sampleDistribution(cfg.VisibilityDistance, rng),
		Friction:           sampleDistribution(cfg.Friction, rng),
		Weather:            sampleDistribution(cfg.Weather, rng),
	}
}

// sampleDistribution draws one value from a config.Distribution.
func sampleDistribution(d config.Distribution, rng *stochastics.Default) float64 {
	switch d.Kind {
	case "uniform":
		return rng.GetUniformDistributed(d.Min, d.Max)
	case "normal":
		return rng.GetNormalDistributed(d.Mean, d.StdDev)
	default:
		return d.Value
	}
}
