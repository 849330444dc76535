package driverreaction

import (
	"math"
	"sort"
	"time"

	"github.com/openpass-sim/kernel/internal/signal"
)

// RandomSource is the minimal stochastics capability the reaction-time
// buffer needs: a log-normal draw to pick a perception time and latency
// once at spawn.
type RandomSource interface {
	GetLogNormalDistributed(mean, stdDev float64) float64
}

// DistributionEntry parameterizes a log-normal draw bounded to
// [Min, Max].
type DistributionEntry struct {
	Mean, StdDev, Min, Max float64
}

func sampleBounded(rng RandomSource, d DistributionEntry) time.Duration {
	if d.Mean <= 0 {
		return 0
	}
	v := rng.GetLogNormalDistributed(d.Mean, d.StdDev)
	if v < d.Min {
		v = d.Min
	}
	if v > d.Max {
		v = d.Max
	}
	return time.Duration(v * float64(time.Second))
}

// ReactionTime buffers perceived agents for a stochastically drawn
// perception time and latency before they become visible to the
// interpreter stage. Each component instance draws its own perception
// time/latency once at construction, modeling per-driver variability.
type ReactionTime struct {
	cycleTime             time.Duration
	initialPerceptionTime time.Duration
	perceptionLatency     time.Duration
	bufferSize            int

	buffer [][]signal.SensorDriverSummary // buffer[0] is the most recently pushed tick
	age    map[int]time.Duration          // per-object time since first perceived
}

// NewReactionTime draws the perception time and latency for one
// component instance.
func NewReactionTime(inPercTime, percLatency DistributionEntry, cycleTime time.Duration, rng RandomSource) *ReactionTime {
	bufferSeconds := math.Max(inPercTime.Max, percLatency.Max)
	bufferSize := int(math.Round(bufferSeconds/cycleTime.Seconds())) + 1
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &ReactionTime{
		cycleTime:             cycleTime,
		initialPerceptionTime: sampleBounded(rng, inPercTime),
		perceptionLatency:     sampleBounded(rng, percLatency),
		bufferSize:            bufferSize,
		age:                   map[int]time.Duration{},
	}
}

// Update pushes this tick's freshly perceived agents to the front of the
// buffer, evicting the oldest entry once bufferSize is exceeded.
func (r *ReactionTime) Update(agents []signal.SensorDriverSummary) {
	r.buffer = append([][]signal.SensorDriverSummary{agents}, r.buffer...)
	if len(r.buffer) > r.bufferSize {
		r.buffer = r.buffer[:r.bufferSize]
	}
}

// EraseAgent forgets an agent that has left perception range.
func (r *ReactionTime) EraseAgent(id int) {
	delete(r.age, id)
}

// PerceivedAgents returns the agents that have cleared both the initial
// perception time and the latency-delayed buffer slot.
func (r *ReactionTime) PerceivedAgents() []signal.SensorDriverSummary {
	if len(r.buffer) == 0 {
		return nil
	}
	for _, a := range r.buffer[0] {
		if _, tracked := r.age[a.ObjectID]; !tracked {
			r.age[a.ObjectID] = 0
		}
	}

	latencyIdx := int(math.Round(r.perceptionLatency.Seconds() / r.cycleTime.Seconds()))
	ids := make([]int, 0, len(r.age))
	for id := range r.age {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var result []signal.SensorDriverSummary
	for _, id := range ids {
		if r.age[id] < r.initialPerceptionTime {
			continue
		}
		if latencyIdx >= len(r.buffer) {
			continue
		}
		for _, a := range r.buffer[latencyIdx] {
			if a.ObjectID == id {
				result = append(result, a)
			}
		}
	}
	for id := range r.age {
		r.age[id] += r.cycleTime
	}
	return result
}
