package spawn

import (
	"sync"

	"github.com/openpass-sim/kernel/internal/config"
	"github.com/openpass-sim/kernel/internal/world"
)

// NewAgentRequest is what a spawn-point module hands back: enough to
// build a world object and wire its components, but not yet an
// instantiated agent. Construction happens in internal/agent, which
// this package does not depend on: spawn production and agent
// construction stay separate stages joined by the scheduler.
type NewAgentRequest struct {
	Category           int
	InitialPose        world.Pose
	InitialBox         world.BoundingBox
	ComponentLibraries []config.LibraryDescriptor

	// Components carries the scheduling parameters for each entry of
	// ComponentLibraries, keyed by library name. A descriptor with no
	// matching entry falls back to the framework's default cadence (see
	// internal/orchestrator).
	Components map[string]config.ComponentScheduling

	// Channels wires the new agent's component ports together, same
	// shape as a scenario entity's channel list.
	Channels []config.ChannelConfig

	// DistanceReferencePointToLeadingEdge places the new agent's main
	// locator ahead of its reference point.
	DistanceReferencePointToLeadingEdge float64
}

// Point is the capability interface a bound spawn-point library
// implementation satisfies.
type Point interface {
	TriggerPreRun() ([]NewAgentRequest, error)
	TriggerRuntime(timeMs int64) ([]NewAgentRequest, error)
}

// Network wraps the instantiated spawn-point modules plus the queue the
// scheduler drains each tick.
type Network struct {
	points []Point

	mu    sync.Mutex
	queue []NewAgentRequest
}

// NewNetwork wraps an already-instantiated set of spawn-point modules.
func NewNetwork(points []Point) *Network {
	return &Network{points: points}
}

// TriggerPreRunSpawnPoints runs once before the first invocation tick,
// queuing every request each point returns.
func (n *Network) TriggerPreRunSpawnPoints() error {
	for _, p := range n.points {
		reqs, err := p.TriggerPreRun()
		if err != nil {
			return err
		}
		n.enqueue(reqs)
	}
	return nil
}

// TriggerRuntimeSpawnPoints runs every tick, queuing any new requests.
func (n *Network) TriggerRuntimeSpawnPoints(timeMs int64) error {
	for _, p := range n.points {
		reqs, err := p.TriggerRuntime(timeMs)
		if err != nil {
			return err
		}
		n.enqueue(reqs)
	}
	return nil
}

func (n *Network) enqueue(reqs []NewAgentRequest) {
	if len(reqs) == 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queue = append(n.queue, reqs...)
}

// ConsumeNewAgents drains and returns the entire pending queue.
func (n *Network) ConsumeNewAgents() []NewAgentRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.queue
	n.queue = nil
	return out
}

// Clear drops any unconsumed queued requests, part of the run
// orchestrator's end-of-invocation ClearRun. The underlying Point
// instances are not reset; a spawn library that carries cross-invocation
// state is responsible for its own reset through the hook lifecycle it
// implements.
func (n *Network) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queue = nil
}
