package agent

import (
	"fmt"
	"sort"
	"sync"

	"github.com/openpass-sim/kernel/internal/world"
)

// GlobalDataSink receives the fixed per-agent key set PublishGlobalData
// emits each tick. Satisfied by a thin adapter over internal/datastore
// (the orchestrator's cyclicSink), so this package never imports it,
// keeping the dependency one-directional.
type GlobalDataSink interface {
	PutCyclic(agentID int64, key string, value interface{})
}

// AgentNetwork owns every agent of one invocation plus the deferred
// update/remove queues the synchronize phase drains.
type AgentNetwork struct {
	mu sync.Mutex

	agents  map[int64]*Agent
	removed []*Agent

	updateQueue []func()
	removeQueue []*Agent
}

// NewAgentNetwork returns an empty network, ready for the spawn phase.
func NewAgentNetwork() *AgentNetwork {
	return &AgentNetwork{agents: map[int64]*Agent{}}
}

// AddAgent registers a new agent. Fails if the id is already present.
func (n *AgentNetwork) AddAgent(a *Agent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.agents[a.ID]; exists {
		return fmt.Errorf("agent: id %d already present", a.ID)
	}
	a.State = Active
	n.agents[a.ID] = a
	diagf("agent %d added, category=%d", a.ID, a.Category)
	return nil
}

// Get returns the live agent with id, or false if it isn't registered.
func (n *AgentNetwork) Get(id int64) (*Agent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	a, ok := n.agents[id]
	return a, ok
}

// QueueAgentUpdate defers a state mutation closure to the
// synchronization phase.
func (n *AgentNetwork) QueueAgentUpdate(f func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updateQueue = append(n.updateQueue, f)
}

// QueueAgentRemove defers an agent's removal to the synchronization
// phase.
func (n *AgentNetwork) QueueAgentRemove(a *Agent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.removeQueue = append(n.removeQueue, a)
}

// SyncGlobalData drains the update queue FIFO, then the remove queue
// FIFO (each removed agent is unregistered exactly once and moved to the
// retained removed list), then re-runs localization for every still-live
// agent, marking failures Invalid. Update closures run in the order they
// were queued, so when two closures set the same field the one queued
// later wins.
func (n *AgentNetwork) SyncGlobalData(lz *world.Localizer) {
	n.mu.Lock()
	updates := n.updateQueue
	n.updateQueue = nil
	removes := n.removeQueue
	n.removeQueue = nil
	n.mu.Unlock()

	for _, f := range updates {
		f()
	}

	n.mu.Lock()
	for _, a := range removes {
		if _, exists := n.agents[a.ID]; !exists {
			continue
		}
		a.State = Removed
		delete(n.agents, a.ID)
		n.removed = append(n.removed, a)
		diagf("agent %d removed", a.ID)
	}
	live := make([]*Agent, 0, len(n.agents))
	for _, a := range n.agents {
		live = append(live, a)
	}
	n.mu.Unlock()

	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })
	for _, a := range live {
		if err := a.Relocate(lz); err != nil {
			opsf("%v", err)
		}
	}
}

// PublishGlobalData emits the fixed key set for every live
// agent, in deterministic id order.
func (n *AgentNetwork) PublishGlobalData(sink GlobalDataSink) {
	n.mu.Lock()
	live := make([]*Agent, 0, len(n.agents))
	for _, a := range n.agents {
		live = append(live, a)
	}
	n.mu.Unlock()

	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })
	for _, a := range live {
		publishAgent(sink, a)
	}
}

func publishAgent(sink GlobalDataSink, a *Agent) {
	obj := a.Object
	sink.PutCyclic(a.ID, "positionX", obj.Pose.X)
	sink.PutCyclic(a.ID, "positionY", obj.Pose.Y)
	sink.PutCyclic(a.ID, "yaw", obj.Pose.Yaw)
	sink.PutCyclic(a.ID, "yawRate", obj.YawRate)
	sink.PutCyclic(a.ID, "velocity", obj.Velocity)
	sink.PutCyclic(a.ID, "acceleration", obj.Acceleration)
	sink.PutCyclic(a.ID, "steering", a.Steering)
	sink.PutCyclic(a.ID, "odometer", a.Odometer)
	sink.PutCyclic(a.ID, "secondaryLanes", a.SecondaryLanes)
	sink.PutCyclic(a.ID, "frontAgentId", a.FrontAgentID)

	if obj.Position.ReferencePoint != nil {
		ref := obj.Position.ReferencePoint
		sink.PutCyclic(a.ID, "s", ref.S)
		sink.PutCyclic(a.ID, "t", ref.T)
		sink.PutCyclic(a.ID, "lane", ref.LaneID)
		sink.PutCyclic(a.ID, "road", ref.RoadID)
	}
}

// Agents returns every currently live agent in ascending id order.
func (n *AgentNetwork) Agents() []*Agent {
	n.mu.Lock()
	live := make([]*Agent, 0, len(n.agents))
	for _, a := range n.agents {
		live = append(live, a)
	}
	n.mu.Unlock()
	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })
	return live
}

// Live returns the number of currently active agents.
func (n *AgentNetwork) Live() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.agents)
}

// Removed returns the retained list of removed agents.
func (n *AgentNetwork) Removed() []*Agent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Agent, len(n.removed))
	copy(out, n.removed)
	return out
}

// Invalid returns every currently live agent in the Invalid state, i.e.
// those SyncGlobalData's relocation pass could not place on the road
// network. The caller (run orchestrator)
// is expected to queue these for removal and delete their pending tasks.
func (n *AgentNetwork) Invalid() []*Agent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []*Agent
	for _, a := range n.agents {
		if a.State == Invalid {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
