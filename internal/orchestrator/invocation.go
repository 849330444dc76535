package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/openpass-sim/kernel/internal/agent"
	"github.com/openpass-sim/kernel/internal/binding"
	"github.com/openpass-sim/kernel/internal/components/driverreaction"
	"github.com/openpass-sim/kernel/internal/components/trajectoryfollower"
	"github.com/openpass-sim/kernel/internal/config"
	"github.com/openpass-sim/kernel/internal/dataflow"
	"github.com/openpass-sim/kernel/internal/datastore"
	"github.com/openpass-sim/kernel/internal/events"
	"github.com/openpass-sim/kernel/internal/networks"
	"github.com/openpass-sim/kernel/internal/networks/eventdetect"
	"github.com/openpass-sim/kernel/internal/networks/spawn"
	"github.com/openpass-sim/kernel/internal/scheduler"
	"github.com/openpass-sim/kernel/internal/signal"
	"github.com/openpass-sim/kernel/internal/stochastics"
	"github.com/openpass-sim/kernel/internal/world"
)

// invocation holds everything scoped to one run of the scenario: the
// fresh agent/event/spawn networks plus the task-building glue that
// turns them into scheduler tasks.
type invocation struct {
	index int
	rng   *stochastics.Default

	agents       *agent.AgentNetwork
	eventNet     *events.EventNetwork
	spawnNet     *spawn.Network
	detectNet    *eventdetect.Network
	manipulators []events.Manipulator

	sched *scheduler.Scheduler
	tb    scheduler.TaskBuilder

	store *datastore.Store
	world *world.World
	orch  *Orchestrator

	lastFields map[int64]map[string]interface{}
}

// bootstrap is the scheduler's one-shot pre-run task: it seeds the scenario's
// statically declared entities, then lets spawn-point libraries add
// their own pre-run agents.
func (inv *invocation) bootstrap(now time.Duration) error {
	if err := inv.spawnScenarioEntities(now); err != nil {
		return err
	}
	if err := inv.spawnNet.TriggerPreRunSpawnPoints(); err != nil {
		return fmt.Errorf("bootstrap: pre-run spawn: %w", err)
	}
	return inv.consumeNewAgents(now)
}

// spawnScenarioEntities builds one agent per config.ScenarioConfig entity,
// each component resolved from the binding registry under the Model
// category using the entity's per-component scheduling.
func (inv *invocation) spawnScenarioEntities(now time.Duration) error {
	for _, e := range inv.orch.cfg.Scenario.Entities {
		libs := make([]config.LibraryDescriptor, 0, len(e.Components))
		for name := range e.Components {
			libs = append(libs, config.LibraryDescriptor{Name: name, Args: e.ComponentArgs[name]})
		}
		if err := inv.spawnAgent(now, categoryFromString(e.Category), world.Pose{}, world.BoundingBox{Length: 4.5, Width: 1.8, Height: 1.5}, 2.0, libs, e.Components, e.Channels); err != nil {
			return fmt.Errorf("spawn entity %s: %w", e.Name, err)
		}
	}
	return nil
}

func categoryFromString(s string) agent.Category {
	switch s {
	case "ego":
		return agent.Ego
	case "common":
		return agent.Common
	default:
		return agent.Scenario
	}
}

// updateAgents is the run loop's UpdateAgents step, invoked right after the common
// tasks (which include the runtime spawn trigger that filled the spawn
// queue) and before the non-recurring/recurring agent task slots.
func (inv *invocation) updateAgents(now time.Duration) error {
	if err := inv.consumeNewAgents(now); err != nil {
		return err
	}
	inv.dropInvalidAgents()
	return nil
}

func (inv *invocation) consumeNewAgents(now time.Duration) error {
	for _, req := range inv.spawnNet.ConsumeNewAgents() {
		if err := inv.spawnAgent(now, agent.Category(req.Category), req.InitialPose, req.InitialBox, req.DistanceReferencePointToLeadingEdge, req.ComponentLibraries, req.Components, req.Channels); err != nil {
			return err
		}
	}
	return nil
}

// dropInvalidAgents queues removal and deletes pending tasks for any
// agent SyncGlobalData's relocation pass marked Invalid this tick.
func (inv *invocation) dropInvalidAgents() {
	invalid := inv.agents.Invalid()
	if len(invalid) == 0 {
		return
	}
	ids := make([]int64, len(invalid))
	for i, a := range invalid {
		ids[i] = a.ID
		inv.agents.QueueAgentRemove(a)
	}
	inv.sched.DeleteAgentTasks(ids)
}

// finalize is the scheduler's one-shot post-loop task. The kernel itself
// persists nothing; this simply records the invocation's closing
// agent/event counts as a static record for the post-run report
// (internal/orchestrator/report).
func (inv *invocation) finalize(now time.Duration) error {
	inv.store.PutStatic(fmt.Sprintf("invocation.%d.finalAgentCount", inv.index), inv.agents.Live(), true)
	inv.store.PutStatic(fmt.Sprintf("invocation.%d.finalEventCount", inv.index), len(inv.eventNet.Active()), true)
	return nil
}

// isEndCondition reports a clean scenario end: a scenario-end event
// posted by any detector or manipulator terminates the invocation ahead
// of scenario.endTime, without counting as a failure.
func (inv *invocation) isEndCondition(now time.Duration) bool {
	return len(inv.eventNet.ActiveOfKind("scenario-end")) > 0
}

// triggerRuntimeSpawn is the recurring Spawning-phase task.
func (inv *invocation) triggerRuntimeSpawn(now time.Duration) error {
	return inv.spawnNet.TriggerRuntimeSpawnPoints(now.Milliseconds())
}

// publishGlobalData is the highest-priority Pre-agent task:
// it emits every live agent's fixed key set to the data store and keeps
// the per-tick field maps observationUpdate forwards downstream.
func (inv *invocation) publishGlobalData(now time.Duration) error {
	sink := &cyclicSink{store: inv.store, time: now, fields: map[int64]map[string]interface{}{}}
	inv.agents.PublishGlobalData(sink)
	inv.lastFields = sink.fields
	inv.store.PutAcyclic(now, 0, "summary.agentCount", inv.agents.Live())
	return nil
}

// runDetectors is the middle-priority Pre-agent task.
func (inv *invocation) runDetectors(now time.Duration) error {
	return inv.detectNet.RunDetectors(inv.eventNet, now.Milliseconds())
}

// runManipulators is the lowest-priority Pre-agent task.
func (inv *invocation) runManipulators(now time.Duration) error {
	if err := events.RunManipulators(inv.eventNet, inv.manipulators); err != nil {
		return err
	}
	inv.store.PutAcyclic(now, 0, "summary.eventCount", len(inv.eventNet.Active()))
	return nil
}

// collisionWorkers bounds the worker pool of the per-tick collision
// sweep; the pool joins inside worldSync, so the scheduler's ordering
// rules never observe it.
const collisionWorkers = 4

// worldSync is the higher-priority Synchronize task: drains the deferred
// agent update/remove queues, re-localizes every still-live agent, then
// sweeps the relocated fleet for bounding-box collisions and publishes
// one collision event per overlapping pair.
func (inv *invocation) worldSync(now time.Duration) error {
	inv.agents.SyncGlobalData(inv.world.Localizer)

	for _, pair := range predictCollisions(context.Background(), inv.agents.Agents(), collisionWorkers) {
		inv.eventNet.Publish(events.Event{
			Time:         now,
			SourceName:   "world-sync",
			Kind:         "collision",
			ActingAgents: []int64{pair.A.ID, pair.B.ID},
		})
	}
	return nil
}

// observationUpdate is the lowest-priority Synchronize task — it always
// runs last in its slot — forwarding this tick's published
// fields to every instantiated observation module.
func (inv *invocation) observationUpdate(now time.Duration) error {
	return networks.RunHooks(inv.orch.observation, func(h networks.Hooked) error {
		return h.SlaveUpdateHook(now.Milliseconds(), inv.lastFields)
	})
}

// spawnAgent instantiates one agent's dataflow components through the
// binding registry, wires it into the agent network, relocates it once,
// and schedules its component tasks at spawnTick.
func (inv *invocation) spawnAgent(spawnTick time.Duration, category agent.Category, pose world.Pose, box world.BoundingBox, distanceRefToLeadingEdge float64, libs []config.LibraryDescriptor, scheds map[string]config.ComponentScheduling, channels []config.ChannelConfig) error {
	id := inv.orch.nextID()

	comps, err := inv.buildComponents(id, libs, scheds)
	if err != nil {
		return fmt.Errorf("agent %d: %w", id, err)
	}
	if err := wireChannels(comps, channels); err != nil {
		return fmt.Errorf("agent %d: %w", id, err)
	}

	a := &agent.Agent{
		ID:       id,
		Category: category,
		Components: comps,
		Object: &world.MovingObject{
			ID:                                  id,
			Pose:                                pose,
			Box:                                 box,
			DistanceReferencePointToLeadingEdge: distanceRefToLeadingEdge,
		},
	}
	if err := inv.agents.AddAgent(a); err != nil {
		return err
	}

	if err := a.Relocate(inv.world.Localizer); err != nil {
		// The relocation already marked the agent Invalid; the next
		// updateAgents pass will drop it.
		opsf("%v", err)
	}

	var recurring, nonRecurring []*scheduler.Task
	for _, c := range comps {
		comp := c
		trigger := func(t time.Duration) error {
			if err := comp.UpdateInputs(t); err != nil {
				return err
			}
			return comp.RunTrigger(t)
		}
		update := func(t time.Duration) error {
			if err := comp.UpdateOutputs(t); err != nil {
				return err
			}
			inv.queueDynamicsUpdate(a, comp)
			return nil
		}
		tasks := inv.tb.CreateAgentComponentTasks(id, comp.Name, comp.IsInit, comp.CycleTime, comp.OffsetTime, comp.ResponseTime, comp.Priority, trigger, update)
		if comp.IsInit {
			nonRecurring = append(nonRecurring, tasks...)
		} else {
			recurring = append(recurring, tasks...)
		}
	}
	if len(recurring) > 0 {
		inv.sched.ScheduleNewRecurringTasks(spawnTick, recurring)
	}
	if len(nonRecurring) > 0 {
		inv.sched.ScheduleNewNonRecurringTasks(spawnTick, nonRecurring)
	}
	diagf("agent %d spawned (category=%d, %d components)", id, category, len(comps))
	return nil
}

// queueDynamicsUpdate carries a component's freshly published dynamics
// signal over to the agent's world object, deferred to the synchronize
// phase like every other agent-state mutation. Components without a
// dynamics output are left alone.
func (inv *invocation) queueDynamicsUpdate(a *agent.Agent, comp *dataflow.Component) {
	if !comp.IsDynamics {
		return
	}
	for _, port := range comp.Outputs {
		sig, ok := port.Buffer.Load()
		if !ok {
			continue
		}
		dyn, ok := sig.(signal.Dynamics)
		if !ok {
			continue
		}
		inv.agents.QueueAgentUpdate(func() {
			obj := a.Object
			obj.Pose.X = dyn.X
			obj.Pose.Y = dyn.Y
			obj.Pose.Yaw = dyn.Yaw
			obj.YawRate = dyn.YawRate
			obj.Velocity = dyn.Velocity
			obj.Acceleration = dyn.Acceleration
			a.Odometer += dyn.TravelDistance
		})
		return
	}
}

// buildComponents resolves one Model binding per descriptor and wires a
// fresh dataflow.Component for agentID over it.
func (inv *invocation) buildComponents(agentID int64, libs []config.LibraryDescriptor, scheds map[string]config.ComponentScheduling) ([]*dataflow.Component, error) {
	comps := make([]*dataflow.Component, 0, len(libs))
	for _, desc := range libs {
		b := inv.orch.registry.Resolve(binding.CategoryModel, desc.Name, desc.Path)
		info := &binding.RuntimeInfo{AgentID: agentID, FrameworkUpdateRateMs: inv.orch.cfg.FrameworkUpdateRate.Milliseconds(), InvocationIndex: inv.index}

		impl, err := b.InstantiateNew(info, inv.orch.callbacks, inv.modelArgs(desc)...)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", desc.Name, err)
		}
		model, ok := impl.(dataflow.Model)
		if !ok {
			return nil, fmt.Errorf("component %s: library does not implement dataflow.Model", desc.Name)
		}

		c := dataflow.NewComponent(desc.Name, agentID, model)
		sched := scheds[desc.Name]
		if sched.CycleTime <= 0 {
			sched.CycleTime = inv.orch.cfg.FrameworkUpdateRate
		}
		c.AddOutput(0)
		c.IsInit = sched.IsInit
		c.IsDynamics = sched.IsDynamics
		c.Priority = sched.Priority
		c.CycleTime = sched.CycleTime
		c.OffsetTime = sched.OffsetTime
		c.ResponseTime = sched.ResponseTime
		comps = append(comps, c)
	}
	return comps, nil
}

// wireChannels connects component ports per the entity's channel
// configuration. Every component already carries its primary output
// port (link 0); any other source link named by a channel is added on
// demand. An unknown component name is a configuration error.
func wireChannels(comps []*dataflow.Component, channels []config.ChannelConfig) error {
	if len(channels) == 0 {
		return nil
	}
	byName := make(map[string]*dataflow.Component, len(comps))
	for _, c := range comps {
		byName[c.Name] = c
	}
	for _, ch := range channels {
		src, ok := byName[ch.Source]
		if !ok {
			return fmt.Errorf("channel: unknown source component %q", ch.Source)
		}
		tgt, ok := byName[ch.Target]
		if !ok {
			return fmt.Errorf("channel: unknown target component %q", ch.Target)
		}
		out, ok := src.Outputs[ch.SourceLink]
		if !ok {
			out = src.AddOutput(ch.SourceLink)
		}
		in, ok := tgt.Inputs[ch.TargetLink]
		if !ok {
			in = tgt.AddInput(ch.TargetLink)
		}
		dataflow.Connect(out, in)
	}
	return nil
}

// modelArgs builds the category-specific CreateInstance args for one
// component descriptor. The shipped model libraries each expect a typed
// Config assembled from the descriptor's Args bag; anything else
// receives the invocation's stochastics source.
func (inv *invocation) modelArgs(desc config.LibraryDescriptor) []interface{} {
	switch desc.Name {
	case "driverreaction":
		return []interface{}{driverreactionConfig(desc.Args, inv.orch.cfg.FrameworkUpdateRate), inv.rng}
	case "trajectoryfollower":
		return []interface{}{trajectoryfollower.ConfigFromArgs(desc.Args, inv.orch.cfg.FrameworkUpdateRate)}
	default:
		return []interface{}{inv.rng}
	}
}

func driverreactionConfig(args map[string]interface{}, frameworkRate time.Duration) driverreaction.Config {
	return driverreaction.Config{
		InitialPerceptionTime: driverreaction.DistributionEntry{
			Mean:   argFloat(args, "initialPerceptionTimeMean", 1.0),
			StdDev: argFloat(args, "initialPerceptionTimeStdDev", 0.2),
			Min:    argFloat(args, "initialPerceptionTimeMin", 0.2),
			Max:    argFloat(args, "initialPerceptionTimeMax", 3.0),
		},
		PerceptionLatency: driverreaction.DistributionEntry{
			Mean:   argFloat(args, "perceptionLatencyMean", 0.3),
			StdDev: argFloat(args, "perceptionLatencyStdDev", 0.05),
			Min:    argFloat(args, "perceptionLatencyMin", 0.1),
			Max:    argFloat(args, "perceptionLatencyMax", 1.0),
		},
		EgoLaneID:               int64(argFloat(args, "egoLaneId", -1)),
		DesiredVelocity:         argFloat(args, "desiredVelocity", 13.9),
		MinFollowGapMeters:      argFloat(args, "minFollowGapMeters", 10),
		ConflictThresholdMeters: argFloat(args, "conflictThresholdMeters", 5),
		CycleTime:               frameworkRate,
	}
}

func argFloat(args map[string]interface{}, key string, def float64) float64 {
	v, ok := args[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return def
	}
}

// cyclicSink adapts datastore.Store to agent.GlobalDataSink, timestamping
// every write with the current tick and
// also collecting the same values into a per-tick field map for the
// observation hook.
type cyclicSink struct {
	store  *datastore.Store
	time   time.Duration
	fields map[int64]map[string]interface{}
}

func (s *cyclicSink) PutCyclic(agentID int64, key string, value interface{}) {
	s.store.PutCyclic(s.time, agentID, key, value)
	if s.fields[agentID] == nil {
		s.fields[agentID] = map[string]interface{}{}
	}
	s.fields[agentID][key] = value
}
