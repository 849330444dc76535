package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/openpass-sim/kernel/internal/agent"
	"github.com/openpass-sim/kernel/internal/binding"
	"github.com/openpass-sim/kernel/internal/config"
	"github.com/openpass-sim/kernel/internal/datastore"
	"github.com/openpass-sim/kernel/internal/events"
	"github.com/openpass-sim/kernel/internal/networks"
	"github.com/openpass-sim/kernel/internal/networks/eventdetect"
	"github.com/openpass-sim/kernel/internal/networks/spawn"
	"github.com/openpass-sim/kernel/internal/scheduler"
	"github.com/openpass-sim/kernel/internal/stochastics"
	"github.com/openpass-sim/kernel/internal/world"
	"github.com/openpass-sim/kernel/internal/world/navigation"
)

// RunResult is the per-invocation outcome passed to observation hooks as
// the opaque runResult argument and returned from Run
// for each invocation.
type RunResult struct {
	// InvocationID is a stable external correlation id for this
	// invocation's telemetry.
	InvocationID   string
	Invocation     int
	Seed           uint32
	EndTime        time.Duration
	IsEndCondition bool
	AbortKind      scheduler.AbortKind
	AgentCount     int
	RemovedCount   int
	EventCount     int
	Err            error
}

// Orchestrator drives one experiment: experiment.numberOfInvocations
// invocations of init → loop → finalize over a shared, immutable world.
type Orchestrator struct {
	cfg       *config.Config
	registry  *binding.Registry
	world     *world.World
	navCache  *navigation.Cache
	store     *datastore.Store
	callbacks *binding.Callbacks

	nextAgentID int64

	observation []interface{}

	// observationCollaborators are passed through to every observation
	// library's CreateInstance call as extra args, e.g. a *grpc.Server the grpcstream
	// library should register itself on.
	observationCollaborators []interface{}

	// sink is an optional durable-snapshot destination flushed at the end
	// of every invocation, before ClearRun drops the in-memory records.
	sink sinkFlusher
}

// sinkFlusher is the capability internal/datastore/sqlitesink.Sink
// satisfies; kept narrow here so the orchestrator package does not need
// to import sqlite/migrate machinery just to hold an optional reference.
type sinkFlusher interface {
	FlushAll(store *datastore.Store) error
}

// WithObservationCollaborators sets the extra CreateInstance args passed
// to every configured observation library. Returns the
// Orchestrator for chaining at construction time.
func (o *Orchestrator) WithObservationCollaborators(collaborators ...interface{}) *Orchestrator {
	o.observationCollaborators = collaborators
	return o
}

// WithSink attaches an optional durable-snapshot sink, flushed once per
// invocation just before ClearRun.
func (o *Orchestrator) WithSink(sink sinkFlusher) *Orchestrator {
	o.sink = sink
	return o
}

// New wires an Orchestrator over an already-built World. The caller
// constructs World from the scenery the (out-of-scope) importer parsed.
func New(cfg *config.Config, registry *binding.Registry, w *world.World, store *datastore.Store) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		registry: registry,
		world:    w,
		navCache: navigation.NewCache(w.Graph),
		store:    store,
		callbacks: &binding.Callbacks{
			Log: func(format string, args ...interface{}) { diagf(format, args...) },
		},
	}
}

func (o *Orchestrator) nextID() int64 {
	return atomic.AddInt64(&o.nextAgentID, 1)
}

// Run executes every invocation of the experiment and returns the
// overall success flag: the conjunction of each invocation's scheduler
// outcome and the single terminal FinalizeAll call.
func (o *Orchestrator) Run(ctx context.Context) (bool, []RunResult, error) {
	info := &binding.RuntimeInfo{FrameworkUpdateRateMs: o.cfg.FrameworkUpdateRate.Milliseconds()}

	observation, err := networks.Instantiate(o.registry, binding.CategoryObservation, o.cfg.Experiment.Libraries["observation"], info, o.callbacks, o.observationCollaborators...)
	if err != nil {
		return false, nil, fmt.Errorf("orchestrator: observation: %w", err)
	}
	o.observation = observation

	if err := networks.RunHooks(o.observation, func(h networks.Hooked) error { return h.SlavePreHook() }); err != nil {
		return false, nil, fmt.Errorf("orchestrator: observation SlavePreHook: %w", err)
	}

	results := make([]RunResult, 0, o.cfg.Experiment.NumberOfInvocations)
	bootstrapEverSucceeded := false

	for i := 0; i < o.cfg.Experiment.NumberOfInvocations; i++ {
		if ctx.Err() != nil {
			break
		}

		res := o.runInvocation(ctx, i)
		if res.AbortKind != scheduler.AbortInvocation || len(results) == 0 {
			bootstrapEverSucceeded = bootstrapEverSucceeded || res.AbortKind != scheduler.AbortInvocation
		}
		results = append(results, res)
		diagf("invocation %d (seed=%d) finished: abort=%v err=%v agents=%d events=%d",
			i, res.Seed, res.AbortKind, res.Err, res.AgentCount, res.EventCount)
	}

	finalizeErr := error(nil)
	if bootstrapEverSucceeded {
		finalizeErr = networks.RunHooks(o.observation, func(h networks.Hooked) error { return h.SlavePostHook() })
		if finalizeErr != nil {
			opsf("observation SlavePostHook: %v", finalizeErr)
		}
	}

	success := finalizeErr == nil
	for _, r := range results {
		if r.Err != nil {
			success = false
		}
	}
	return success, results, nil
}

// runInvocation runs the five init→loop→finalize steps for one
// invocation.
func (o *Orchestrator) runInvocation(ctx context.Context, i int) RunResult {
	seed := o.cfg.Experiment.RandomSeed + uint32(i)
	res := RunResult{InvocationID: uuid.NewString(), Invocation: i, Seed: seed}

	// Step 1: initialize stochastics.
	rngImpl, err := o.registry.Resolve(binding.CategoryStochastics, stochasticsLibraryName(o.cfg), "").
		Instantiate(&binding.RuntimeInfo{InvocationIndex: i, FrameworkUpdateRateMs: o.cfg.FrameworkUpdateRate.Milliseconds()}, o.callbacks)
	if err != nil {
		res.Err = fmt.Errorf("orchestrator: stochastics: %w", err)
		res.AbortKind = scheduler.AbortInvocation
		return res
	}
	rng, ok := rngImpl.(*stochastics.Default)
	if !ok {
		res.Err = fmt.Errorf("orchestrator: stochastics library does not provide *stochastics.Default")
		res.AbortKind = scheduler.AbortInvocation
		return res
	}
	rng.InitGenerator(seed)

	// Step 2: sample environment parameters.
	env := sampleEnvironment(o.cfg.Environment, rng)
	diagf("invocation %d environment: timeOfDay=%.2f visibility=%.1f friction=%.2f weather=%.2f",
		i, env.TimeOfDay, env.VisibilityDistance, env.Friction, env.Weather)

	// Step 3: observation.InitRun, spawn-point/event-detector/manipulator
	// networks, fresh event network.
	if err := networks.RunHooks(o.observation, func(h networks.Hooked) error { return h.SlavePreRunHook() }); err != nil {
		res.Err = fmt.Errorf("orchestrator: observation SlavePreRunHook: %w", err)
		res.AbortKind = scheduler.AbortInvocation
		return res
	}

	spawnInstances, err := networks.Instantiate(o.registry, binding.CategorySpawnPoint, o.cfg.Experiment.Libraries["spawn"],
		&binding.RuntimeInfo{InvocationIndex: i, FrameworkUpdateRateMs: o.cfg.FrameworkUpdateRate.Milliseconds()}, o.callbacks, rng)
	if err != nil {
		res.Err = fmt.Errorf("orchestrator: spawn points: %w", err)
		res.AbortKind = scheduler.AbortInvocation
		return res
	}
	spawnPoints := make([]spawn.Point, 0, len(spawnInstances))
	for _, inst := range spawnInstances {
		if p, ok := inst.(spawn.Point); ok {
			spawnPoints = append(spawnPoints, p)
		}
	}
	spawnNet := spawn.NewNetwork(spawnPoints)

	detectInstances, err := networks.Instantiate(o.registry, binding.CategoryEventDetector, o.cfg.Experiment.Libraries["event-detector"],
		&binding.RuntimeInfo{InvocationIndex: i}, o.callbacks)
	if err != nil {
		res.Err = fmt.Errorf("orchestrator: event detectors: %w", err)
		res.AbortKind = scheduler.AbortInvocation
		return res
	}
	detectors := make([]eventdetect.Detector, 0, len(detectInstances))
	for _, inst := range detectInstances {
		if d, ok := inst.(eventdetect.Detector); ok {
			detectors = append(detectors, d)
		}
	}
	detectNet := eventdetect.NewNetwork(detectors)

	manipInstances, err := networks.Instantiate(o.registry, binding.CategoryManipulator, o.cfg.Experiment.Libraries["manipulator"],
		&binding.RuntimeInfo{InvocationIndex: i}, o.callbacks)
	if err != nil {
		res.Err = fmt.Errorf("orchestrator: manipulators: %w", err)
		res.AbortKind = scheduler.AbortInvocation
		return res
	}
	manipulators := make([]events.Manipulator, 0, len(manipInstances))
	for _, inst := range manipInstances {
		if m, ok := inst.(events.Manipulator); ok {
			manipulators = append(manipulators, m)
		}
	}

	eventNet := events.NewEventNetwork()
	agentNet := agent.NewAgentNetwork()
	sched := scheduler.New(o.cfg.FrameworkUpdateRate)
	tb := scheduler.TaskBuilder{FrameworkRate: o.cfg.FrameworkUpdateRate}

	inv := &invocation{
		index:     i,
		rng:       rng,
		agents:    agentNet,
		eventNet:  eventNet,
		spawnNet:  spawnNet,
		detectNet: detectNet,
		manipulators: manipulators,
		sched:     sched,
		tb:        tb,
		store:     o.store,
		world:     o.world,
		orch:      o,
	}

	// Step 4: run the scheduler over [0, scenario.endTime]. The common
	// tasks (spawning/pre-agent/synchronize) are registered once, up
	// front, at their framework cadence; agent tasks are added later as
	// bootstrap/updateAgents spawn agents.
	sched.ScheduleNewRecurringTasks(0, tb.CreateSpawningTasks(inv.triggerRuntimeSpawn))
	sched.ScheduleNewRecurringTasks(0, tb.CreatePreAgentTasks(inv.publishGlobalData, inv.runDetectors, inv.runManipulators))
	sched.ScheduleNewRecurringTasks(0, tb.CreateSynchronizeTasks(inv.worldSync, inv.observationUpdate))

	schedInv := scheduler.Invocation{
		Bootstrap: tb.CreateBootstrapTasks(inv.bootstrap),
		Finalize:  tb.CreateFinalizeTasks(inv.finalize),
		UpdateAgents: inv.updateAgents,
		IsEndCondition: inv.isEndCondition,
		ClearActiveEvents: eventNet.ClearActiveEvents,
	}
	if ctx != nil {
		schedInv.Stop = ctx.Done()
	}

	abortKind, runErr := sched.RunInvocation(schedInv, 0, o.cfg.Scenario.EndTime)
	res.AbortKind = abortKind
	res.Err = runErr
	res.EndTime = o.cfg.Scenario.EndTime
	res.AgentCount = agentNet.Live()
	res.RemovedCount = len(agentNet.Removed())
	res.EventCount = len(eventNet.Active())
	res.IsEndCondition = inv.isEndCondition(o.cfg.Scenario.EndTime)

	// Step 5: on success, FinalizeRun; always ClearRun.
	if runErr == nil {
		if hookErr := networks.RunHooks(o.observation, func(h networks.Hooked) error { return h.SlavePostRunHook(&res) }); hookErr != nil {
			opsf("observation SlavePostRunHook: %v", hookErr)
			if res.Err == nil {
				res.Err = hookErr
			}
		}
	}

	o.clearRun(eventNet, spawnNet)
	return res
}

// clearRun is the unconditional end-of-invocation cleanup: world reset,
// agent factory clear (the fresh per-invocation AgentNetwork simply goes
// out of scope), spawn/event clears, and dropping the accumulated
// datastore records for the invocation just finished.
func (o *Orchestrator) clearRun(eventNet *events.EventNetwork, spawnNet *spawn.Network) {
	if o.sink != nil {
		if err := o.sink.FlushAll(o.store); err != nil {
			opsf("sink flush: %v", err)
		}
	}
	o.world.Reset()
	o.navCache.Clear()
	eventNet.Clear()
	spawnNet.Clear()
	o.store.Clear()
}

func stochasticsLibraryName(cfg *config.Config) string {
	descs := cfg.Experiment.Libraries["stochastics"]
	if len(descs) == 0 {
		return "default"
	}
	return descs[0].Name
}
