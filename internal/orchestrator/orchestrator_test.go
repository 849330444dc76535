package orchestrator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/binding"
	"github.com/openpass-sim/kernel/internal/config"
	"github.com/openpass-sim/kernel/internal/datastore"
	"github.com/openpass-sim/kernel/internal/orchestrator"
	"github.com/openpass-sim/kernel/internal/scheduler"
	"github.com/openpass-sim/kernel/internal/world"

	_ "github.com/openpass-sim/kernel/internal/components/driverreaction"
	_ "github.com/openpass-sim/kernel/internal/components/trajectoryfollower"
	_ "github.com/openpass-sim/kernel/internal/stochastics"
)

// straightRoad mirrors internal/world/world_test.go's fixture: a
// two-lane, 100m straight road along the x axis, sampled every 10m.
func straightRoad() *world.RawScenery {
	mkLane := func(id world.LaneID, centerY float64) world.RawLane {
		var joints []world.GeometryJoint
		for s := 0.0; s <= 100; s += 10 {
			joints = append(joints, world.GeometryJoint{
				SOffset: s,
				Center:  world.Point2D{X: s, Y: centerY},
				Left:    world.Point2D{X: s, Y: centerY + 1.75},
				Right:   world.Point2D{X: s, Y: centerY - 1.75},
				Heading: 0,
			})
		}
		return world.RawLane{ID: id, Width: 3.5, Joints: joints}
	}
	return &world.RawScenery{
		Roads: []world.RawRoad{
			{
				ID: "R1",
				Sections: []world.RawSection{
					{SStart: 0, SEnd: 100, Lanes: []world.RawLane{mkLane(-1, -1.75), mkLane(1, 1.75)}},
				},
			},
		},
	}
}

func baseConfig() *config.Config {
	cfg := config.Default()
	cfg.FrameworkUpdateRate = 100 * time.Millisecond
	cfg.Scenario.EndTime = 500 * time.Millisecond
	cfg.Experiment.NumberOfInvocations = 2
	cfg.Experiment.RandomSeed = 7
	cfg.Scenario.Entities = []config.EntityConfig{
		{
			Name:     "ego",
			Category: "ego",
			Components: map[string]config.ComponentScheduling{
				"driverreaction": {CycleTime: 100 * time.Millisecond, Priority: 0},
			},
		},
	}
	return cfg
}

// TestRunExecutesEveryInvocation drives the full init→loop→finalize
// path: a scenario entity is spawned through the driverreaction model
// component, the scheduler drives it to scenario.endTime, and every
// invocation reports its own index and seed with no abort and no error.
func TestRunExecutesEveryInvocation(t *testing.T) {
	cfg := baseConfig()
	w, err := world.NewWorld(straightRoad())
	require.NoError(t, err)

	registry := binding.NewRegistry()
	store := datastore.New()
	orch := orchestrator.New(cfg, registry, w, store)

	success, results, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.True(t, success)
	require.Len(t, results, cfg.Experiment.NumberOfInvocations)

	for i, r := range results {
		require.Equal(t, i, r.Invocation)
		require.Equal(t, cfg.Experiment.RandomSeed+uint32(i), r.Seed)
		require.Equal(t, scheduler.AbortNone, r.AbortKind)
		require.NoError(t, r.Err)
		require.NotEmpty(t, r.InvocationID)
	}
}

// TestRunIsReproducibleAcrossInvocations checks that re-running with the
// same base seed and scenario produces the same per-invocation
// agent/event counts.
func TestRunIsReproducibleAcrossInvocations(t *testing.T) {
	cfg := baseConfig()
	cfg.Experiment.NumberOfInvocations = 1

	run := func() orchestrator.RunResult {
		w, err := world.NewWorld(straightRoad())
		require.NoError(t, err)
		registry := binding.NewRegistry()
		store := datastore.New()
		orch := orchestrator.New(cfg, registry, w, store)
		success, results, err := orch.Run(context.Background())
		require.NoError(t, err)
		require.True(t, success)
		require.Len(t, results, 1)
		return results[0]
	}

	first := run()
	second := run()
	require.Equal(t, first.AgentCount, second.AgentCount)
	require.Equal(t, first.EventCount, second.EventCount)
	require.Equal(t, first.AbortKind, second.AbortKind)
}

// An unresolvable observation library configured by name fails fast,
// before any invocation's loop runs.
func TestRunFailsWhenConfiguredLibraryMissing(t *testing.T) {
	cfg := baseConfig()
	cfg.Experiment.Libraries["observation"] = []config.LibraryDescriptor{{Name: "does-not-exist"}}

	w, err := world.NewWorld(straightRoad())
	require.NoError(t, err)
	registry := binding.NewRegistry()
	store := datastore.New()
	orch := orchestrator.New(cfg, registry, w, store)

	_, _, err = orch.Run(context.Background())
	require.Error(t, err)
}

// recorderObservation captures every per-tick field map the observation
// task forwards, so tests can assert on published agent telemetry.
type recorderObservation struct {
	mu     sync.Mutex
	frames []map[int64]map[string]interface{}
}

func (r *recorderObservation) SlavePreHook() error    { return nil }
func (r *recorderObservation) SlavePreRunHook() error { return nil }
func (r *recorderObservation) SlaveUpdateHook(timeMs int64, runResult interface{}) error {
	fields, ok := runResult.(map[int64]map[string]interface{})
	if !ok {
		return nil
	}
	copied := make(map[int64]map[string]interface{}, len(fields))
	for id, f := range fields {
		inner := make(map[string]interface{}, len(f))
		for k, v := range f {
			inner[k] = v
		}
		copied[id] = inner
	}
	r.mu.Lock()
	r.frames = append(r.frames, copied)
	r.mu.Unlock()
	return nil
}
func (r *recorderObservation) SlavePostRunHook(runResult interface{}) error { return nil }
func (r *recorderObservation) SlavePostHook() error                         { return nil }

// TestTrajectoryFollowerEntityMovesAgent runs a scenario entity whose
// trajectoryfollower component owns the agent's dynamics, and asserts
// the published positions advance along the configured trajectory.
func TestTrajectoryFollowerEntityMovesAgent(t *testing.T) {
	recorder := &recorderObservation{}
	binding.Register(binding.CategoryObservation, "recorder",
		func() string { return "test" },
		func(info *binding.RuntimeInfo, cb *binding.Callbacks, args ...interface{}) (interface{}, error) {
			return recorder, nil
		},
		func(impl interface{}) {},
	)

	cfg := baseConfig()
	cfg.Experiment.NumberOfInvocations = 1
	cfg.Experiment.Libraries["observation"] = []config.LibraryDescriptor{{Name: "recorder"}}
	cfg.Scenario.Entities = []config.EntityConfig{
		{
			Name:     "scripted",
			Category: "scenario",
			Components: map[string]config.ComponentScheduling{
				"trajectoryfollower": {CycleTime: 100 * time.Millisecond, IsDynamics: true},
			},
			ComponentArgs: map[string]map[string]interface{}{
				"trajectoryfollower": {
					"trajectory": []interface{}{
						map[string]interface{}{"timeMs": float64(0), "x": float64(0), "y": float64(0), "yaw": float64(0)},
						map[string]interface{}{"timeMs": float64(500), "x": float64(50), "y": float64(0), "yaw": float64(0)},
					},
				},
			},
		},
	}

	w, err := world.NewWorld(straightRoad())
	require.NoError(t, err)
	registry := binding.NewRegistry()
	store := datastore.New()
	orch := orchestrator.New(cfg, registry, w, store)

	success, results, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.True(t, success)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.NotEmpty(t, recorder.frames)

	var xs []float64
	for _, frame := range recorder.frames {
		for _, fields := range frame {
			if x, ok := fields["positionX"].(float64); ok {
				xs = append(xs, x)
			}
		}
	}
	require.NotEmpty(t, xs)
	require.Greater(t, xs[len(xs)-1], xs[0], "agent should advance along the trajectory")
}
