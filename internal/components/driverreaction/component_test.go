package driverreaction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/components/driverreaction"
	"github.com/openpass-sim/kernel/internal/signal"
)

// fixedRandom returns the distribution mean for every draw, so the
// sampled perception time and latency are exactly the configured means.
type fixedRandom struct{}

func (fixedRandom) GetLogNormalDistributed(mean, stdDev float64) float64 { return mean }

func immediateConfig() driverreaction.Config {
	return driverreaction.Config{
		InitialPerceptionTime:   driverreaction.DistributionEntry{},
		PerceptionLatency:       driverreaction.DistributionEntry{},
		EgoLaneID:               -1,
		DesiredVelocity:         20,
		MinFollowGapMeters:      10,
		ConflictThresholdMeters: 5,
		CycleTime:               100 * time.Millisecond,
	}
}

func TestReactionTimeDelaysPerception(t *testing.T) {
	rt := driverreaction.NewReactionTime(
		driverreaction.DistributionEntry{Mean: 0.2, StdDev: 0.01, Min: 0.2, Max: 0.2},
		driverreaction.DistributionEntry{},
		100*time.Millisecond,
		fixedRandom{},
	)
	obj := signal.SensorDriverSummary{ObjectID: 9, LaneID: -1, RelativeX: 20}

	rt.Update([]signal.SensorDriverSummary{obj})
	require.Empty(t, rt.PerceivedAgents(), "not yet past the perception time")

	rt.Update([]signal.SensorDriverSummary{obj})
	require.Empty(t, rt.PerceivedAgents())

	rt.Update([]signal.SensorDriverSummary{obj})
	perceived := rt.PerceivedAgents()
	require.Len(t, perceived, 1)
	require.Equal(t, 9, perceived[0].ObjectID)
}

func TestReactionTimeZeroDelayPerceivesImmediately(t *testing.T) {
	rt := driverreaction.NewReactionTime(
		driverreaction.DistributionEntry{},
		driverreaction.DistributionEntry{},
		100*time.Millisecond,
		fixedRandom{},
	)
	rt.Update([]signal.SensorDriverSummary{{ObjectID: 1, LaneID: -1, RelativeX: 15}})
	require.Len(t, rt.PerceivedAgents(), 1)
}

func TestFollowingDistancePicksNearestLeader(t *testing.T) {
	agents := []signal.SensorDriverSummary{
		{ObjectID: 1, LaneID: -1, RelativeX: 30},
		{ObjectID: 2, LaneID: -1, RelativeX: 12},
		{ObjectID: 3, LaneID: -1, RelativeX: -5}, // behind ego
		{ObjectID: 4, LaneID: -2, RelativeX: 3},  // other lane
	}
	dist, found := driverreaction.FollowingDistance(-1, agents)
	require.True(t, found)
	require.Equal(t, 12.0, dist)
}

func TestTargetLaneChangesWhenLeaderTooClose(t *testing.T) {
	agents := []signal.SensorDriverSummary{
		{ObjectID: 1, LaneID: -1, RelativeX: 4},
	}
	lane := driverreaction.TargetLane(-1, 4, true, 10, agents)
	require.NotEqual(t, int64(-1), lane, "a clear adjacent lane should be recommended")

	// With the adjacent lanes also occupied, stay put.
	crowded := append(agents,
		signal.SensorDriverSummary{ObjectID: 2, LaneID: -2, RelativeX: 2},
		signal.SensorDriverSummary{ObjectID: 3, LaneID: 1, RelativeX: 2},
	)
	require.Equal(t, int64(-1), driverreaction.TargetLane(-1, 4, true, 10, crowded))
}

func TestComponentDecidesTargetVelocityFromPerception(t *testing.T) {
	c := driverreaction.New(immediateConfig(), fixedRandom{})

	frame := signal.PerceptionFrame{Objects: []signal.SensorDriverSummary{
		{ObjectID: 5, LaneID: -1, RelativeX: 8, RelativeV: 0},
	}}
	require.NoError(t, c.UpdateInput(driverreaction.LinkPerception, frame, 0))
	require.NoError(t, c.Trigger(0))

	out, err := c.UpdateOutput(driverreaction.LinkDynamics, 0)
	require.NoError(t, err)
	dyn, ok := out.(signal.Dynamics)
	require.True(t, ok)
	require.Less(t, dyn.Velocity, 20.0, "a close leader must cap the target velocity")

	decision := c.Decision()
	require.True(t, decision.HasFollowingLeader)
	require.Equal(t, 8.0, decision.FollowingDistance)
}

func TestComponentCruisesAtDesiredVelocityWhenAlone(t *testing.T) {
	c := driverreaction.New(immediateConfig(), fixedRandom{})

	require.NoError(t, c.UpdateInput(driverreaction.LinkPerception, signal.PerceptionFrame{}, 0))
	require.NoError(t, c.Trigger(0))

	out, err := c.UpdateOutput(driverreaction.LinkDynamics, 0)
	require.NoError(t, err)
	dyn := out.(signal.Dynamics)
	require.Equal(t, 20.0, dyn.Velocity)
}
