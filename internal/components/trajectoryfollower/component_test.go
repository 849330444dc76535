package trajectoryfollower_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/components/trajectoryfollower"
	"github.com/openpass-sim/kernel/internal/signal"
)

func newFollower(t *testing.T, cycle time.Duration, points []trajectoryfollower.TrajectoryPoint) *trajectoryfollower.Component {
	t.Helper()
	return trajectoryfollower.New(trajectoryfollower.Config{Trajectory: points, CycleTime: cycle})
}

func dynamicsAt(t *testing.T, c *trajectoryfollower.Component, now time.Duration) signal.Dynamics {
	t.Helper()
	out, err := c.UpdateOutput(trajectoryfollower.LinkDynamics, now)
	require.NoError(t, err)
	dyn, ok := out.(signal.Dynamics)
	require.True(t, ok, "expected a Dynamics signal")
	return dyn
}

func requireDynamics(t *testing.T, got signal.Dynamics, x, y, yaw, yawRate, v, a, dist float64) {
	t.Helper()
	require.InDelta(t, x, got.X, 1e-9)
	require.InDelta(t, y, got.Y, 1e-9)
	require.InDelta(t, yaw, got.Yaw, 1e-9)
	require.InDelta(t, yawRate, got.YawRate, 1e-9)
	require.InDelta(t, v, got.Velocity, 1e-9)
	require.InDelta(t, a, got.Acceleration, 1e-9)
	require.InDelta(t, dist, got.TravelDistance, 1e-9)
}

func TestLinearTrajectoryWithoutInterpolation(t *testing.T) {
	c := newFollower(t, 200*time.Millisecond, []trajectoryfollower.TrajectoryPoint{
		{TimeMs: 0, X: 0, Y: 0, Yaw: 0},
		{TimeMs: 200, X: 3, Y: 4, Yaw: 0.1},
		{TimeMs: 400, X: 9, Y: 12, Yaw: 0.4},
	})

	require.NoError(t, c.Trigger(0))
	requireDynamics(t, dynamicsAt(t, c, 0), 0, 0, 0, 0, 0, 0, 0)

	require.NoError(t, c.Trigger(200*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 200*time.Millisecond), 3, 4, 0.1, 0.5, 25.0, 125.0, 5.0)

	require.NoError(t, c.Trigger(400*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 400*time.Millisecond), 9, 12, 0.4, 1.5, 50.0, 125.0, 10.0)
}

func TestExternalAccelerationModulatesVelocity(t *testing.T) {
	c := newFollower(t, 200*time.Millisecond, []trajectoryfollower.TrajectoryPoint{
		{TimeMs: 0, X: 10, Y: 10, Yaw: 0},
		{TimeMs: 200, X: 13, Y: 14, Yaw: 0.2},
		{TimeMs: 400, X: 15, Y: 14, Yaw: 0.4},
		{TimeMs: 600, X: 15, Y: 16, Yaw: 0.6},
		{TimeMs: 800, X: 17, Y: 16, Yaw: 0.8},
	})

	require.NoError(t, c.Trigger(0))
	requireDynamics(t, dynamicsAt(t, c, 0), 10, 10, 0, 0, 0, 0, 0)

	require.NoError(t, c.Trigger(200*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 200*time.Millisecond), 13, 14, 0.2, 1.0, 25.0, 125.0, 5.0)

	brake := signal.Acceleration{Value: -50.0, State: signal.DynamicsEnabled}
	require.NoError(t, c.UpdateInput(trajectoryfollower.LinkAcceleration, brake, 200*time.Millisecond))
	require.NoError(t, c.Trigger(400*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 400*time.Millisecond), 15, 15, 0.5, 1.5, 15.0, -50.0, 3.0)

	require.NoError(t, c.UpdateInput(trajectoryfollower.LinkAcceleration, brake, 400*time.Millisecond))
	require.NoError(t, c.Trigger(600*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 600*time.Millisecond), 15, 16, 0.6, 0.5, 5.0, -50.0, 1.0)

	coast := signal.Acceleration{Value: 0, State: signal.DynamicsEnabled}
	require.NoError(t, c.UpdateInput(trajectoryfollower.LinkAcceleration, coast, 600*time.Millisecond))
	require.NoError(t, c.Trigger(800*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 800*time.Millisecond), 16, 16, 0.7, 0.5, 5.0, 0, 1.0)
	require.Equal(t, signal.DynamicsEnabled, c.State())
}

func TestDisablesWhenVelocityDropsToZero(t *testing.T) {
	c := newFollower(t, 200*time.Millisecond, []trajectoryfollower.TrajectoryPoint{
		{TimeMs: 0, X: 10, Y: 10, Yaw: 0},
		{TimeMs: 200, X: 13, Y: 14, Yaw: 0.2},
		{TimeMs: 400, X: 15, Y: 14, Yaw: 0.4},
		{TimeMs: 600, X: 15, Y: 16, Yaw: 0.6},
		{TimeMs: 800, X: 17, Y: 16, Yaw: 0.8},
	})
	brake := signal.Acceleration{Value: -50.0, State: signal.DynamicsEnabled}

	require.NoError(t, c.Trigger(0))
	require.NoError(t, c.Trigger(200*time.Millisecond))
	require.NoError(t, c.UpdateInput(trajectoryfollower.LinkAcceleration, brake, 200*time.Millisecond))
	require.NoError(t, c.Trigger(400*time.Millisecond))
	require.NoError(t, c.UpdateInput(trajectoryfollower.LinkAcceleration, brake, 400*time.Millisecond))
	require.NoError(t, c.Trigger(600*time.Millisecond))
	require.NoError(t, c.UpdateInput(trajectoryfollower.LinkAcceleration, brake, 600*time.Millisecond))
	require.NoError(t, c.Trigger(800*time.Millisecond))

	require.Equal(t, signal.DynamicsDisabled, c.State())
	require.Equal(t, signal.DynamicsDisabled, dynamicsAt(t, c, 800*time.Millisecond).State)
}

func TestDisablesAfterEndOfTrajectory(t *testing.T) {
	c := newFollower(t, 100*time.Millisecond, []trajectoryfollower.TrajectoryPoint{
		{TimeMs: 0, X: 0, Y: 0, Yaw: 0},
		{TimeMs: 100, X: 0, Y: 2, Yaw: 0.1},
	})

	require.NoError(t, c.Trigger(0))
	require.NoError(t, c.Trigger(100*time.Millisecond))
	require.Equal(t, signal.DynamicsEnabled, c.State())

	require.NoError(t, c.Trigger(200*time.Millisecond))
	require.Equal(t, signal.DynamicsDisabled, c.State())
	require.Equal(t, signal.DynamicsDisabled, dynamicsAt(t, c, 200*time.Millisecond).State)
}

func TestMultipleTimestepsWithinTwoCoordinates(t *testing.T) {
	c := newFollower(t, 100*time.Millisecond, []trajectoryfollower.TrajectoryPoint{
		{TimeMs: 0, X: 0, Y: 0, Yaw: 0},
		{TimeMs: 300, X: 9, Y: 0, Yaw: 0},
	})

	require.NoError(t, c.Trigger(0))
	requireDynamics(t, dynamicsAt(t, c, 0), 0, 0, 0, 0, 0, 0, 0)

	require.NoError(t, c.Trigger(100*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 100*time.Millisecond), 3, 0, 0, 0, 30.0, 300.0, 3.0)

	require.NoError(t, c.Trigger(200*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 200*time.Millisecond), 6, 0, 0, 0, 30.0, 0, 3.0)

	brake := signal.Acceleration{Value: -150.0, State: signal.DynamicsEnabled}
	require.NoError(t, c.UpdateInput(trajectoryfollower.LinkAcceleration, brake, 300*time.Millisecond))
	require.NoError(t, c.Trigger(300*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 300*time.Millisecond), 7.5, 0, 0, 0, 15.0, -150.0, 1.5)

	idle := signal.Acceleration{Value: 0, State: signal.DynamicsDisabled}
	require.NoError(t, c.UpdateInput(trajectoryfollower.LinkAcceleration, idle, 400*time.Millisecond))
	require.NoError(t, c.Trigger(400*time.Millisecond))
	requireDynamics(t, dynamicsAt(t, c, 400*time.Millisecond), 9, 0, 0, 0, 15.0, 0, 1.5)
}
