package trajectoryfollower

import (
	"math"
	"time"

	"github.com/openpass-sim/kernel/internal/signal"
)

// Input/output link ids this component wires through
// internal/dataflow.Component.AddInput/AddOutput.
const (
	LinkDynamics     = 0 // output: signal.Dynamics
	LinkAcceleration = 1 // input: signal.Acceleration
)

// TrajectoryPoint is one timed sample of the trajectory to follow.
type TrajectoryPoint struct {
	TimeMs int64   `json:"timeMs" yaml:"timeMs"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Yaw    float64 `json:"yaw" yaml:"yaw"`
}

// Config holds the per-instance parameters a scenario's component entry
// supplies.
type Config struct {
	Trajectory []TrajectoryPoint
	CycleTime  time.Duration
}

// Component implements dataflow.Model. It replays a world-coordinate
// trajectory at its cycle rate: each Trigger advances the vehicle to the
// trajectory position interpolated at the current time and derives the
// per-cycle dynamics (velocity, acceleration, yaw rate, distance
// traveled along the path).
// Once an Acceleration input arrives, the component switches to
// externally controlled motion: velocity integrates the requested
// acceleration and the vehicle advances by velocity*cycle along the
// trajectory's arc, ignoring the trajectory's own timestamps from then
// on. A velocity at or below zero, or running past the end of the
// trajectory in timed mode, disables the component; it never
// re-activates.
type Component struct {
	points []TrajectoryPoint
	cumArc []float64         // cumulative arc length up to points[i]
	cycle  time.Duration

	state signal.DynamicsState

	externallyControlled bool
	accelActing          bool
	accel                float64

	started  bool
	prevYaw  float64
	prevV    float64
	arcPos   float64
	prevTime time.Duration

	out signal.Dynamics
}

// New constructs a Component over cfg's trajectory.
func New(cfg Config) *Component {
	c := &Component{
		points: cfg.Trajectory,
		cycle:  cfg.CycleTime,
		state:  signal.DynamicsEnabled,
	}
	c.cumArc = make([]float64, len(c.points))
	for i := 1; i < len(c.points); i++ {
		c.cumArc[i] = c.cumArc[i-1] + segmentLength(c.points[i-1], c.points[i])
	}
	return c
}

// UpdateInput accepts an acceleration request on LinkAcceleration. The
// first acceleration received switches the component to externally
// controlled motion permanently; a Disabled sender keeps the mode but
// contributes zero acceleration.
func (c *Component) UpdateInput(linkID int, in signal.Signal, t time.Duration) error {
	if linkID != LinkAcceleration {
		return nil
	}
	acc, ok := in.(signal.Acceleration)
	if !ok {
		return nil
	}
	c.externallyControlled = true
	c.accelActing = acc.State == signal.DynamicsEnabled
	c.accel = acc.Value
	return nil
}

// Trigger advances the trajectory by one cycle.
func (c *Component) Trigger(t time.Duration) error {
	if c.state == signal.DynamicsDisabled || len(c.points) == 0 {
		c.disable()
		return nil
	}

	dt := c.cycle.Seconds()

	if !c.started {
		c.started = true
		pos := c.interpolateAtTime(t)
		c.out = signal.Dynamics{X: pos.X, Y: pos.Y, Yaw: pos.Yaw, YawRate: (pos.Yaw - c.prevYaw) / dt}
		c.prevYaw = pos.Yaw
		c.prevTime = t
		c.arcPos = c.arcAtTime(t)
		return nil
	}

	if c.externallyControlled {
		c.triggerExternal(dt)
	} else {
		c.triggerTimed(t, dt)
	}
	c.prevTime = t
	return nil
}

// triggerTimed follows the trajectory's own timestamps: the new pose is
// the trajectory interpolated at t, and the distance traveled is the arc
// length covered since the previous trigger.
func (c *Component) triggerTimed(t time.Duration, dt float64) {
	if t.Milliseconds() > c.points[len(c.points)-1].TimeMs {
		c.disable()
		return
	}
	pos := c.interpolateAtTime(t)
	arc := c.arcAtTime(t)
	dist := arc - c.arcPos
	v := dist / dt

	c.out = signal.Dynamics{
		X:              pos.X,
		Y:              pos.Y,
		Yaw:            pos.Yaw,
		YawRate:        (pos.Yaw - c.prevYaw) / dt,
		Velocity:       v,
		Acceleration:   (v - c.prevV) / dt,
		TravelDistance: dist,
	}
	c.arcPos = arc
	c.prevYaw = pos.Yaw
	c.prevV = v
}

// triggerExternal integrates the requested acceleration and advances
// along the trajectory's arc by the resulting per-cycle distance.
func (c *Component) triggerExternal(dt float64) {
	a := 0.0
	if c.accelActing {
		a = c.accel
	}
	v := c.prevV + a*dt
	if v <= 0 {
		c.disable()
		return
	}
	dist := v * dt
	c.arcPos = math.Min(c.arcPos+dist, c.cumArc[len(c.cumArc)-1])
	pos := c.interpolateAtArc(c.arcPos)

	c.out = signal.Dynamics{
		X:              pos.X,
		Y:              pos.Y,
		Yaw:            pos.Yaw,
		YawRate:        (pos.Yaw - c.prevYaw) / dt,
		Velocity:       v,
		Acceleration:   a,
		TravelDistance: dist,
	}
	c.prevYaw = pos.Yaw
	c.prevV = v
}

func (c *Component) disable() {
	c.state = signal.DynamicsDisabled
	c.out.Velocity = 0
	c.out.TravelDistance = 0
	c.out.State = signal.DynamicsDisabled
}

// UpdateOutput publishes the dynamics computed by the most recent
// Trigger on LinkDynamics.
func (c *Component) UpdateOutput(linkID int, t time.Duration) (signal.Signal, error) {
	if linkID != LinkDynamics {
		return nil, nil
	}
	return c.out, nil
}

// State exposes the component's lifecycle state.
func (c *Component) State() signal.DynamicsState {
	return c.state
}

type pose struct {
	X, Y, Yaw float64
}

// interpolateAtTime blends the two trajectory points neighboring t,
// clamping to the trajectory's ends.
func (c *Component) interpolateAtTime(t time.Duration) pose {
	ms := t.Milliseconds()
	pts := c.points
	if ms <= pts[0].TimeMs {
		return pose{pts[0].X, pts[0].Y, pts[0].Yaw}
	}
	last := pts[len(pts)-1]
	if ms >= last.TimeMs {
		return pose{last.X, last.Y, last.Yaw}
	}
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		if ms >= a.TimeMs && ms <= b.TimeMs {
			frac := float64(ms-a.TimeMs) / float64(b.TimeMs-a.TimeMs)
			return blend(a, b, frac)
		}
	}
	return pose{last.X, last.Y, last.Yaw}
}

// arcAtTime returns the distance along the trajectory's path at time t,
// summing whole segments and the fractional part of the segment t falls
// in.
func (c *Component) arcAtTime(t time.Duration) float64 {
	ms := t.Milliseconds()
	pts := c.points
	if ms <= pts[0].TimeMs {
		return 0
	}
	if ms >= pts[len(pts)-1].TimeMs {
		return c.cumArc[len(c.cumArc)-1]
	}
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		if ms >= a.TimeMs && ms <= b.TimeMs {
			frac := float64(ms-a.TimeMs) / float64(b.TimeMs-a.TimeMs)
			return c.cumArc[i] + frac*(c.cumArc[i+1]-c.cumArc[i])
		}
	}
	return c.cumArc[len(c.cumArc)-1]
}

// interpolateAtArc blends the two trajectory points neighboring the
// given distance along the path.
func (c *Component) interpolateAtArc(arc float64) pose {
	pts := c.points
	if arc <= 0 {
		return pose{pts[0].X, pts[0].Y, pts[0].Yaw}
	}
	last := pts[len(pts)-1]
	if arc >= c.cumArc[len(c.cumArc)-1] {
		return pose{last.X, last.Y, last.Yaw}
	}
	for i := 0; i+1 < len(pts); i++ {
		if arc >= c.cumArc[i] && arc <= c.cumArc[i+1] {
			span := c.cumArc[i+1] - c.cumArc[i]
			frac := 0.0
			if span > 0 {
				frac = (arc - c.cumArc[i]) / span
			}
			return blend(pts[i], pts[i+1], frac)
		}
	}
	return pose{last.X, last.Y, last.Yaw}
}

func blend(a, b TrajectoryPoint, frac float64) pose {
	return pose{
		X:   a.X + frac*(b.X-a.X),
		Y:   a.Y + frac*(b.Y-a.Y),
		Yaw: a.Yaw + frac*(b.Yaw-a.Yaw),
	}
}

func segmentLength(a, b TrajectoryPoint) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
