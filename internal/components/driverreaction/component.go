package driverreaction

import (
	"time"

	"github.com/openpass-sim/kernel/internal/signal"
)

// Input/output link ids this component wires through
// internal/dataflow.Component.AddInput/AddOutput.
const (
	LinkPerception = 0 // input: signal.PerceptionFrame
	LinkLateral    = 0 // output: signal.Lateral (target lane expressed as a curvature/lane hint)
	LinkDynamics   = 1 // output: signal.Dynamics (target velocity only; position fields left zero)
)

// Config holds the per-instance parameters a scenario's component entry
// supplies.
type Config struct {
	InitialPerceptionTime   DistributionEntry
	PerceptionLatency       DistributionEntry
	EgoLaneID               int64
	DesiredVelocity         float64
	MinFollowGapMeters      float64
	ConflictThresholdMeters float64
	CycleTime               time.Duration
}

// Component implements dataflow.Model: it buffers incoming perception
// frames through a ReactionTime delay, then runs the interpreter family
// to decide a target lane and velocity.
type Component struct {
	cfg Config
	rt  *ReactionTime

	pendingPerception signal.PerceptionFrame
	decision          Interpretation
}

// New constructs a Component, drawing this instance's reaction time from
// rng.
func New(cfg Config, rng RandomSource) *Component {
	return &Component{
		cfg: cfg,
		rt:  NewReactionTime(cfg.InitialPerceptionTime, cfg.PerceptionLatency, cfg.CycleTime, rng),
	}
}

// UpdateInput accepts the current tick's perception frame on
// LinkPerception; any other link id is ignored (dataflow.Model contract).
func (c *Component) UpdateInput(linkID int, in signal.Signal, t time.Duration) error {
	if linkID != LinkPerception {
		return nil
	}
	frame, ok := in.(signal.PerceptionFrame)
	if !ok {
		return nil
	}
	c.pendingPerception = frame
	return nil
}

// Trigger runs the perception→interpretation→decision pipeline for this
// tick: push the pending frame into the reaction-time buffer, pull what
// has cleared the delay, then score it with the interpreter family.
func (c *Component) Trigger(t time.Duration) error {
	c.rt.Update(c.pendingPerception.Objects)
	c.pendingPerception = signal.PerceptionFrame{}

	perceived := c.rt.PerceivedAgents()
	followDist, hasLeader := FollowingDistance(c.cfg.EgoLaneID, perceived)
	risk := CollisionRisk(perceived)
	conflict := ConflictSituation(c.cfg.EgoLaneID, perceived, c.cfg.ConflictThresholdMeters)
	targetLane := TargetLane(c.cfg.EgoLaneID, followDist, hasLeader, c.cfg.MinFollowGapMeters, perceived)
	targetVelocity := TargetVelocity(c.cfg.DesiredVelocity, hasLeader, followDist, risk)

	c.decision = Interpretation{
		FollowingDistance:   followDist,
		HasFollowingLeader:  hasLeader,
		CollisionRisk:       risk,
		InConflictSituation: conflict,
		TargetLaneID:        targetLane,
		TargetVelocity:      targetVelocity,
	}
	return nil
}

// UpdateOutput publishes the lane decision on LinkLateral and the
// velocity decision on LinkDynamics (dataflow.Model contract: returning
// nil means "no new output this call", used here for any other link id).
func (c *Component) UpdateOutput(linkID int, t time.Duration) (signal.Signal, error) {
	switch linkID {
	case LinkLateral:
		return signal.Lateral{CurvatureTarget: float64(c.decision.TargetLaneID - c.cfg.EgoLaneID)}, nil
	case LinkDynamics:
		return signal.Dynamics{Velocity: c.decision.TargetVelocity}, nil
	default:
		return nil, nil
	}
}

// Decision exposes the most recent tick's interpretation, used by tests
// and by the manipulator pipeline to observe without re-deriving state.
func (c *Component) Decision() Interpretation {
	return c.decision
}
