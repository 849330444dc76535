package agent

import (
	"fmt"

	"github.com/openpass-sim/kernel/internal/dataflow"
	"github.com/openpass-sim/kernel/internal/world"
)

// State is an agent's lifecycle state.
type State int

const (
	Pending State = iota
	Active
	Invalid
	Removed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Active:
		return "active"
	case Invalid:
		return "invalid"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Category classifies an agent.
type Category int

const (
	Ego Category = iota
	Scenario
	Common
)

// Agent is one participant of a simulation run: a stable id, a category,
// a lifecycle state, an ordered set of dataflow components, and a world
// object whose pose/box drives localization.
type Agent struct {
	ID       int64
	Category Category
	State    State

	Components []*dataflow.Component
	Object     *world.MovingObject

	Steering       float64
	Odometer       float64
	FrontAgentID   *int64
	SecondaryLanes []world.LaneID
}

// Relocate re-runs localization for the agent's current pose/box and
// caches the result on its world object. Returns an error (and marks the
// agent Invalid) when no reference point could be found.
func (a *Agent) Relocate(lz *world.Localizer) error {
	pos := lz.Locate(a.ID, a.Object.Pose, a.Object.Box, a.Object.DistanceReferencePointToLeadingEdge)
	a.Object.Position = pos
	if !pos.IsOnRoute() {
		a.State = Invalid
		return fmt.Errorf("agent %d: localization failed, no reference point", a.ID)
	}
	return nil
}
