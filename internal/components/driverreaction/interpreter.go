package driverreaction

import "github.com/openpass-sim/kernel/internal/signal"

// Interpretation is what the interpreter family produces for one tick:
// each field is scored by one interpreter function.
type Interpretation struct {
	FollowingDistance   float64
	HasFollowingLeader  bool
	CollisionRisk       float64
	InConflictSituation bool
	TargetLaneID        int64
	TargetVelocity      float64
}

// FollowingDistance scores the longitudinal gap to the closest
// same-lane, ahead-of-ego agent. Sharing a LaneID stands in for full
// lane topology, which SensorDriverSummary does not carry.
func FollowingDistance(egoLaneID int64, agents []signal.SensorDriverSummary) (float64, bool) {
	best := 0.0
	found := false
	for _, a := range agents {
		if a.LaneID != egoLaneID {
			continue
		}
		if a.RelativeX <= 0 {
			continue
		}
		if !found || a.RelativeX < best {
			best, found = a.RelativeX, true
		}
	}
	return best, found
}

// CollisionRisk estimates a closing-rate risk score in [0,1] from the
// smallest time-to-collision among the agents ahead of ego that are
// closing in. Scores 0 when no agent ahead is closing.
func CollisionRisk(agents []signal.SensorDriverSummary) float64 {
	risk := 0.0
	for _, a := range agents {
		closingSpeed := -a.RelativeV
		if closingSpeed <= 0 || a.RelativeX <= 0 {
			continue
		}
		ttc := a.RelativeX / closingSpeed
		if ttc <= 0 {
			continue
		}
		score := 1.0 / (1.0 + ttc)
		if score > risk {
			risk = score
		}
	}
	return risk
}

// ConflictSituation reports whether any perceived agent occupies a
// different lane but is close enough longitudinally to represent a
// merge/crossing conflict, approximated by a longitudinal proximity
// threshold since lane-successor topology is not carried in
// SensorDriverSummary.
func ConflictSituation(egoLaneID int64, agents []signal.SensorDriverSummary, thresholdMeters float64) bool {
	for _, a := range agents {
		if a.LaneID == egoLaneID {
			continue
		}
		if a.RelativeX >= -thresholdMeters && a.RelativeX <= thresholdMeters {
			return true
		}
	}
	return false
}

// TargetLane picks the lane to occupy: stay in the current lane unless a
// following leader is dangerously close and an adjacent lane (egoLaneID
// ± 1) is clear, in which case it recommends a lane change.
func TargetLane(egoLaneID int64, followDist float64, hasLeader bool, minGapMeters float64, agents []signal.SensorDriverSummary) int64 {
	if !hasLeader || followDist >= minGapMeters {
		return egoLaneID
	}
	for _, candidate := range []int64{egoLaneID - 1, egoLaneID + 1} {
		if candidate == 0 {
			continue
		}
		if laneClear(candidate, agents) {
			return candidate
		}
	}
	return egoLaneID
}

func laneClear(laneID int64, agents []signal.SensorDriverSummary) bool {
	for _, a := range agents {
		if a.LaneID == laneID {
			return false
		}
	}
	return true
}

// TargetVelocity applies a simple car-following law: desired velocity
// capped by a safe following speed derived from the gap to the leader,
// scaled down by the collision risk.
func TargetVelocity(desiredVelocity float64, hasLeader bool, followDist, collisionRisk float64) float64 {
	v := desiredVelocity
	if hasLeader {
		safeV := followDist * 0.5 // same shape as a constant-time-gap car-following target
		if safeV < v {
			v = safeV
		}
	}
	v *= 1 - collisionRisk
	if v < 0 {
		v = 0
	}
	return v
}
