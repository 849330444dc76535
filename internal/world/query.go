package world

import "math"

// RoadCoord2WorldCoord maps a road-relative (roadId, laneId, s, t) into a
// world-frame Pose by interpolating the lane's geometry joints.
func (g *Graph) RoadCoord2WorldCoord(roadID RoadID, laneID LaneID, s, t float64) (Pose, bool) {
	lane := g.lane(roadID, laneID)
	if lane == nil {
		return Pose{}, false
	}
	joint, ok := InterpolateJoint(lane, s)
	if !ok {
		return Pose{}, false
	}
	nx, ny := -math.Sin(joint.Heading), math.Cos(joint.Heading)
	return Pose{
		Point2D: Point2D{X: joint.Center.X + t*nx, Y: joint.Center.Y + t*ny},
		Yaw:     joint.Heading,
	}, true
}

// GetLaneWidth returns the lane's width at s.
func (g *Graph) GetLaneWidth(roadID RoadID, laneID LaneID, s float64) (float64, bool) {
	lane := g.lane(roadID, laneID)
	if lane == nil {
		return 0, false
	}
	return lane.Width, true
}

// GetLaneCurvature returns the lane centerline's curvature at s.
func (g *Graph) GetLaneCurvature(roadID RoadID, laneID LaneID, s float64) (float64, bool) {
	lane := g.lane(roadID, laneID)
	if lane == nil {
		return 0, false
	}
	joint, ok := InterpolateJoint(lane, s)
	if !ok {
		return 0, false
	}
	return joint.Curvature, true
}

// GetLaneDirection returns the lane centerline's heading at s.
func (g *Graph) GetLaneDirection(roadID RoadID, laneID LaneID, s float64) (float64, bool) {
	lane := g.lane(roadID, laneID)
	if lane == nil {
		return 0, false
	}
	joint, ok := InterpolateJoint(lane, s)
	if !ok {
		return 0, false
	}
	return joint.Heading, true
}

// GetDistanceToEndOfLane returns the remaining s distance to the end of
// the lane's own geometry, not following successors.
func (g *Graph) GetDistanceToEndOfLane(roadID RoadID, laneID LaneID, s float64) (float64, bool) {
	lane := g.lane(roadID, laneID)
	if lane == nil || len(lane.Joints) == 0 {
		return 0, false
	}
	return lane.Joints[len(lane.Joints)-1].SOffset - s, true
}

// GetDistanceToJunction walks successor roads from roadID, stopping at
// the first junction road it reaches, and returns the accumulated s
// distance. Returns false if no junction is reachable within maxHops.
func (g *Graph) GetDistanceToJunction(roadID RoadID, s float64, maxHops int) (float64, bool) {
	road, ok := g.Roads[roadID]
	if !ok {
		return 0, false
	}
	if road.IsJunctionRoad {
		return 0, true
	}
	remaining := roadLength(road) - s
	current := road
	for hop := 0; hop < maxHops; hop++ {
		if current.Successor == nil {
			return 0, false
		}
		next, ok := g.Roads[current.Successor.RoadID]
		if !ok {
			return 0, false
		}
		if next.IsJunctionRoad {
			return remaining, true
		}
		remaining += roadLength(next)
		current = next
	}
	return 0, false
}

// ConnectionsFrom returns every junction connection whose incoming road
// is roadID, across every junction in the graph.
func (g *Graph) ConnectionsFrom(roadID RoadID) []JunctionConnection {
	var out []JunctionConnection
	for _, j := range g.Junctions {
		for _, c := range j.Connections {
			if c.IncomingRoad == roadID {
				out = append(out, c)
			}
		}
	}
	return out
}

// GetObjectsInRange returns every object id assigned to laneID whose
// s-overlap intersects [sStart, sEnd], using the localizer's lane
// occupancy tracking.
func GetObjectsInRange(lz *Localizer, laneID LaneID, sStart, sEnd float64) []int64 {
	return lz.OccupantsInRange(laneID, sStart, sEnd)
}

// GetTrafficSignsInRange returns the signs on roadID within [sStart, sEnd]
// that apply to laneID (or to the whole road).
func (g *Graph) GetTrafficSignsInRange(roadID RoadID, laneID LaneID, sStart, sEnd float64) []TrafficSign {
	road, ok := g.Roads[roadID]
	if !ok {
		return nil
	}
	var out []TrafficSign
	for _, sign := range road.TrafficSigns {
		if sign.S < sStart || sign.S > sEnd {
			continue
		}
		if sign.LaneID != 0 && sign.LaneID != laneID {
			continue
		}
		out = append(out, sign)
	}
	return out
}

// Obstruction is the lateral extent of another object relative to the
// ego's path: Left is the t-offset of the opponent corner farthest to
// the ego's left, Right the one farthest to the ego's right, both
// measured from the ego's own lateral position. The opponent blocks the
// ego's path when the two straddle zero.
type Obstruction struct {
	Left  float64
	Right float64
}

// IsOverlapping reports whether the opponent's lateral extent covers the
// ego's own position.
func (o Obstruction) IsOverlapping() bool {
	return o.Left >= 0 && o.Right <= 0
}

// GetObstruction projects the opponent's bounding corners onto the
// ego's lane at the opponent's position and reports their lateral
// offsets relative to the ego's own t-coordinate. Returns false when the
// ego's lane or the geometry element at the opponent's s cannot be
// resolved.
func (g *Graph) GetObstruction(own GlobalRoadPosition, other GlobalRoadPosition, otherCorners []Point2D) (Obstruction, bool) {
	lane := g.lane(own.RoadID, own.LaneID)
	if lane == nil || len(otherCorners) == 0 {
		return Obstruction{}, false
	}
	elem := elementAtS(lane, other.S)
	if elem == nil {
		return Obstruction{}, false
	}

	first := true
	var left, right float64
	for _, corner := range otherCorners {
		_, t := projectToLane(elem, corner)
		delta := t - own.T
		if first {
			left, right = delta, delta
			first = false
			continue
		}
		if delta > left {
			left = delta
		}
		if delta < right {
			right = delta
		}
	}
	return Obstruction{Left: left, Right: right}, true
}

// elementAtS returns the lane's geometry element covering s, or the
// terminal element when s lies just past either end.
func elementAtS(lane *Lane, s float64) *GeometryElement {
	elems := lane.Elements()
	if len(elems) == 0 {
		return nil
	}
	for i := range elems {
		if s >= elems[i].SStart && s <= elems[i].SEnd {
			return &elems[i]
		}
	}
	if s < elems[0].SStart {
		return &elems[0]
	}
	return &elems[len(elems)-1]
}

func (g *Graph) lane(roadID RoadID, laneID LaneID) *Lane {
	road, ok := g.Roads[roadID]
	if !ok {
		return nil
	}
	for _, section := range road.Sections {
		if lane, ok := section.Lanes[laneID]; ok {
			return lane
		}
	}
	return nil
}

func roadLength(r *Road) float64 {
	if len(r.Sections) == 0 {
		return 0
	}
	first, last := r.Sections[0], r.Sections[len(r.Sections)-1]
	return last.SEnd - first.SStart
}
