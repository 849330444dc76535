package world

import (
	"sort"
	"sync"
)

// Localizer maps object poses onto a built Graph through its
// SpatialIndex, and tracks which lanes are currently occupied by which
// object.
type Localizer struct {
	graph *Graph
	index *SpatialIndex

	mu        sync.Mutex
	occupancy map[LaneID]map[int64]sInterval
}

// sInterval is the s-range of one object's overlap with one lane.
type sInterval struct {
	min, max float64
}

// NewLocalizer binds a Localizer to a built graph and index.
func NewLocalizer(g *Graph, idx *SpatialIndex) *Localizer {
	return &Localizer{graph: g, index: idx, occupancy: map[LaneID]map[int64]sInterval{}}
}

// Locate maps a world-space pose+bounding box into an ObjectPosition.
// mainLocator is the forward-offset point for moving objects; pass the
// reference point itself (distance 0) for stationary objects.
func (lz *Localizer) Locate(objID int64, pose Pose, box BoundingBox, distanceReferencePointToLeadingEdge float64) ObjectPosition {
	lz.clearAssignment(objID)

	corners := Corners(pose, box)
	poly := polygon(corners[:])
	minX, minY, maxX, maxY := boundsOf(poly)

	cos, sin := cosSin(pose.Yaw)
	mainLocator := Point2D{
		X: pose.X + distanceReferencePointToLeadingEdge*cos,
		Y: pose.Y + distanceReferencePointToLeadingEdge*sin,
	}
	referencePoint := Point2D{X: pose.X, Y: pose.Y}

	hits := lz.index.QueryBox(minX, minY, maxX, maxY)

	touched := map[RoadID]TouchedRoad{}
	var refPos, mainPos *GlobalRoadPosition

	for _, elem := range hits {
		quad := elem.quad()
		if !intersects(poly, quad) {
			continue
		}

		lane := elem.Lane
		road := lane.Section.Road
		sMin, sMax, deltaLeft, deltaRight := overlapExtent(poly, elem)

		lz.assign(objID, lane.ID, sMin, sMax)

		tr := touched[road.ID]
		tr.RoadID = road.ID
		if len(tr.Lanes) == 0 {
			tr.SStart, tr.SEnd = sMin, sMax
			tr.RemainderLeft, tr.RemainderRight = deltaLeft, deltaRight
		} else {
			if sMin < tr.SStart {
				tr.SStart = sMin
			}
			if sMax > tr.SEnd {
				tr.SEnd = sMax
			}
			// The road-level remainder is the free space beyond the
			// object's outermost edge, which lives in the outermost
			// touched lane: the largest per-lane delta.
			if deltaLeft > tr.RemainderLeft {
				tr.RemainderLeft = deltaLeft
			}
			if deltaRight > tr.RemainderRight {
				tr.RemainderRight = deltaRight
			}
		}
		if !containsLane(tr.Lanes, lane.ID) {
			tr.Lanes = append(tr.Lanes, lane.ID)
		}
		touched[road.ID] = tr

		if containsPoint(quad, referencePoint) {
			s, t := projectToLane(elem, referencePoint)
			refPos = &GlobalRoadPosition{RoadID: road.ID, LaneID: lane.ID, S: s, T: t, Yaw: pose.Yaw}
		}
		if containsPoint(quad, mainLocator) {
			s, t := projectToLane(elem, mainLocator)
			mainPos = &GlobalRoadPosition{RoadID: road.ID, LaneID: lane.ID, S: s, T: t, Yaw: pose.Yaw}
		}
	}

	return ObjectPosition{
		ReferencePoint: refPos,
		MainLocator:    mainPos,
		TouchedRoads:   touched,
	}
}

func (lz *Localizer) clearAssignment(objID int64) {
	lz.mu.Lock()
	defer lz.mu.Unlock()
	for lane, set := range lz.occupancy {
		delete(set, objID)
		if len(set) == 0 {
			delete(lz.occupancy, lane)
		}
	}
}

func (lz *Localizer) assign(objID int64, laneID LaneID, sMin, sMax float64) {
	lz.mu.Lock()
	defer lz.mu.Unlock()
	set, ok := lz.occupancy[laneID]
	if !ok {
		set = map[int64]sInterval{}
		lz.occupancy[laneID] = set
	}
	iv, ok := set[objID]
	if !ok {
		set[objID] = sInterval{min: sMin, max: sMax}
		return
	}
	if sMin < iv.min {
		iv.min = sMin
	}
	if sMax > iv.max {
		iv.max = sMax
	}
	set[objID] = iv
}

// Occupants returns the object ids currently assigned to laneID, in
// ascending id order.
func (lz *Localizer) Occupants(laneID LaneID) []int64 {
	lz.mu.Lock()
	defer lz.mu.Unlock()
	set := lz.occupancy[laneID]
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OccupantsInRange returns the object ids assigned to laneID whose
// s-overlap intersects [sStart, sEnd], in ascending id order.
func (lz *Localizer) OccupantsInRange(laneID LaneID, sStart, sEnd float64) []int64 {
	lz.mu.Lock()
	defer lz.mu.Unlock()
	var out []int64
	for id, iv := range lz.occupancy[laneID] {
		if iv.max < sStart || iv.min > sEnd {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func containsLane(lanes []LaneID, id LaneID) bool {
	for _, l := range lanes {
		if l == id {
			return true
		}
	}
	return false
}

func boundsOf(poly polygon) (minX, minY, maxX, maxY float64) {
	minX, minY = poly[0].X, poly[0].Y
	maxX, maxY = poly[0].X, poly[0].Y
	for _, p := range poly[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return
}

// overlapExtent approximates the intersecting s-range and the left/right
// remainder (lane width not covered by the object) by projecting the
// object polygon's corners onto the element's s/t axes.
func overlapExtent(obj polygon, elem *GeometryElement) (sMin, sMax, remainderLeft, remainderRight float64) {
	laneWidth := distance(elem.LeftStart, elem.RightStart)

	sMin, sMax = math1Inf(), -math1Inf()
	tMin, tMax := math1Inf(), -math1Inf()
	for _, p := range obj {
		s, t := projectToLane(elem, p)
		if s < sMin {
			sMin = s
		}
		if s > sMax {
			sMax = s
		}
		if t < tMin {
			tMin = t
		}
		if t > tMax {
			tMax = t
		}
	}
	halfWidth := laneWidth / 2
	remainderLeft = clamp(halfWidth-tMax, 0, laneWidth)
	remainderRight = clamp(tMin+halfWidth, 0, laneWidth)
	return
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func math1Inf() float64 { return 1e18 }

// projectToLane returns the (s,t) coordinate of pt within elem, s
// linearly interpolated along the element's length, t measured as the
// signed distance from the centerline toward the left edge.
func projectToLane(elem *GeometryElement, pt Point2D) (s, t float64) {
	dx := elem.CenterEnd.X - elem.CenterStart.X
	dy := elem.CenterEnd.Y - elem.CenterStart.Y
	length := distance(elem.CenterStart, elem.CenterEnd)
	if length == 0 {
		return elem.SStart, 0
	}
	ux, uy := dx/length, dy/length
	px, py := pt.X-elem.CenterStart.X, pt.Y-elem.CenterStart.Y
	along := px*ux + py*uy
	frac := clamp(along/length, 0, 1)
	s = elem.SStart + frac*(elem.SEnd-elem.SStart)

	// Perpendicular (left-positive) component.
	nx, ny := -uy, ux
	t = px*nx + py*ny
	return
}
