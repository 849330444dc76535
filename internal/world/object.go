package world

// BoundingBox is an axis-aligned box in the object's local frame,
// expressed as full extents centered on the reference point.
type BoundingBox struct {
	Length, Width, Height float64
}

// Pose is a world-frame position and heading.
type Pose struct {
	Point2D
	Yaw float64
}

// StationaryObject has a fixed pose and bounding box.
type StationaryObject struct {
	ID       int64
	Pose     Pose
	Box      BoundingBox
	Position ObjectPosition
}

// MovingObject adds kinematics and classification to a StationaryObject.
type MovingObject struct {
	ID       int64
	Pose     Pose
	Box      BoundingBox
	Position ObjectPosition

	Velocity       float64
	Acceleration   float64
	YawRate        float64
	IndicatorState string
	LightState     string
	VehicleClass   string

	// DistanceReferencePointToLeadingEdge places the main locator ahead
	// of the reference point.
	DistanceReferencePointToLeadingEdge float64
}

// TouchedRoad records one road's overlap with an object. Invariant: SStart
// <= SEnd; Lanes is non-empty whenever the object touches the road.
type TouchedRoad struct {
	RoadID         RoadID
	SStart, SEnd   float64
	Lanes          []LaneID
	RemainderLeft  float64
	RemainderRight float64
}

// GlobalRoadPosition is the precise road-relative pose at a point the
// object occupies.
type GlobalRoadPosition struct {
	RoadID RoadID
	LaneID LaneID
	S, T   float64
	Yaw    float64
}

// ObjectPosition is the cached result of localization.
type ObjectPosition struct {
	ReferencePoint *GlobalRoadPosition
	MainLocator    *GlobalRoadPosition
	TouchedRoads   map[RoadID]TouchedRoad
}

// IsOnRoute reports whether localization placed both the reference
// point and the main locator on the road network.
func (p ObjectPosition) IsOnRoute() bool {
	return p.ReferencePoint != nil && p.MainLocator != nil
}

// BoundingBoxesIntersect reports whether two posed bounding boxes
// overlap in the world frame.
func BoundingBoxesIntersect(poseA Pose, boxA BoundingBox, poseB Pose, boxB BoundingBox) bool {
	ca := Corners(poseA, boxA)
	cb := Corners(poseB, boxB)
	return intersects(polygon(ca[:]), polygon(cb[:]))
}

// Corners returns the four corners of a pose+box bounding polygon in
// world coordinates, used by localization's coarse-box query and by
// GetObstruction.
func Corners(pose Pose, box BoundingBox) [4]Point2D {
	hl, hw := box.Length/2, box.Width/2
	cos, sin := cosSin(pose.Yaw)
	local := [4]Point2D{
		{hl, hw}, {hl, -hw}, {-hl, -hw}, {-hl, hw},
	}
	var out [4]Point2D
	for i, p := range local {
		out[i] = Point2D{
			X: pose.X + p.X*cos - p.Y*sin,
			Y: pose.Y + p.X*sin + p.Y*cos,
		}
	}
	return out
}
