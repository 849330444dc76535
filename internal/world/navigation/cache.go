package navigation

import (
	"fmt"
	"sync"

	"github.com/openpass-sim/kernel/internal/world"
)

// Stream is a contiguous sequence of geometry joints resampled along a
// route, the unit agents query for lookahead.
type Stream struct {
	RoadID world.RoadID
	LaneID world.LaneID
	SStart float64
	SEnd   float64
	Joints []world.GeometryJoint
}

type streamKey struct {
	route  string
	roadID world.RoadID
	laneID world.LaneID
	sStart float64
	sEnd   float64
}

// Cache memoizes Streams per (route, roadId, laneId, s-interval). Entries
// live for the duration of one invocation and are dropped wholesale on
// Clear.
type Cache struct {
	graph *world.Graph

	mu      sync.Mutex
	streams map[streamKey]Stream
}

// NewCache binds a navigation Cache to a built graph.
func NewCache(g *world.Graph) *Cache {
	return &Cache{graph: g, streams: map[streamKey]Stream{}}
}

// Clear drops every cached stream.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.streams = map[streamKey]Stream{}
}

// GetStream returns the cached Stream for the given route/lane/s-interval,
// building and memoizing it on first request.
func (c *Cache) GetStream(route Route, roadID world.RoadID, laneID world.LaneID, sStart, sEnd float64) (Stream, bool) {
	key := streamKey{route: routeKey(route), roadID: roadID, laneID: laneID, sStart: sStart, sEnd: sEnd}

	c.mu.Lock()
	if s, ok := c.streams[key]; ok {
		c.mu.Unlock()
		return s, true
	}
	c.mu.Unlock()

	road, ok := c.graph.Roads[roadID]
	if !ok {
		return Stream{}, false
	}
	var lane *world.Lane
	for _, section := range road.Sections {
		if l, ok := section.Lanes[laneID]; ok {
			lane = l
			break
		}
	}
	if lane == nil {
		return Stream{}, false
	}

	var joints []world.GeometryJoint
	for _, j := range lane.Joints {
		if j.SOffset >= sStart && j.SOffset <= sEnd {
			joints = append(joints, j)
		}
	}
	stream := Stream{RoadID: roadID, LaneID: laneID, SStart: sStart, SEnd: sEnd, Joints: joints}

	c.mu.Lock()
	c.streams[key] = stream
	c.mu.Unlock()
	return stream, true
}

func routeKey(r Route) string {
	return fmt.Sprint(r.Roads)
}
