package navigation

import "github.com/openpass-sim/kernel/internal/world"

// RandomSource is the minimal stochastics capability route construction
// needs: a uniform draw in [0,1) to pick among equally weighted junction
// connections. Satisfied by internal/stochastics.Default.
type RandomSource interface {
	UniformDistributed() float64
}

// Route is an ordered sequence of roads an agent will traverse, built
// once at spawn time and immutable afterward.
type Route struct {
	Roads []world.RoadID
}

// BuildRoute walks successor links from (startRoad), choosing among
// available junction connections with a uniform draw from rng whenever
// more than one is available, until maxRoads is reached or no successor
// exists.
func BuildRoute(g *world.Graph, startRoad world.RoadID, maxRoads int, rng RandomSource) Route {
	route := Route{Roads: []world.RoadID{startRoad}}
	current, ok := g.Roads[startRoad]
	if !ok {
		return route
	}
	for len(route.Roads) < maxRoads {
		next := nextRoad(g, current, rng)
		if next == nil {
			break
		}
		route.Roads = append(route.Roads, next.ID)
		current = next
	}
	return route
}

func nextRoad(g *world.Graph, current *world.Road, rng RandomSource) *world.Road {
	conns := g.ConnectionsFrom(current.ID)
	if len(conns) > 0 {
		idx := 0
		if len(conns) > 1 {
			idx = int(rng.UniformDistributed() * float64(len(conns)))
			if idx >= len(conns) {
				idx = len(conns) - 1
			}
		}
		if next, ok := g.Roads[conns[idx].ConnectingRoad]; ok {
			return next
		}
	}
	if current.Successor == nil {
		return nil
	}
	next, ok := g.Roads[current.Successor.RoadID]
	if !ok {
		return nil
	}
	return next
}

// Contains reports whether roadID lies on the route.
func (r Route) Contains(roadID world.RoadID) bool {
	for _, id := range r.Roads {
		if id == roadID {
			return true
		}
	}
	return false
}
