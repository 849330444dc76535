package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/world"
	"github.com/openpass-sim/kernel/internal/world/navigation"
)

type fixedRNG struct{ v float64 }

func (f fixedRNG) UniformDistributed() float64 { return f.v }

func twoRoadGraph(t *testing.T) *world.Graph {
	t.Helper()
	mkLane := func(id world.LaneID) world.RawLane {
		return world.RawLane{ID: id, Width: 3.5, Joints: []world.GeometryJoint{
			{SOffset: 0, Center: world.Point2D{X: 0, Y: 0}, Left: world.Point2D{X: 0, Y: 1.75}, Right: world.Point2D{X: 0, Y: -1.75}},
			{SOffset: 50, Center: world.Point2D{X: 50, Y: 0}, Left: world.Point2D{X: 50, Y: 1.75}, Right: world.Point2D{X: 50, Y: -1.75}},
		}}
	}
	raw := &world.RawScenery{
		Roads: []world.RawRoad{
			{ID: "R1", Sections: []world.RawSection{{SStart: 0, SEnd: 50, Lanes: []world.RawLane{mkLane(-1)}}},
				Successor: &world.RoadLink{RoadID: "R2", Contact: world.ContactStart}},
			{ID: "R2", Sections: []world.RawSection{{SStart: 0, SEnd: 50, Lanes: []world.RawLane{mkLane(-1)}}},
				Predecessor: &world.RoadLink{RoadID: "R1", Contact: world.ContactEnd}},
		},
	}
	g, err := world.Build(raw)
	require.NoError(t, err)
	return g
}

func TestBuildRouteFollowsSuccessorWithoutJunction(t *testing.T) {
	g := twoRoadGraph(t)
	route := navigation.BuildRoute(g, "R1", 5, fixedRNG{0})
	require.Equal(t, []world.RoadID{"R1", "R2"}, route.Roads)
	require.True(t, route.Contains("R2"))
}

func TestCacheMemoizesStreamByIntervalAndRoute(t *testing.T) {
	g := twoRoadGraph(t)
	cache := navigation.NewCache(g)
	route := navigation.Route{Roads: []world.RoadID{"R1", "R2"}}

	s1, ok := cache.GetStream(route, "R1", -1, 0, 50)
	require.True(t, ok)
	require.Len(t, s1.Joints, 2)

	s2, ok := cache.GetStream(route, "R1", -1, 0, 50)
	require.True(t, ok)
	require.Equal(t, s1, s2)

	cache.Clear()
	s3, ok := cache.GetStream(route, "R1", -1, 0, 50)
	require.True(t, ok)
	require.Equal(t, s1, s3)
}
