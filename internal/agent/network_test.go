package agent_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/agent"
	"github.com/openpass-sim/kernel/internal/world"
)

type recordingSink struct {
	calls []string
	ids   []int64
}

func (s *recordingSink) PutCyclic(agentID int64, key string, value interface{}) {
	s.calls = append(s.calls, key)
	s.ids = append(s.ids, agentID)
}

func straightRoadWorld(t *testing.T) *world.World {
	t.Helper()
	raw := &world.RawScenery{
		Roads: []world.RawRoad{
			{
				ID: "R1",
				Sections: []world.RawSection{{SStart: 0, SEnd: 100, Lanes: []world.RawLane{{
					ID: -1, Width: 3.5,
					Joints: []world.GeometryJoint{
						{SOffset: 0, Center: world.Point2D{X: 0, Y: 0}, Left: world.Point2D{X: 0, Y: 1.75}, Right: world.Point2D{X: 0, Y: -1.75}},
						{SOffset: 100, Center: world.Point2D{X: 100, Y: 0}, Left: world.Point2D{X: 100, Y: 1.75}, Right: world.Point2D{X: 100, Y: -1.75}},
					},
				}}}},
			},
		},
	}
	w, err := world.NewWorld(raw)
	require.NoError(t, err)
	return w
}

func newTestAgent(id int64, x float64) *agent.Agent {
	return &agent.Agent{
		ID:       id,
		Category: agent.Scenario,
		Object: &world.MovingObject{
			ID:   id,
			Pose: world.Pose{Point2D: world.Point2D{X: x, Y: 0}},
			Box:  world.BoundingBox{Length: 4, Width: 1.8, Height: 1.5},
		},
	}
}

func TestAddAgentRejectsDuplicateID(t *testing.T) {
	n := agent.NewAgentNetwork()
	require.NoError(t, n.AddAgent(newTestAgent(1, 10)))
	require.Error(t, n.AddAgent(newTestAgent(1, 20)))
}

func TestSyncGlobalDataDrainsUpdatesBeforeRemoves(t *testing.T) {
	w := straightRoadWorld(t)
	n := agent.NewAgentNetwork()
	a1 := newTestAgent(1, 10)
	require.NoError(t, n.AddAgent(a1))

	var order []string
	n.QueueAgentUpdate(func() { order = append(order, "update") })
	n.QueueAgentRemove(a1)

	n.SyncGlobalData(w.Localizer)

	require.Equal(t, []string{"update"}, order)
	require.Equal(t, 0, n.Live())
	require.Len(t, n.Removed(), 1)
	require.Equal(t, agent.Removed, a1.State)
}

func TestSyncGlobalDataRelocatesLiveAgents(t *testing.T) {
	w := straightRoadWorld(t)
	n := agent.NewAgentNetwork()
	a1 := newTestAgent(1, 50)
	require.NoError(t, n.AddAgent(a1))

	n.SyncGlobalData(w.Localizer)

	require.NotNil(t, a1.Object.Position.ReferencePoint)
	require.Equal(t, agent.Active, a1.State)
}

func TestSyncGlobalDataMarksInvalidOnFailedLocalization(t *testing.T) {
	w := straightRoadWorld(t)
	n := agent.NewAgentNetwork()
	a1 := newTestAgent(1, 1000) // far off any lane
	require.NoError(t, n.AddAgent(a1))

	n.SyncGlobalData(w.Localizer)

	require.Equal(t, agent.Invalid, a1.State)
}

func TestPublishGlobalDataEmitsFixedKeySetInAgentOrder(t *testing.T) {
	w := straightRoadWorld(t)
	n := agent.NewAgentNetwork()
	a1 := newTestAgent(2, 50)
	a2 := newTestAgent(1, 60)
	require.NoError(t, n.AddAgent(a1))
	require.NoError(t, n.AddAgent(a2))
	n.SyncGlobalData(w.Localizer)

	sink := &recordingSink{}
	n.PublishGlobalData(sink)

	require.Contains(t, sink.calls, "positionX")
	require.Contains(t, sink.calls, "velocity")
	require.Contains(t, sink.calls, "lane")
	require.Equal(t, int64(1), sink.ids[0])
	require.Equal(t, int64(2), sink.ids[len(sink.ids)-1])
}
