package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/events"
)

type recordingManipulator struct {
	kinds []events.Kind
	seen  []events.Event
}

func (m *recordingManipulator) Kinds() []events.Kind { return m.kinds }
func (m *recordingManipulator) Manipulate(active []events.Event) error {
	m.seen = append(m.seen, active...)
	return nil
}

func TestPublishPreservesInsertionOrder(t *testing.T) {
	n := events.NewEventNetwork()
	n.Publish(events.Event{SourceName: "detectorA", Kind: "collision"})
	n.Publish(events.Event{SourceName: "detectorB", Kind: "laneChange"})

	active := n.Active()
	require.Len(t, active, 2)
	require.Equal(t, "detectorA", active[0].SourceName)
	require.Equal(t, "detectorB", active[1].SourceName)
	require.NotEmpty(t, active[0].ID)
	require.NotEqual(t, active[0].ID, active[1].ID)
}

func TestRunManipulatorsOnlySeesMatchingKind(t *testing.T) {
	n := events.NewEventNetwork()
	n.Publish(events.Event{Kind: "collision"})
	n.Publish(events.Event{Kind: "laneChange"})

	m := &recordingManipulator{kinds: []events.Kind{"collision"}}
	require.NoError(t, events.RunManipulators(n, []events.Manipulator{m}))

	require.Len(t, m.seen, 1)
	require.Equal(t, events.Kind("collision"), m.seen[0].Kind)
}

func TestClearActiveEventsDropsOnlyNonRetained(t *testing.T) {
	n := events.NewEventNetwork()
	n.Publish(events.Event{Kind: "collision", Time: time.Millisecond * 100})
	n.Publish(events.Event{Kind: "persistentHazard", Retain: true})

	n.ClearActiveEvents()

	active := n.Active()
	require.Len(t, active, 1)
	require.Equal(t, events.Kind("persistentHazard"), active[0].Kind)
}
