package eventdetect_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/events"
	"github.com/openpass-sim/kernel/internal/networks/eventdetect"
)

type fixedDetector struct{ kind events.Kind }

func (d fixedDetector) Detect(timeMs int64) ([]events.Event, error) {
	return []events.Event{{Kind: d.kind, Time: 0}}, nil
}

func TestRunDetectorsPublishesInDetectorOrder(t *testing.T) {
	net := events.NewEventNetwork()
	n := eventdetect.NewNetwork([]eventdetect.Detector{
		fixedDetector{kind: "collision"},
		fixedDetector{kind: "offRoad"},
	})
	require.NoError(t, n.RunDetectors(net, 100))

	active := net.Active()
	require.Len(t, active, 2)
	require.Equal(t, events.Kind("collision"), active[0].Kind)
	require.Equal(t, events.Kind("offRoad"), active[1].Kind)
}
