package spawn_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/networks/spawn"
)

type fixedPoint struct {
	preRun  []spawn.NewAgentRequest
	runtime []spawn.NewAgentRequest
}

func (p fixedPoint) TriggerPreRun() ([]spawn.NewAgentRequest, error) { return p.preRun, nil }
func (p fixedPoint) TriggerRuntime(timeMs int64) ([]spawn.NewAgentRequest, error) {
	return p.runtime, nil
}

func TestTriggerPreRunQueuesRequests(t *testing.T) {
	n := spawn.NewNetwork([]spawn.Point{fixedPoint{preRun: []spawn.NewAgentRequest{{Category: 1}, {Category: 2}}}})
	require.NoError(t, n.TriggerPreRunSpawnPoints())
	require.Len(t, n.ConsumeNewAgents(), 2)
	require.Empty(t, n.ConsumeNewAgents())
}

func TestTriggerRuntimeAppendsToExistingQueue(t *testing.T) {
	n := spawn.NewNetwork([]spawn.Point{fixedPoint{
		preRun:  []spawn.NewAgentRequest{{Category: 1}},
		runtime: []spawn.NewAgentRequest{{Category: 2}},
	}})
	require.NoError(t, n.TriggerPreRunSpawnPoints())
	require.NoError(t, n.TriggerRuntimeSpawnPoints(100))
	require.Len(t, n.ConsumeNewAgents(), 2)
}
