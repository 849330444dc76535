package datastore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/datastore"
)

func TestGetCyclicFiltersByTimeAndAgentWildcard(t *testing.T) {
	s := datastore.New()
	s.PutCyclic(0, 1, "dynamics.velocity", 10.0)
	s.PutCyclic(0, 2, "dynamics.velocity", 20.0)
	s.PutCyclic(10*time.Millisecond, 1, "dynamics.velocity", 11.0)

	all := s.GetCyclic(nil, nil, "dynamics.velocity")
	require.Len(t, all, 3)

	t0 := time.Duration(0)
	atT0 := s.GetCyclic(&t0, nil, "dynamics.velocity")
	require.Len(t, atT0, 2)

	agent1 := int64(1)
	forAgent1 := s.GetCyclic(nil, &agent1, "dynamics.velocity")
	require.Len(t, forAgent1, 2)
	require.Equal(t, 10.0, forAgent1[0].Value)
	require.Equal(t, 11.0, forAgent1[1].Value)
}

func TestClearDropsCyclicAndAcyclicButKeepsPersistStatic(t *testing.T) {
	s := datastore.New()
	s.PutCyclic(0, 1, "k", 1)
	s.PutAcyclic(0, 1, "collision", "agent1<->agent2")
	s.PutStatic("scenario.name", "straight", true)
	s.PutStatic("run.seed", int64(42), false)

	s.Clear()

	require.Empty(t, s.GetCyclic(nil, nil, "k"))
	require.Empty(t, s.GetAcyclic(nil, nil, "collision"))

	v, ok := s.GetStatic("scenario.name")
	require.True(t, ok)
	require.Equal(t, "straight", v)

	_, ok = s.GetStatic("run.seed")
	require.False(t, ok)
}

func TestGetKeysMatchesPrefixAcrossAllThreeStores(t *testing.T) {
	s := datastore.New()
	s.PutCyclic(0, 1, "agent.1.velocity", 1.0)
	s.PutAcyclic(0, 1, "agent.1.collision", true)
	s.PutStatic("agent.1.type", "car", true)
	s.PutStatic("scenario.name", "straight", true)

	keys := s.GetKeys("agent.1.")
	require.Equal(t, []string{"agent.1.collision", "agent.1.type", "agent.1.velocity"}, keys)
}

func TestPutStaticOverwritesPreviousValueForSameKey(t *testing.T) {
	s := datastore.New()
	s.PutStatic("run.seed", int64(1), true)
	s.PutStatic("run.seed", int64(2), true)

	v, ok := s.GetStatic("run.seed")
	require.True(t, ok)
	require.Equal(t, int64(2), v)
}
