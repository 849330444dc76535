package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/agent"
	"github.com/openpass-sim/kernel/internal/world"
)

func collisionAgent(id int64, x, y float64) *agent.Agent {
	return &agent.Agent{
		ID: id,
		Object: &world.MovingObject{
			ID:   id,
			Pose: world.Pose{Point2D: world.Point2D{X: x, Y: y}},
			Box:  world.BoundingBox{Length: 4, Width: 1.8, Height: 1.5},
		},
	}
}

func TestPredictCollisionsFindsOverlappingPairs(t *testing.T) {
	agents := []*agent.Agent{
		collisionAgent(1, 0, 0),
		collisionAgent(2, 3, 0),    // 4m long boxes 3m apart overlap by 1m
		collisionAgent(3, 50, 0),   // far away
		collisionAgent(4, 50.5, 1), // overlaps agent 3
	}

	pairs := predictCollisions(context.Background(), agents, 2)
	require.Len(t, pairs, 2)
	require.Equal(t, int64(1), pairs[0].A.ID)
	require.Equal(t, int64(2), pairs[0].B.ID)
	require.Equal(t, int64(3), pairs[1].A.ID)
	require.Equal(t, int64(4), pairs[1].B.ID)
}

func TestPredictCollisionsEmptyForSeparatedAgents(t *testing.T) {
	agents := []*agent.Agent{
		collisionAgent(1, 0, 0),
		collisionAgent(2, 10, 0),
	}
	require.Empty(t, predictCollisions(context.Background(), agents, 2))
	require.Empty(t, predictCollisions(context.Background(), agents[:1], 2))
}
