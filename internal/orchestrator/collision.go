package orchestrator

import (
	"context"
	"sort"
	"sync"

	"github.com/openpass-sim/kernel/internal/agent"
	"github.com/openpass-sim/kernel/internal/scheduler"
	"github.com/openpass-sim/kernel/internal/world"
)

// collisionPair holds the two agents of one predicted collision, lower
// id first.
type collisionPair struct {
	A, B *agent.Agent
}

// predictCollisions sweeps every live agent pair for bounding-polygon
// overlap. The per-agent sweeps fan out across a bounded worker pool
// that joins before returning, so the surrounding task keeps its
// straight-line contract. Pairs come back in ascending (A.ID, B.ID)
// order regardless of which worker found them.
func predictCollisions(ctx context.Context, agents []*agent.Agent, maxConcurrency int) []collisionPair {
	if len(agents) < 2 {
		return nil
	}

	var mu sync.Mutex
	var pairs []collisionPair

	work := make([]func(ctx context.Context) error, 0, len(agents)-1)
	for i := 0; i+1 < len(agents); i++ {
		i := i
		work = append(work, func(ctx context.Context) error {
			a := agents[i]
			for _, b := range agents[i+1:] {
				if !world.BoundingBoxesIntersect(a.Object.Pose, a.Object.Box, b.Object.Pose, b.Object.Box) {
					continue
				}
				mu.Lock()
				pairs = append(pairs, collisionPair{A: a, B: b})
				mu.Unlock()
			}
			return nil
		})
	}
	// The work funcs never fail; RunParallel is used purely for the
	// bounded fan-out and join.
	_ = scheduler.RunParallel(ctx, maxConcurrency, work)

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A.ID != pairs[j].A.ID {
			return pairs[i].A.ID < pairs[j].A.ID
		}
		return pairs[i].B.ID < pairs[j].B.ID
	})
	return pairs
}
