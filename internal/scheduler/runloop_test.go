package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/scheduler"
)

func TestRunInvocationRunsBootstrapLoopAndFinalize(t *testing.T) {
	const framework = 100 * time.Millisecond
	s := scheduler.New(framework)

	var trace []string
	s.ScheduleNewRecurringTasks(0, []*scheduler.Task{{
		Kind: scheduler.KindSynchronize, Name: "sync", CycleTime: framework,
		Run: func(now time.Duration) error { trace = append(trace, "sync@"+now.String()); return nil },
	}})

	inv := scheduler.Invocation{
		Bootstrap: []*scheduler.Task{{Name: "boot", Run: func(time.Duration) error { trace = append(trace, "boot"); return nil }}},
		Finalize:  []*scheduler.Task{{Name: "fin", Run: func(time.Duration) error { trace = append(trace, "fin"); return nil }}},
	}

	abort, err := s.RunInvocation(inv, 0, 200*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, scheduler.AbortNone, abort)

	require.Equal(t, "boot", trace[0])
	require.Equal(t, "fin", trace[len(trace)-1])
}

func TestRunInvocationAbortsSimulationOnCommonTaskFailure(t *testing.T) {
	s := scheduler.New(100 * time.Millisecond)
	s.ScheduleNewRecurringTasks(0, []*scheduler.Task{{
		Kind: scheduler.KindSynchronize, Name: "sync", CycleTime: 100 * time.Millisecond,
		Run: func(time.Duration) error { return &schedulerTestError{"boom"} },
	}})

	var finalized bool
	inv := scheduler.Invocation{
		Finalize: []*scheduler.Task{{Name: "fin", Run: func(time.Duration) error { finalized = true; return nil }}},
	}

	abort, err := s.RunInvocation(inv, 0, 500*time.Millisecond)
	require.Error(t, err)
	require.Equal(t, scheduler.AbortSimulation, abort)
	require.True(t, finalized, "finalize must still run after a simulation abort")
}

func TestRunInvocationAbortsInvocationOnBootstrapFailure(t *testing.T) {
	s := scheduler.New(100 * time.Millisecond)
	inv := scheduler.Invocation{
		Bootstrap: []*scheduler.Task{{Name: "boot", Run: func(time.Duration) error { return &schedulerTestError{"bad spawn"} }}},
	}

	abort, err := s.RunInvocation(inv, 0, 500*time.Millisecond)
	require.Error(t, err)
	require.Equal(t, scheduler.AbortInvocation, abort)
}
