package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/scheduler"
)

func noop(time.Duration) error { return nil }

func TestRecurringTaskFiresFloorPlusOneTimes(t *testing.T) {
	const framework = 10 * time.Millisecond
	s := scheduler.New(framework)
	var fires int
	s.ScheduleNewRecurringTasks(0, []*scheduler.Task{{
		Kind: scheduler.KindRecurringAgent, Name: "c", CycleTime: 30 * time.Millisecond,
		Run: func(time.Duration) error { fires++; return nil },
	}})

	horizon := 100 * time.Millisecond
	now := time.Duration(0)
	for now <= horizon {
		_, err := scheduler.ExecuteTasks(now, s.GetRecurringTasks(now))
		require.NoError(t, err)
		now = s.GetNextTimestamp(now)
	}

	require.Equal(t, int(horizon/(30*time.Millisecond))+1, fires)
}

func TestEqualFireTimeOrdersByPriorityDescThenInsertion(t *testing.T) {
	s := scheduler.New(10 * time.Millisecond)
	var order []string
	mk := func(name string, priority int) *scheduler.Task {
		return &scheduler.Task{
			Kind: scheduler.KindRecurringAgent, Name: name, CycleTime: 10 * time.Millisecond, Priority: priority,
			Run: func(time.Duration) error { order = append(order, name); return nil },
		}
	}
	s.ScheduleNewRecurringTasks(0, []*scheduler.Task{mk("low", 0), mk("high", 5), mk("mid", 2)})

	due := s.GetRecurringTasks(0)
	_, err := scheduler.ExecuteTasks(0, due)
	require.NoError(t, err)
	require.Equal(t, []string{"high", "mid", "low"}, order)
}

func TestNonRecurringTaskFiresOnceThenAbsent(t *testing.T) {
	s := scheduler.New(10 * time.Millisecond)
	var fires int
	s.ScheduleNewNonRecurringTasks(0, []*scheduler.Task{{
		Kind: scheduler.KindNonRecurringAgent, Name: "init", AgentID: 1,
		Run: func(time.Duration) error { fires++; return nil },
	}})

	first := s.ConsumeNonRecurringTasks(0)
	require.Len(t, first, 1)
	second := s.ConsumeNonRecurringTasks(0)
	require.Empty(t, second)

	_, err := scheduler.ExecuteTasks(0, first)
	require.NoError(t, err)
	require.Equal(t, 1, fires)
}

func TestDeleteAgentTasksRemovesOnlyThatAgent(t *testing.T) {
	s := scheduler.New(10 * time.Millisecond)
	s.ScheduleNewRecurringTasks(0, []*scheduler.Task{
		{Kind: scheduler.KindRecurringAgent, AgentID: 1, Name: "a1", CycleTime: 10 * time.Millisecond, Run: noop},
		{Kind: scheduler.KindRecurringAgent, AgentID: 2, Name: "a2", CycleTime: 10 * time.Millisecond, Run: noop},
	})
	s.ScheduleNewNonRecurringTasks(0, []*scheduler.Task{
		{Kind: scheduler.KindNonRecurringAgent, AgentID: 1, Name: "a1-init", Run: noop},
	})
	require.Equal(t, 3, s.Pending())

	s.DeleteAgentTasks([]int64{1})

	require.Equal(t, 1, s.Pending())
	due := s.GetRecurringTasks(0)
	require.Len(t, due, 1)
	require.Equal(t, int64(2), due[0].AgentID)
}

func TestExecuteTasksStopsAtFirstFailureWithNoRollback(t *testing.T) {
	var ran []string
	tasks := []*scheduler.Task{
		{Name: "ok", Run: func(time.Duration) error { ran = append(ran, "ok"); return nil }},
		{Name: "bad", Run: func(time.Duration) error { return errBad }},
		{Name: "never", Run: func(time.Duration) error { ran = append(ran, "never"); return nil }},
	}
	failed, err := scheduler.ExecuteTasks(0, tasks)
	require.Error(t, err)
	require.Equal(t, "bad", failed.Name)
	require.Equal(t, []string{"ok"}, ran)
}

var errBad = &schedulerTestError{"bad task"}

type schedulerTestError struct{ msg string }

func (e *schedulerTestError) Error() string { return e.msg }
