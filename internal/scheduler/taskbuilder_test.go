package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openpass-sim/kernel/internal/scheduler"
)

// Parsing one agent with three recurring components of cycle times
// {50, 100, 250} ms yields six recurring tasks (trigger+update per
// component) and no non-recurring ones, firing at each component's own
// cadence.
func TestAgentComponentTaskParsing(t *testing.T) {
	const framework = 50 * time.Millisecond
	s := scheduler.New(framework)
	tb := scheduler.TaskBuilder{FrameworkRate: framework}

	fired := map[time.Duration][]string{}
	record := func(name string) func(time.Duration) error {
		return func(now time.Duration) error {
			fired[now] = append(fired[now], name)
			return nil
		}
	}

	var recurring []*scheduler.Task
	for _, c := range []struct {
		name  string
		cycle time.Duration
	}{
		{"c50", 50 * time.Millisecond},
		{"c100", 100 * time.Millisecond},
		{"c250", 250 * time.Millisecond},
	} {
		recurring = append(recurring, tb.CreateAgentComponentTasks(
			1, c.name, false, c.cycle, 0, 0, 0, record(c.name+":trigger"), record(c.name+":update"))...)
	}
	require.Len(t, recurring, 6)
	s.ScheduleNewRecurringTasks(0, recurring)

	require.Empty(t, s.ConsumeNonRecurringTasks(0))
	require.Equal(t, 6, s.Pending())

	now := time.Duration(0)
	for now <= 250*time.Millisecond {
		due := s.GetRecurringTasks(now)
		_, err := scheduler.ExecuteTasks(now, due)
		require.NoError(t, err)
		now = s.GetNextTimestamp(now)
	}

	at100 := fired[100*time.Millisecond]
	require.Contains(t, at100, "c50:trigger")
	require.Contains(t, at100, "c100:trigger")
	require.NotContains(t, at100, "c250:trigger")

	at250 := fired[250*time.Millisecond]
	require.Contains(t, at250, "c250:trigger")
	require.Contains(t, at250, "c250:update")
	require.NotContains(t, at250, "c100:trigger")
}

// A component's update task trails its trigger by the component's
// response time.
func TestResponseTimeDelaysUpdateTask(t *testing.T) {
	const framework = 100 * time.Millisecond
	s := scheduler.New(framework)
	tb := scheduler.TaskBuilder{FrameworkRate: framework}

	var trace []string
	record := func(name string) func(time.Duration) error {
		return func(now time.Duration) error {
			trace = append(trace, name+"@"+now.String())
			return nil
		}
	}

	tasks := tb.CreateAgentComponentTasks(1, "steer", false,
		200*time.Millisecond, 0, 100*time.Millisecond, 0,
		record("trigger"), record("update"))
	s.ScheduleNewRecurringTasks(0, tasks)

	now := time.Duration(0)
	for now <= 300*time.Millisecond {
		due := s.GetRecurringTasks(now)
		_, err := scheduler.ExecuteTasks(now, due)
		require.NoError(t, err)
		now = s.GetNextTimestamp(now)
	}

	require.Equal(t, []string{"trigger@0s", "update@100ms", "trigger@200ms", "update@300ms"}, trace)
}
