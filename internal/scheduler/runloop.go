package scheduler

import (
	"fmt"
	"time"
)

// AbortKind distinguishes invocation-scoped from run-ending task failures.
type AbortKind int

const (
	AbortNone AbortKind = iota
	AbortInvocation
	AbortSimulation
)

// ExecuteTasks runs tasks in order; if any returns an error it stops,
// records which task failed, and returns that error.
func ExecuteTasks(now time.Duration, tasks []*Task) (*Task, error) {
	for _, t := range tasks {
		if err := t.Run(now); err != nil {
			return t, fmt.Errorf("scheduler: task %s (kind=%s, agent=%d): %w", t.Name, t.Kind, t.AgentID, err)
		}
	}
	return nil, nil
}

// Invocation is what RunInvocation drives each tick: the caller wires
// agent synchronization, end-condition detection, and event clearing.
type Invocation struct {
	Bootstrap []*Task
	Finalize  []*Task

	// UpdateAgents runs the synchronize-phase side effects outside the
	// task queue itself: consuming newly spawned agents, marking invalid
	// ones, and dropping their now-stale tasks.
	UpdateAgents func(now time.Duration) error

	// IsEndCondition reports whether the scenario ended cleanly at now.
	IsEndCondition func(now time.Duration) bool

	// ClearActiveEvents runs once per tick after the synchronize phase.
	ClearActiveEvents func()

	// Stop, if non-nil, is consulted at each iteration of the run loop. A
	// closed/ready channel ends the loop cleanly, as if the end condition had
	// been reached, before Finalize runs.
	Stop <-chan struct{}
}

// RunInvocation drives one invocation's run loop. A bootstrap failure
// returns (AbortInvocation, err); a
// common/recurring/non-recurring task failure returns (AbortSimulation,
// err); a clean end condition or reaching endTime returns (AbortNone,
// nil). Finalize tasks always run if bootstrap succeeded, regardless of
// how the loop ended.
func (s *Scheduler) RunInvocation(inv Invocation, startTime, endTime time.Duration) (AbortKind, error) {
	if failed, err := ExecuteTasks(startTime, inv.Bootstrap); err != nil {
		opsf("bootstrap task %s failed: %v", failed.Name, err)
		return AbortInvocation, err
	}

	currentTime := startTime
	var loopErr error
	var loopAbort AbortKind

loop:
	for currentTime <= endTime {
		if inv.Stop != nil {
			select {
			case <-inv.Stop:
				break loop
			default:
			}
		}

		common := s.GetCommonTasks(currentTime)
		if failed, err := ExecuteTasks(currentTime, common); err != nil {
			opsf("common task %s failed: %v", failed.Name, err)
			loopAbort, loopErr = AbortSimulation, err
			break loop
		}

		if inv.UpdateAgents != nil {
			if err := inv.UpdateAgents(currentTime); err != nil {
				opsf("update agents failed: %v", err)
				loopAbort, loopErr = AbortSimulation, err
				break loop
			}
		}

		nonRecurring := s.ConsumeNonRecurringTasks(currentTime)
		if failed, err := ExecuteTasks(currentTime, nonRecurring); err != nil {
			opsf("non-recurring task %s failed: %v", failed.Name, err)
			loopAbort, loopErr = AbortSimulation, err
			break loop
		}

		recurring := s.GetRecurringTasks(currentTime)
		if failed, err := ExecuteTasks(currentTime, recurring); err != nil {
			opsf("recurring task %s failed: %v", failed.Name, err)
			loopAbort, loopErr = AbortSimulation, err
			break loop
		}

		currentTime = s.GetNextTimestamp(currentTime)

		if inv.IsEndCondition != nil && inv.IsEndCondition(currentTime) {
			break loop
		}
		if inv.ClearActiveEvents != nil {
			inv.ClearActiveEvents()
		}
	}

	if failed, err := ExecuteTasks(currentTime, inv.Finalize); err != nil {
		opsf("finalize task %s failed: %v", failed.Name, err)
		if loopErr == nil {
			loopAbort, loopErr = AbortSimulation, err
		}
	}

	return loopAbort, loopErr
}
