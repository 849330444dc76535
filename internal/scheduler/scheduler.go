package scheduler

import (
	"sort"
	"time"
)

// Scheduler owns one invocation's pending task queue. All
// "common" tasks (spawning, pre-agent, synchronize — fired every
// frameworkRate tick and rescheduled after running) and recurring-agent
// tasks share one priority queue; non-recurring-agent tasks live in a
// small separate slice since they are never rescheduled.
type Scheduler struct {
	frameworkRate time.Duration

	q            *queue
	nonRecurring []*Task
	seq          uint64
}

// New returns a Scheduler for a run whose framework update rate is
// frameworkRate.
func New(frameworkRate time.Duration) *Scheduler {
	return &Scheduler{frameworkRate: frameworkRate, q: newQueue()}
}

func (s *Scheduler) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func isCommon(k Kind) bool {
	switch k {
	case KindSpawning, KindPreAgent, KindSynchronize:
		return true
	default:
		return false
	}
}

// ScheduleNewRecurringTasks inserts tasks (kind Spawning/PreAgent/
// Synchronize/RecurringAgent) whose first fire is OffsetTime relative to
// spawnTick.
func (s *Scheduler) ScheduleNewRecurringTasks(spawnTick time.Duration, tasks []*Task) {
	for _, t := range tasks {
		t.NextFireTime = spawnTick + t.OffsetTime
		t.insertionSeq = s.nextSeq()
		s.q.insert(t)
	}
}

// ScheduleNewNonRecurringTasks appends non-recurring-agent tasks whose
// first (only) fire is OffsetTime relative to spawnTick.
func (s *Scheduler) ScheduleNewNonRecurringTasks(spawnTick time.Duration, tasks []*Task) {
	for _, t := range tasks {
		t.NextFireTime = spawnTick + t.OffsetTime
		t.insertionSeq = s.nextSeq()
		s.nonRecurring = append(s.nonRecurring, t)
	}
}

// GetCommonTasks returns every common task (spawning/pre-agent/
// synchronize) whose NextFireTime == now, in (priority desc,
// insertionSeq asc) order, and reschedules each at NextFireTime +=
// CycleTime. Observation's synchronize-slot task is expected
// to be registered with the lowest priority among synchronize tasks so
// it naturally sorts last.
func (s *Scheduler) GetCommonTasks(now time.Duration) []*Task {
	var due []*Task
	var rest []*Task
	for s.q.len() > 0 {
		top, _ := s.q.peek()
		if top.NextFireTime != now {
			break
		}
		if !isCommon(top.Kind) {
			// A recurring-agent task can share the same fire time; pull
			// it aside and reinsert after the scan so it isn't lost.
			rest = append(rest, s.q.removeAt(0))
			continue
		}
		due = append(due, s.q.removeAt(0))
	}
	for _, t := range rest {
		s.q.insert(t)
	}
	sortByPriority(due)
	for _, t := range due {
		t.NextFireTime += t.CycleTime
		t.insertionSeq = s.nextSeq()
		s.q.insert(t)
	}
	return due
}

// GetRecurringTasks returns every recurring-agent task due at now and
// reschedules each (same contract as GetCommonTasks, narrowed to
// per-agent recurring tasks so the run loop can run them in their own
// slot).
func (s *Scheduler) GetRecurringTasks(now time.Duration) []*Task {
	var due []*Task
	var rest []*Task
	for s.q.len() > 0 {
		top, _ := s.q.peek()
		if top.NextFireTime != now {
			break
		}
		if top.Kind != KindRecurringAgent {
			rest = append(rest, s.q.removeAt(0))
			continue
		}
		due = append(due, s.q.removeAt(0))
	}
	for _, t := range rest {
		s.q.insert(t)
	}
	sortByPriority(due)
	for _, t := range due {
		t.NextFireTime += t.CycleTime
		t.insertionSeq = s.nextSeq()
		s.q.insert(t)
	}
	return due
}

// ConsumeNonRecurringTasks removes and returns every non-recurring-agent
// task due at or before now; they are not rescheduled.
func (s *Scheduler) ConsumeNonRecurringTasks(now time.Duration) []*Task {
	var due []*Task
	var rest []*Task
	for _, t := range s.nonRecurring {
		if t.NextFireTime <= now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	s.nonRecurring = rest
	sortByPriority(due)
	return due
}

// GetNextTimestamp returns the minimum NextFireTime strictly greater
// than now among all remaining tasks, or the framework-rate successor of
// now if none remain.
func (s *Scheduler) GetNextTimestamp(now time.Duration) time.Duration {
	best := now + s.frameworkRate
	found := false
	if top, ok := s.q.peek(); ok && top.NextFireTime > now {
		best = top.NextFireTime
		found = true
	}
	for _, t := range s.nonRecurring {
		if t.NextFireTime > now && (!found || t.NextFireTime < best) {
			best = t.NextFireTime
			found = true
		}
	}
	return best
}

// DeleteAgentTasks removes every pending task belonging to any id in ids,
// from both the priority queue and the non-recurring slice.
func (s *Scheduler) DeleteAgentTasks(ids []int64) {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	for i := 0; i < s.q.len(); {
		if _, match := set[s.q.h[i].AgentID]; match {
			s.q.removeAt(i)
			continue
		}
		i++
	}

	rest := s.nonRecurring[:0]
	for _, t := range s.nonRecurring {
		if _, match := set[t.AgentID]; !match {
			rest = append(rest, t)
		}
	}
	s.nonRecurring = rest
}

// Pending reports the total number of tasks still scheduled (used by
// tests and diagnostics).
func (s *Scheduler) Pending() int {
	return s.q.len() + len(s.nonRecurring)
}

func sortByPriority(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority > tasks[j].Priority
		}
		return tasks[i].insertionSeq < tasks[j].insertionSeq
	})
}
