package scheduler

import "time"

// Kind names one of the seven task categories.
type Kind int

const (
	KindBootstrap Kind = iota
	KindSpawning
	KindPreAgent
	KindNonRecurringAgent
	KindRecurringAgent
	KindSynchronize
	KindFinalize
)

func (k Kind) String() string {
	switch k {
	case KindBootstrap:
		return "bootstrap"
	case KindSpawning:
		return "spawning"
	case KindPreAgent:
		return "pre-agent"
	case KindNonRecurringAgent:
		return "non-recurring-agent"
	case KindRecurringAgent:
		return "recurring-agent"
	case KindSynchronize:
		return "synchronize"
	case KindFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}

// Task is one schedulable unit.
// AgentID is zero for tasks that don't belong to an agent (common,
// bootstrap, finalize). NextFireTime/insertionSeq/heapIndex are
// maintained by the queue; callers never set them directly.
type Task struct {
	Kind       Kind
	AgentID    int64
	Name       string
	CycleTime  time.Duration
	OffsetTime time.Duration
	Priority   int
	Run        func(now time.Duration) error

	NextFireTime time.Duration
	insertionSeq uint64
	heapIndex    int
}

// recurs reports whether this task's kind is rescheduled after firing
// rather than consumed once.
func (t *Task) recurs() bool {
	switch t.Kind {
	case KindSpawning, KindPreAgent, KindSynchronize, KindRecurringAgent:
		return true
	default:
		return false
	}
}
