package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind names what condition or manipulation an Event represents. The
// kernel never interprets the string beyond subscription matching.
type Kind string

// Event is an immutable record of a detected condition or applied
// manipulation. Retain governs whether
// ClearActiveEvents drops it at the end of a tick.
type Event struct {
	// ID is a stable external correlation id, assigned on Publish when
	// the producer left it empty. It never feeds back into simulation
	// behavior, so reproducibility across invocations is unaffected.
	ID string

	Time             time.Duration
	SourceName       string
	Kind             Kind
	ActingAgents     []int64
	TriggeringAgents []int64
	Payload          interface{}
	Retain           bool
}

// Manipulator subscribes to one or more event kinds and reacts to
// matching active events.
type Manipulator interface {
	Kinds() []Kind
	Manipulate(active []Event) error
}

// EventNetwork stores the active events for the current tick in
// insertion order: detectors publish first, then manipulators.
type EventNetwork struct {
	mu     sync.Mutex
	active []Event
}

// NewEventNetwork returns an empty network.
func NewEventNetwork() *EventNetwork {
	return &EventNetwork{}
}

// Publish appends ev to the active list.
func (n *EventNetwork) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	n.active = append(n.active, ev)
	diagf("event published: kind=%s source=%s time=%s", ev.Kind, ev.SourceName, ev.Time)
}

// Active returns every currently active event, in insertion order.
func (n *EventNetwork) Active() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Event, len(n.active))
	copy(out, n.active)
	return out
}

// ActiveOfKind filters Active() to events matching kind.
func (n *EventNetwork) ActiveOfKind(kind Kind) []Event {
	var out []Event
	for _, ev := range n.Active() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// RunManipulators invokes each manipulator with the events matching any
// of its subscribed kinds, in manipulator-list order.
func RunManipulators(n *EventNetwork, manipulators []Manipulator) error {
	for _, m := range manipulators {
		var matched []Event
		kinds := m.Kinds()
		for _, ev := range n.Active() {
			for _, k := range kinds {
				if ev.Kind == k {
					matched = append(matched, ev)
					break
				}
			}
		}
		if len(matched) == 0 {
			continue
		}
		if err := m.Manipulate(matched); err != nil {
			opsf("manipulator failed: %v", err)
			return err
		}
	}
	return nil
}

// Clear unconditionally drops every active event, regardless of Retain.
// Called once at the end of an invocation, as distinct from the per-tick
// ClearActiveEvents which honors retention.
func (n *EventNetwork) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = nil
}

// ClearActiveEvents drops every active event whose Retain flag is false,
// called once per tick after the synchronize phase.
func (n *EventNetwork) ClearActiveEvents() {
	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.active[:0]
	for _, ev := range n.active {
		if ev.Retain {
			kept = append(kept, ev)
		}
	}
	n.active = kept
}
