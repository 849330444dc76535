package dataflow

import (
	"fmt"
	"time"

	"github.com/openpass-sim/kernel/internal/signal"
)

// Model is the capability interface a bound component-model library
// implementation must satisfy. The kernel calls these three methods on the
// scheduling thread only; UpdateOutput returns nil to mean "no new output
// this call".
type Model interface {
	Trigger(t time.Duration) error
	UpdateInput(linkID int, in signal.Signal, t time.Duration) error
	UpdateOutput(linkID int, t time.Duration) (signal.Signal, error)
}

// Component is one node of the agent dataflow graph.
// isInit components fire their trigger/update cycle exactly once, right
// after spawn; Fired tracks whether that has happened.
type Component struct {
	Name    string
	AgentID int64
	Impl    Model

	Inputs  map[int]*InputPort
	Outputs map[int]*OutputPort

	IsInit bool

	// IsDynamics marks a component whose dynamics output drives the
	// agent's world pose. Components like a driver model may emit a
	// dynamics-typed signal as a velocity target without owning the
	// agent's motion; only one component per agent should carry this.
	IsDynamics   bool
	Priority     int
	CycleTime    time.Duration
	OffsetTime   time.Duration
	ResponseTime time.Duration

	Fired bool
}

// NewComponent creates an empty component bound to impl. Ports are added
// with AddInput/AddOutput before the component is wired into any
// channels.
func NewComponent(name string, agentID int64, impl Model) *Component {
	return &Component{
		Name:    name,
		AgentID: agentID,
		Impl:    impl,
		Inputs:  make(map[int]*InputPort),
		Outputs: make(map[int]*OutputPort),
	}
}

// AddInput registers a new input port keyed by link id.
func (c *Component) AddInput(linkID int) *InputPort {
	p := NewInputPort(linkID)
	c.Inputs[linkID] = p
	return p
}

// AddOutput registers a new output port, and its buffer, keyed by link id.
func (c *Component) AddOutput(linkID int) *OutputPort {
	p := NewOutputPort(linkID)
	c.Outputs[linkID] = p
	return p
}

// UpdateInputs runs step 1 of the per-tick ordering: copy every
// wired input channel's currently published slot into the implementation.
func (c *Component) UpdateInputs(t time.Duration) error {
	for linkID, port := range c.Inputs {
		sig, ok := port.Load()
		if !ok {
			continue
		}
		if err := c.Impl.UpdateInput(linkID, sig, t); err != nil {
			return fmt.Errorf("component %s: update input %d: %w", c.Name, linkID, err)
		}
	}
	return nil
}

// RunTrigger runs step 2: the component's compute step.
func (c *Component) RunTrigger(t time.Duration) error {
	if err := c.Impl.Trigger(t); err != nil {
		return fmt.Errorf("component %s: trigger: %w", c.Name, err)
	}
	c.Fired = true
	return nil
}

// UpdateOutputs runs step 3: publish the staging slot into each output
// channel's visible slot. It is invoked by the scheduler at the
// component's scheduled publish time, which may trail the trigger time
// by ResponseTime.
func (c *Component) UpdateOutputs(t time.Duration) error {
	for linkID, port := range c.Outputs {
		sig, err := c.Impl.UpdateOutput(linkID, t)
		if err != nil {
			return fmt.Errorf("component %s: update output %d: %w", c.Name, linkID, err)
		}
		if sig == nil {
			continue
		}
		port.Buffer.Publish(sig)
	}
	return nil
}
