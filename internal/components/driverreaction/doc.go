// Package driverreaction implements a sample cognitive-driver-model
// component: a concrete instance of the generic "model" plug-in
// category, loaded through internal/binding exactly like any other
// component library.
// The pipeline runs perception, interpretation, and decision in order:
// perceived agents are buffered for a stochastically drawn reaction time
// before they become visible to the rest of the model, and a family of
// interpreter functions each score one aspect of the situation
// (following distance, collision risk, conflict, target lane, target
// velocity) to produce the decision. There is no separate memory stage:
// an agent is visible only while it appears in the latency-delayed
// buffer slot, and is not retained once it leaves that slot.
package driverreaction
