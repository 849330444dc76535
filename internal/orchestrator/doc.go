// Package orchestrator implements the run orchestrator: one invocation
// is init → loop → finalize, driven for experiment.numberOfInvocations
// invocations per experiment. It wires every other kernel package
// together (binding, world, agent, dataflow, networks, events,
// scheduler, datastore) and owns the process-wide lifecycle (stochastics
// seed, world reset, agent/spawn/event network clears) between
// invocations.
package orchestrator
