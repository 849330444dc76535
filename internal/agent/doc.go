// Package agent implements the agent factory and network:
// agent lifecycle, deferred update/remove queues drained at
// synchronization time, relocalization, and the per-tick global-data
// publish.
package agent
