// Package spawn implements the spawn-point network: plug-in
// modules that produce new-agent requests before the run loop starts and
// at runtime, queued for the scheduler to drain each tick.
package spawn
