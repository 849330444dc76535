// Package scheduler implements the task taxonomy, priority queue, and run
// loop: bootstrap/spawning/pre-agent/
// non-recurring-agent/recurring-agent/synchronize/finalize tasks, ordered
// by (nextFireTime, priority desc, insertionSeq asc).
package scheduler
