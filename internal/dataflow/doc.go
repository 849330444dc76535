// Package dataflow implements the per-agent dataflow graph:
// components as nodes, channels as directed edges between one source
// output port and N target input ports, with a double-buffered signal
// exchange at each port.
// Ownership is explicit: a component exclusively owns its
// output buffers; channels hold non-owning references into those buffers.
// Publication is a single atomic pointer swap, so a reader
// observes either the old or the new signal, never a torn write.
package dataflow
