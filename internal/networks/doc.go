// Package networks implements the spawn, observation, and event-detector
// networks: thin wrappers around a binding.Binding plus
// zero-or-more instantiated modules, driven by a shared hook lifecycle.
package networks
