// Package stochastics implements the kernel's built-in Stochastics
// plug-in category. It backs navigation's stochastic route construction
// and the run orchestrator's per-invocation seeding and
// environment-parameter sampling. The generator is seeded from the
// experiment's configured seed rather than wall-clock time so a run is
// reproducible given that seed.
package stochastics
