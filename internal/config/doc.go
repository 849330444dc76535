// Package config loads the kernel's experiment/environment/scenario
// configuration. The schema covers experimentConfig, environmentConfig,
// scenario.*, and per-component scheduling parameters (priority,
// cycleTime, offsetTime, responseTime, isInit).
// Loading merges the decoded file over built-in defaults, so partial
// hand-edited files don't clobber unspecified values. A YAML decode path
// is offered alongside JSON for hand-edited experiment files.
package config
