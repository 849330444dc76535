// Package eventdetect implements the event-detector network: plug-in
// modules that read world state and publish events into the event network
// ahead of the manipulator pass.
package eventdetect
