// Package events implements the event/manipulator pipeline:
// an active-event store for the current tick, subscribed by kind, and
// cleared after synchronize subject to per-event retention.
package events
