// Package world implements the road/lane graph, spatial indexing, and
// localization subsystem. It consumes an already-parsed scenery
// description — the XML/OpenDRIVE importer itself is an external
// collaborator — and builds the runtime graph in three ordered passes:
// direction marking, section/lane linking, junction wiring. The graph
// and its R-tree index are built once per run and never mutated
// afterward; per-invocation state lives in the Localizer alone.
package world
