// Package trajectoryfollower implements a dynamics component that
// replays a pre-recorded world-coordinate trajectory, publishing a
// dynamics signal per cycle. It is the simplest complete instance of the
// "model" plug-in category and the usual vehicle-under-test stand-in for
// scenario replays: scenario entities configured with this component
// move exactly as scripted, optionally modulated by an external
// acceleration input from a braking or assistance component.
package trajectoryfollower
