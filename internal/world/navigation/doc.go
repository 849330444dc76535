// Package navigation builds agent routes through a world.Graph and caches
// the lane/road streams derived from them.
package navigation
