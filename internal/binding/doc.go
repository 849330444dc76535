// Package binding implements the plug-in binding layer.
// Every library category (world, stochastics, observation, spawn,
// event-detector, manipulator, data-store, model) exposes the same three
// C-linkage-shaped entry points: OpenPASS_GetVersion,
// OpenPASS_CreateInstance, OpenPASS_DestroyInstance.
// A Binding owns a Library's loaded handle and zero-or-one instantiated
// implementation; Library resolves those three symbols lazily.
// Go has no in-process equivalent of dlopen with dlclose-on-demand that
// works portably, so a Library is backed by one of two resolution modes:
//   - Dynamic: the standard library "plugin" package, for .so plug-ins
//     built with `go build -buildmode=plugin` (Linux only).
//   - Static: an in-process registry (Register) used by statically
//     linked "libraries" — the kernel's own shipped model/world/etc.
//     implementations, and test doubles.
//
// Both modes honor the same contract: Instantiate loads on first call
// and returns a borrowed pointer; Unload destroys the instance and drops
// the library's resolved symbols so a failed or torn-down binding leaves
// no partial state.
package binding
