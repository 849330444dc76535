package binding

import "sync"

// Registry caches one Binding per (category, name, path) tuple so
// repeated lookups for the same configured library reuse the same
// owning Binding instead of creating a second loader around the same
// handle.
// It satisfies internal/networks.Resolver.
type Registry struct {
	mu       sync.Mutex
	bindings map[registryKey]*Binding
}

type registryKey struct {
	category Category
	name     string
	path     string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{bindings: map[registryKey]*Binding{}}
}

// Resolve returns the Binding for (category, name, path), creating one
// over a not-yet-loaded Library on first lookup.
func (r *Registry) Resolve(category Category, name, path string) *Binding {
	key := registryKey{category, name, path}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bindings[key]; ok {
		return b
	}
	b := New(NewLibrary(category, name, path))
	r.bindings[key] = b
	return b
}

// UnloadAll tears down every binding this registry has created, in
// arbitrary order, and empties the registry so a
// subsequent Resolve starts clean.
func (r *Registry) UnloadAll() {
	r.mu.Lock()
	bindings := make([]*Binding, 0, len(r.bindings))
	for _, b := range r.bindings {
		bindings = append(bindings, b)
	}
	r.bindings = map[registryKey]*Binding{}
	r.mu.Unlock()

	for _, b := range bindings {
		b.Unload()
	}
}
