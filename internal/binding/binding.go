package binding

import (
	"fmt"
	"sync"
)

// Binding exclusively owns a Library plus zero-or-one instantiated
// implementation. Instantiate loads on first
// call and returns a borrowed pointer; callers never delete the returned
// value, only call Unload on the Binding.
type Binding struct {
	lib  *Library
	mu   sync.Mutex
	impl interface{}
}

// New creates a binding over a not-yet-loaded library.
func New(lib *Library) *Binding {
	return &Binding{lib: lib}
}

// Instantiate returns the binding's implementation, loading the library
// and creating the instance on first call. A failure to load, resolve
// symbols, or construct the instance is fatal to the owning subsystem; the
// binding is left unloaded so a later retry starts clean.
func (b *Binding) Instantiate(info *RuntimeInfo, callbacks *Callbacks, args ...interface{}) (interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.impl != nil {
		return b.impl, nil
	}
	if err := b.lib.resolve(); err != nil {
		return nil, err
	}
	impl, err := b.lib.create(info, callbacks, args...)
	if err != nil {
		b.lib.release()
		return nil, fmt.Errorf("binding: %s/%s: create instance: %w", b.lib.Category, b.lib.Name, err)
	}
	if impl == nil {
		b.lib.release()
		return nil, fmt.Errorf("binding: %s/%s: create instance returned nil", b.lib.Category, b.lib.Name)
	}
	b.impl = impl
	return impl, nil
}

// InstantiateNew resolves the library's symbols (loading on first call,
// same as Instantiate) but always calls CreateInstance fresh rather than
// returning a cached singleton. This is how the Model category is used:
// one loaded library produces one independent implementation per agent
// component, each carrying its own RuntimeInfo.AgentID, whereas every
// other category's binding owns exactly zero-or-one instance for the life
// of the binding. The returned instances are not tracked by this Binding;
// their owning agent component simply drops the reference when the agent
// is removed; components are owned by their agent.
func (b *Binding) InstantiateNew(info *RuntimeInfo, callbacks *Callbacks, args ...interface{}) (interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.lib.resolve(); err != nil {
		return nil, err
	}
	impl, err := b.lib.create(info, callbacks, args...)
	if err != nil {
		return nil, fmt.Errorf("binding: %s/%s: create instance: %w", b.lib.Category, b.lib.Name, err)
	}
	if impl == nil {
		return nil, fmt.Errorf("binding: %s/%s: create instance returned nil", b.lib.Category, b.lib.Name)
	}
	return impl, nil
}

// Instantiated reports whether Instantiate has already succeeded.
func (b *Binding) Instantiated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.impl != nil
}

// Unload destroys the implementation (if any) then releases the
// library's resolved symbols.
func (b *Binding) Unload() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.impl != nil && b.lib.destroy != nil {
		b.lib.destroy(b.impl)
	}
	b.impl = nil
	b.lib.release()
}

// Category reports which plug-in category this binding was constructed
// for.
func (b *Binding) Category() Category {
	return b.lib.Category
}

// Name reports the library's configured name.
func (b *Binding) Name() string {
	return b.lib.Name
}
