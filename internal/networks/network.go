package networks

import (
	"fmt"

	"github.com/openpass-sim/kernel/internal/binding"
	"github.com/openpass-sim/kernel/internal/config"
)

// Hooked is the per-tick lifecycle a network's instantiated modules may
// implement. The interface is optional as a whole: a module that doesn't
// implement Hooked simply never participates in any hook phase.
type Hooked interface {
	SlavePreHook() error
	SlavePreRunHook() error
	SlaveUpdateHook(timeMs int64, runResult interface{}) error
	SlavePostRunHook(runResult interface{}) error
	SlavePostHook() error
}

// Resolver looks up a registered binding.Library for (category, name,
// path) and wraps it as a Binding — implemented by a binding.Registry in
// production, stubbed in tests.
type Resolver interface {
	Resolve(category binding.Category, name, path string) *binding.Binding
}

// Instantiate iterates descs, resolving and instantiating one binding per
// descriptor. A single failed descriptor is logged and skipped; an error
// is returned only when descriptors were configured and none of them
// could be instantiated.
func Instantiate(resolver Resolver, category binding.Category, descs []config.LibraryDescriptor, info *binding.RuntimeInfo, callbacks *binding.Callbacks, collaborators ...interface{}) ([]interface{}, error) {
	var out []interface{}
	for _, d := range descs {
		b := resolver.Resolve(category, d.Name, d.Path)
		if b == nil {
			opsf("instantiate: no binding registered for %s/%s", category, d.Name)
			continue
		}
		impl, err := b.Instantiate(info, callbacks, collaborators...)
		if err != nil {
			opsf("instantiate: %s/%s: %v", category, d.Name, err)
			continue
		}
		out = append(out, impl)
	}
	if len(out) == 0 && len(descs) > 0 {
		return nil, fmt.Errorf("networks: no %s library instantiated out of %d configured", category, len(descs))
	}
	return out, nil
}

// RunHooks calls hook on every instance implementing Hooked, stopping and
// returning the first error.
func RunHooks(instances []interface{}, hook func(Hooked) error) error {
	for _, inst := range instances {
		h, ok := inst.(Hooked)
		if !ok {
			continue
		}
		if err := hook(h); err != nil {
			return err
		}
	}
	return nil
}
