package binding

import (
	"fmt"
	"plugin"
)

// Library resolves a category's three ABI symbols lazily.
// A Library with a non-empty Path resolves via the standard library
// "plugin" package; otherwise it resolves against the static registry
// (see registry.go).
type Library struct {
	Category Category
	Name     string
	Path     string   // empty => static registry lookup

	resolved bool
	version  VersionFunc
	create   Factory
	destroy  Destroyer
}

// NewLibrary describes (but does not yet load) one library.
func NewLibrary(category Category, name, path string) *Library {
	return &Library{Category: category, Name: name, Path: path}
}

// resolve binds the library's symbols on first call. A failure here
// leaves resolved false so a subsequent Instantiate can be retried
// without residual state.
func (l *Library) resolve() error {
	if l.resolved {
		return nil
	}
	if l.Path == "" {
		entry, ok := lookupStatic(l.Category, l.Name)
		if !ok {
			return errNotRegistered(l.Category, l.Name)
		}
		l.version, l.create, l.destroy = entry.version, entry.create, entry.destroy
		l.resolved = true
		return nil
	}

	p, err := plugin.Open(l.Path)
	if err != nil {
		return fmt.Errorf("binding: open plugin %s: %w", l.Path, err)
	}
	versionSym, err := p.Lookup("OpenPASS_GetVersion")
	if err != nil {
		return fmt.Errorf("binding: %s: resolve OpenPASS_GetVersion: %w", l.Path, err)
	}
	createSym, err := p.Lookup("OpenPASS_CreateInstance")
	if err != nil {
		return fmt.Errorf("binding: %s: resolve OpenPASS_CreateInstance: %w", l.Path, err)
	}
	destroySym, err := p.Lookup("OpenPASS_DestroyInstance")
	if err != nil {
		return fmt.Errorf("binding: %s: resolve OpenPASS_DestroyInstance: %w", l.Path, err)
	}

	version, ok := versionSym.(VersionFunc)
	if !ok {
		return fmt.Errorf("binding: %s: OpenPASS_GetVersion has unexpected signature", l.Path)
	}
	create, ok := createSym.(Factory)
	if !ok {
		return fmt.Errorf("binding: %s: OpenPASS_CreateInstance has unexpected signature", l.Path)
	}
	destroy, ok := destroySym.(Destroyer)
	if !ok {
		return fmt.Errorf("binding: %s: OpenPASS_DestroyInstance has unexpected signature", l.Path)
	}

	l.version, l.create, l.destroy = version, create, destroy
	l.resolved = true
	return nil
}

// Version returns the resolved library's version string, resolving it
// first if needed.
func (l *Library) Version() (string, error) {
	if err := l.resolve(); err != nil {
		return "", err
	}
	return l.version(), nil
}

// release drops the resolved symbols so the next Instantiate re-resolves
// from scratch. Go's plugin package exposes no dlclose equivalent, so
// this is the closest honest analogue to "unloads the handle": the
// library forgets its binding and must be reopened.
func (l *Library) release() {
	l.resolved = false
	l.version = nil
	l.create = nil
	l.destroy = nil
}
