package defs

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"
)

// Registry holds named definition sources consulted before the loader's
// search paths. Packages that ship their own service definitions register
// a source from an init function and rely on blank imports to wire in.
type Registry struct {
	sources map[string]fs.FS
	mu      sync.RWMutex
}

// NewRegistry creates an empty definition-source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]fs.FS),
	}
}

// Register adds a definition source under the given name.
// Panics if the name is already registered.
func (r *Registry) Register(name string, fsys fs.FS) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		panic(fmt.Sprintf("definition source already registered: %s", name))
	}
	r.sources[name] = fsys
}

// Get returns the source registered under the given name.
func (r *Registry) Get(name string) (fs.FS, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fsys, ok := r.sources[name]
	return fsys, ok
}

// List returns all registered source names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ordered() []fs.FS {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]fs.FS, 0, len(names))
	for _, name := range names {
		out = append(out, r.sources[name])
	}
	return out
}

// --- Default Global Registry ---

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global definition-source registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a definition source to the default registry.
func Register(name string, fsys fs.FS) {
	defaultRegistry.Register(name, fsys)
}
