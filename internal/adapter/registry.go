package adapter

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrAdapterNotFound indicates a lookup for an adapter name that was never
// registered.
var ErrAdapterNotFound = errors.New("adapter not found")

// Registry is an explicit, process-local collection of named adapters.
// Backends are registered at wiring time; there is no global registry and no
// runtime discovery.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under the given name. Registering a duplicate
// name is an error.
func (r *Registry) Register(name string, a Adapter) error {
	if name == "" {
		return fmt.Errorf("adapter name must not be empty")
	}
	if a == nil {
		return fmt.Errorf("adapter %q must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("adapter %q already registered", name)
	}
	r.adapters[name] = a
	return nil
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAdapterNotFound, name)
	}
	return a, nil
}

// Names returns the registered adapter names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cleanup calls Cleanup on every registered adapter and joins the failures.
func (r *Registry) Cleanup() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, a := range r.adapters {
		if err := a.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("adapter %q cleanup: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
