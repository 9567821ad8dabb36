package engine

import (
	"fmt"
	"sync"
)

// Registry manages the engines constructed for one session.
type Registry struct {
	mu      sync.RWMutex
	engines map[Type]Engine
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[Type]Engine)}
}

// Register adds an engine. Duplicate registration is a programming error and
// is rejected.
func (r *Registry) Register(e Engine) error {
	if e == nil {
		return fmt.Errorf("engine cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[e.Type()]; exists {
		return fmt.Errorf("engine %q already registered", e.Type())
	}
	r.engines[e.Type()] = e
	return nil
}

// Get retrieves an engine by type.
func (r *Registry) Get(t Type) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[t]
	return e, ok
}

// List returns all registered engine types in priority order.
func (r *Registry) List() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Type, 0, len(r.engines))
	for _, t := range Priority {
		if _, ok := r.engines[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Supported returns the types of registered engines that report support, in
// priority order.
func (r *Registry) Supported() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Type, 0, len(r.engines))
	for _, t := range Priority {
		if e, ok := r.engines[t]; ok && e.IsSupported() {
			out = append(out, t)
		}
	}
	return out
}
