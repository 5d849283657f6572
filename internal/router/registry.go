package router

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownTarget is returned when no factory is registered for a target
var ErrUnknownTarget = errors.New("no component registered for target")

// Factory builds the component for a target. params is empty unless the route
// forwards them (Route.Props).
type Factory[C any] func(params Params) C

// Registry maps route targets to component factories.
// The router only deals in identifiers; how a component is built is up to the registrant.
type Registry[C any] struct {
	mu        sync.RWMutex
	factories map[Target]Factory[C]
}

// NewRegistry creates an empty registry
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{factories: make(map[Target]Factory[C])}
}

// Register associates factory with target, replacing any previous one
func (r *Registry[C]) Register(target Target, factory Factory[C]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[target] = factory
}

// Has reports whether target has a factory
func (r *Registry[C]) Has(target Target) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[target]
	return ok
}

// Targets returns the registered targets in sorted order
func (r *Registry[C]) Targets() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Target, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Instantiate builds the component for state
func (r *Registry[C]) Instantiate(state State) (C, error) {
	r.mu.RLock()
	factory, ok := r.factories[state.Target()]
	r.mu.RUnlock()

	if !ok {
		var zero C
		return zero, fmt.Errorf("%w: %q", ErrUnknownTarget, state.Target())
	}
	return factory(state.Props()), nil
}

// Missing returns the targets of routes that have no factory
func (r *Registry[C]) Missing(routes []Route) []Target {
	var missing []Target
	for _, route := range routes {
		if route.Target != "" && !r.Has(route.Target) {
			missing = append(missing, route.Target)
		}
	}
	return missing
}
