package keybinds

import (
	"sort"
	"strings"
)

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry manages keybinding mappings and matching
type Registry struct {
	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action

	// parents maps a context to the one it falls back to. Text entry contexts
	// have no parent so typed characters never trigger global actions.
	parents map[Context]Context
}

// NewRegistry creates a new keybinding registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		parents: map[Context]Context{
			ContextMenu:   ContextGlobal,
			ContextList:   ContextGlobal,
			ContextDetail: ContextGlobal,
			ContextForm:   ContextGlobal,
		},
	}
}

// Register adds a keybinding to the registry
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple registers multiple keybindings for the same action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Unbind removes key from context
func (r *Registry) Unbind(context Context, key string) {
	delete(r.bindings[context], key)
}

// Match attempts to match a key to an action in the given context.
// The context is checked first, then its parent.
func (r *Registry) Match(context Context, key string) (Action, bool) {
	for ctx, ok := context, true; ok; ctx, ok = r.parents[ctx] {
		if action, found := r.bindings[ctx][key]; found {
			return action, true
		}
	}
	return "", false
}

// GetBinding returns the key(s) bound to an action in a context, sorted
func (r *Registry) GetBinding(context Context, action Action) []string {
	var keys []string
	for ctx, ok := context, true; ok && len(keys) == 0; ctx, ok = r.parents[ctx] {
		for key, act := range r.bindings[ctx] {
			if act == action {
				keys = append(keys, key)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		// Shorter keys first so "d" reads before "delete"
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// GetBindingString returns a human-readable string of keys bound to an action
func (r *Registry) GetBindingString(context Context, action Action) string {
	keys := r.GetBinding(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, ", ")
}

// ListBindings returns the bindings of a context followed by the ones it inherits
func (r *Registry) ListBindings(context Context) []Binding {
	var bindings []Binding
	for ctx, ok := context, true; ok; ctx, ok = r.parents[ctx] {
		keys := make([]string, 0, len(r.bindings[ctx]))
		for key := range r.bindings[ctx] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			bindings = append(bindings, Binding{Key: key, Action: r.bindings[ctx][key], Context: ctx})
		}
	}
	return bindings
}

// HasBinding checks if a key is bound in a context or its parent
func (r *Registry) HasBinding(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}

// Clone creates a deep copy of the registry
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	clone.Merge(r)
	return clone
}

// Merge combines bindings from another registry, with other taking precedence
func (r *Registry) Merge(other *Registry) {
	for context, contextBindings := range other.bindings {
		for key, action := range contextBindings {
			r.Register(context, key, action)
		}
	}
}
