package router

import "sync"

// Navigator owns the navigation history and the current State.
// Every location change, whatever its origin, goes through Router.Resolve.
type Navigator struct {
	router *Router

	mu          sync.Mutex
	entries     []string // canonical resolved locations; never an unmatched one
	index       int
	current     State
	subscribers map[int]func(State)
	nextID      int
}

// NewNavigator creates a navigator positioned at initial
func NewNavigator(r *Router, initial string) *Navigator {
	n := &Navigator{
		router:      r,
		subscribers: make(map[int]func(State)),
	}
	n.current = r.Resolve(initial)
	n.entries = []string{n.current.Canonical()}
	return n
}

// Router returns the router used for resolution
func (n *Navigator) Router() *Router { return n.router }

// Current returns the active state
func (n *Navigator) Current() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Push navigates to location and records a new history entry.
// Only the resolved location is recorded, so a redirected location is never
// reachable through Back. Pushing the current location, in any spelling, is a no-op.
func (n *Navigator) Push(location string) State {
	n.mu.Lock()
	state := n.router.Resolve(location)
	if state.Canonical() == n.current.Canonical() {
		n.mu.Unlock()
		return state
	}
	n.entries = append(n.entries[:n.index+1], state.Canonical())
	n.index = len(n.entries) - 1
	n.current = state
	n.mu.Unlock()

	n.notify(state)
	return state
}

// Replace navigates to location, overwriting the current history entry
func (n *Navigator) Replace(location string) State {
	n.mu.Lock()
	state := n.router.Resolve(location)
	changed := state.Canonical() != n.current.Canonical()
	n.entries[n.index] = state.Canonical()
	n.current = state
	n.mu.Unlock()

	if changed {
		n.notify(state)
	}
	return state
}

// Load handles a location the environment has already made current, such as the
// location a process starts with. An unmatched one is replaced by its redirect
// target rather than pushed.
func (n *Navigator) Load(location string) State {
	return n.Replace(location)
}

// Back moves one entry back. It returns false when there is no earlier entry.
func (n *Navigator) Back() (State, bool) {
	return n.Go(-1)
}

// Forward moves one entry forward. It returns false when there is no later entry.
func (n *Navigator) Forward() (State, bool) {
	return n.Go(1)
}

// Go moves delta entries through history, re-resolving the target entry
func (n *Navigator) Go(delta int) (State, bool) {
	n.mu.Lock()
	target := n.index + delta
	if delta == 0 || target < 0 || target >= len(n.entries) {
		state := n.current
		n.mu.Unlock()
		return state, false
	}
	n.index = target
	n.current = n.router.Resolve(n.entries[target])
	state := n.current
	n.mu.Unlock()

	n.notify(state)
	return state, true
}

// CanGoBack reports whether Back would move
func (n *Navigator) CanGoBack() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index > 0
}

// CanGoForward reports whether Forward would move
func (n *Navigator) CanGoForward() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index < len(n.entries)-1
}

// Entries returns a copy of the history
func (n *Navigator) Entries() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.entries))
	copy(out, n.entries)
	return out
}

// Snapshot returns the history and the current index for persistence
func (n *Navigator) Snapshot() ([]string, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.entries))
	copy(out, n.entries)
	return out, n.index
}

// Restore replaces the history with a persisted one. Every entry is re-resolved,
// so stale or tampered entries collapse to their redirect target.
func (n *Navigator) Restore(entries []string, index int) State {
	if len(entries) == 0 {
		return n.Load(Root)
	}
	if index < 0 || index >= len(entries) {
		index = len(entries) - 1
	}

	resolved := make([]string, len(entries))
	for i, entry := range entries {
		resolved[i] = n.router.Resolve(entry).Canonical()
	}

	n.mu.Lock()
	n.entries = resolved
	n.index = index
	n.current = n.router.Resolve(resolved[index])
	state := n.current
	n.mu.Unlock()

	n.notify(state)
	return state
}

// Subscribe registers fn to be called after every location change.
// The returned function removes the subscription.
func (n *Navigator) Subscribe(fn func(State)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subscribers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subscribers, id)
		n.mu.Unlock()
	}
}

func (n *Navigator) notify(state State) {
	n.mu.Lock()
	subs := make([]func(State), 0, len(n.subscribers))
	for id := 0; id < n.nextID; id++ {
		if fn, ok := n.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
