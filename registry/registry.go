// Package registry provides an in-process name->Action registry, the
// capability the Tool surface (§6) uses to resolve a string name to an
// Action. Grounded on the teacher's core.Discovery/core.Registry
// register/lookup shape, stripped of the Redis-backed cross-host discovery
// that shape exists for in the teacher (see DESIGN.md "left unbound" —
// cross-host distribution is a Non-goal here).
package registry

import (
	"sync"

	"github.com/gomind-actions/actionkit/action"
)

// Registry is a concurrency-safe, in-process map of action name to Action.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]action.Action
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{actions: make(map[string]action.Action)}
}

// Register adds act under its declared metadata name. Returns an
// *action.Exception{Kind: Configuration} if the name is already taken or
// empty.
func (r *Registry) Register(act action.Action) error {
	name := act.Metadata().Name
	if name == "" {
		return action.NewConfiguration("action name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[name]; exists {
		return action.NewConfiguration("action already registered: " + name)
	}
	r.actions[name] = act
	return nil
}

// MustRegister panics on error; convenient for package-level init blocks in
// action libraries built atop this engine.
func (r *Registry) MustRegister(act action.Action) {
	if err := r.Register(act); err != nil {
		panic(err)
	}
}

// Lookup resolves a name to its Action. ok is false if unregistered.
func (r *Registry) Lookup(name string) (action.Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	act, ok := r.actions[name]
	return act, ok
}

// Unregister removes an action by name. No-op if not present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.actions, name)
}

// Names returns every registered action name, unordered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}
