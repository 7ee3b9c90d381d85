package supervisor

import (
	"sync"

	"github.com/gomind-actions/actionkit/action"
)

// instances backs resolution mode (b) from §4.3: an instance-scoped
// supervisor selected by an opaque handle supplied in Options. Grounded on
// core/config.go's pattern of validating a provider string against a known
// set before constructing anything — here the set is "instance handles
// that were explicitly registered."
var (
	instancesMu sync.RWMutex
	instances   = map[string]*Supervisor{}
)

// RegisterInstance makes handle resolvable by Resolve, backed by a fresh
// Supervisor. Re-registering the same handle replaces its supervisor.
func RegisterInstance(handle string) *Supervisor {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	s := &Supervisor{name: handle}
	instances[handle] = s
	return s
}

// UnregisterInstance removes a previously registered handle.
func UnregisterInstance(handle string) {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	delete(instances, handle)
}

// Resolve looks up the supervisor for an instance handle. An empty handle
// resolves to the fixed global supervisor (mode a). An unknown handle is
// rejected with Configuration — §4.3 requires spawn_monitored's target be
// statically resolvable, never a free-form string.
func Resolve(handle string) (*Supervisor, error) {
	if handle == "" {
		return Default(), nil
	}
	instancesMu.RLock()
	defer instancesMu.RUnlock()
	s, ok := instances[handle]
	if !ok {
		return nil, action.NewConfiguration("unknown instance handle: " + handle)
	}
	return s, nil
}
