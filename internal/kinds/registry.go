package kinds

import (
	"fmt"
	"sync"
)

// Registry holds every Kind registered by imported plugin packages. A
// process normally uses the package-level Default registry; tests construct
// their own with New to avoid cross-test pollution.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]*Kind
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// Default is the process-wide Registry that plugin package init()
// functions register themselves into.
var Default = New()

// Register adds k to the registry. Registering the identical Kind value a
// second time under the same ID is a no-op (idempotent — repeated package
// imports shouldn't fail startup); registering a *different* Kind under an
// ID already taken is rejected, since two plugin definitions can't share
// one (component_namespace, plugin_type) identity.
func (r *Registry) Register(k *Kind) error {
	if k.Namespace == "" {
		return fmt.Errorf("kinds: Kind.Namespace must not be empty")
	}
	if k.Role == RolePlugin && k.PluginType == "" {
		return fmt.Errorf("kinds: plugin Kind in namespace %q must have a PluginType", k.Namespace)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := k.ID()
	if existing, exists := r.kinds[id]; exists {
		if existing == k {
			return nil
		}
		return fmt.Errorf("kinds: %q already registered with a different definition", id)
	}
	r.kinds[id] = k
	return nil
}

// MustRegister calls Register and panics on error. Intended for plugin
// package init() functions, where a malformed Kind is a programming error
// that should fail fast at import time.
func (r *Registry) MustRegister(k *Kind) {
	if err := r.Register(k); err != nil {
		panic(err)
	}
}

// Get looks up a Kind by its exact ID ("namespace" or "namespace/type").
func (r *Registry) Get(id string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[id]
	return k, ok
}

// PluginBase returns the registered plugin_base Kind for a namespace, if
// exactly one exists. Zero or more-than-one plugin_base for a namespace is
// reported to the caller so the config Binder can decide what to do (it
// skips a namespace with none and rejects one with more than one).
func (r *Registry) PluginBase(namespace string) (*Kind, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *Kind
	count := 0
	for _, k := range r.kinds {
		if k.Role == RolePluginBase && k.Namespace == namespace {
			found = k
			count++
		}
	}
	return found, count
}

// Plugins returns every RolePlugin Kind registered under a namespace.
func (r *Registry) Plugins(namespace string) []*Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Kind
	for _, k := range r.kinds {
		if k.Role == RolePlugin && k.Namespace == namespace {
			out = append(out, k)
		}
	}
	return out
}

// PluginsOfType returns the plugin Kinds under namespace whose PluginType
// matches, or all plugins in the namespace if pluginType is empty.
func (r *Registry) PluginsOfType(namespace, pluginType string) []*Kind {
	all := r.Plugins(namespace)
	if pluginType == "" {
		return all
	}
	var out []*Kind
	for _, k := range all {
		if k.PluginType == pluginType {
			out = append(out, k)
		}
	}
	return out
}

// Match returns every registered plugin Kind that satisfies p.
func (r *Registry) Match(p Predicate) []*Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Kind
	for _, k := range r.kinds {
		if k.Role == RolePlugin && p.Matches(k) {
			out = append(out, k)
		}
	}
	return out
}

// All returns every registered Kind, in no particular order.
func (r *Registry) All() []*Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	return out
}
