// Package kinds implements the Component Kind registry and dependency
// resolver.
//
// A Kind is the Go analogue of a plugin class: a declared component that
// belongs to a component_namespace, carries a Role (base, plugin_base, or
// plugin), and optionally declares Predicates on other Kinds it requires to
// exist before it can be constructed. Kinds self-register from plugin
// package init() functions, the same auto-registration pattern used
// throughout the example registry this package is modeled on: a plugin
// package imports kinds, calls kinds.Default.MustRegister in its own init(), and the
// import graph alone determines what's available at boot.
//
// Spec lives here rather than in a separate config package because
// Kind.ParseConfig must return Specs, and the config package needs to read
// Kinds out of the Registry to validate and bind them — putting Spec in
// config would create an import cycle between the two packages.
package kinds

import "fmt"

// Role classifies what a Kind may do in the dependency graph.
type Role string

const (
	// RoleBase marks a foundational Kind that other Kinds depend on but
	// that is never itself bound from configuration.
	RoleBase Role = "base"
	// RolePluginBase marks a Kind that defines a component_namespace and
	// accepts concrete plugins underneath it (e.g. "triggers", "mq").
	RolePluginBase Role = "plugin_base"
	// RolePlugin marks a concrete, instantiable Kind nested under a
	// plugin_base. Only plugins are ever topologically ordered and
	// constructed by the Instance Manager.
	RolePlugin Role = "plugin"
)

// Predicate names a dependency on another Kind, either by its
// component_namespace (any plugin_type satisfies it) or by an exact
// plugin_type within that namespace.
type Predicate struct {
	Namespace  string
	PluginType string // empty: any plugin under Namespace satisfies this predicate
}

// Matches reports whether the given Kind satisfies this Predicate.
func (p Predicate) Matches(k *Kind) bool {
	if k.Namespace != p.Namespace {
		return false
	}
	if p.PluginType == "" {
		return true
	}
	return k.PluginType == p.PluginType
}

func (p Predicate) String() string {
	if p.PluginType == "" {
		return p.Namespace
	}
	return fmt.Sprintf("%s/%s", p.Namespace, p.PluginType)
}

// Spec is one bound configuration entry produced by the config Binder for a
// Kind: a plugin_type paired with its (possibly nil) config_data item.
// It is returned by Kind.ParseConfig and consumed by the Instance Manager
// to construct Handlers.
type Spec struct {
	Namespace  string
	PluginType string
	Data       map[string]interface{}
}

// ParseConfigFunc overrides how a plugin_base turns a raw config_data item
// into zero or more Specs. The default binder calls this when a plugin_base
// Kind's ParseConfig is non-nil instead of performing its own scalar/list
// normalization; this mirrors the original's ability for a plugin_base
// subclass to override ParseConfig.
type ParseConfigFunc func(pluginType string, raw interface{}) ([]Spec, error)

// Kind describes one registered component class.
type Kind struct {
	// Namespace is the component_namespace this Kind belongs to (for a
	// plugin, the namespace of its plugin_base parent; for a plugin_base,
	// the namespace it defines).
	Namespace string
	// PluginType is this Kind's name within its namespace. Empty for
	// RoleBase and RolePluginBase kinds, which are addressed by
	// Namespace alone.
	PluginType string
	Role       Role
	// Requires lists Predicates on other Kinds; Resolve orders every Kind
	// matching one of them before this Kind. A Predicate that matches no
	// Kind being resolved adds no constraint and is not an error.
	Requires []Predicate
	// Schema declares validation tags (go-playground/validator syntax)
	// keyed by config_data field name, used by the Binder to reject
	// malformed configuration before construction begins.
	Schema map[string]string
	// Defaults is layered underneath every config_data item bound to this
	// Kind: the Binder starts from a copy of Defaults and overwrites keys
	// present in the user-supplied item, so configuration only needs to
	// name what it overrides.
	Defaults map[string]interface{}
	// ParseConfig, if set, overrides the Binder's default config_data
	// normalization for plugins under this plugin_base.
	ParseConfig ParseConfigFunc
}

// ID returns the Namespace/PluginType pair that uniquely identifies a Kind
// within the Registry.
func (k *Kind) ID() string {
	if k.PluginType == "" {
		return k.Namespace
	}
	return fmt.Sprintf("%s/%s", k.Namespace, k.PluginType)
}
