// Package config implements the Configuration Binder: turning a
// tree-shaped document (component_namespace -> plugin_type -> list<item>)
// into the ordered kinds.Spec slice the Instance Manager constructs from.
//
// Grounded on the original's Config.parse_conf_component_ns
// (palvella/lib/instance/config.py) — the per-component_namespace lookup,
// the scalar-shorthand normalization, the schema validation call site, and
// the per-kind default-instance emission are all carried over. Schema
// validation itself is done with go-playground/validator/v10, generalized
// from the teacher's internal/validator/validator.go (per-HTTP-request
// struct validation) to per-field validation of a generic config_data map.
package config

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/streamspace/automationd/internal/apperrors"
	"github.com/streamspace/automationd/internal/kinds"
	"github.com/streamspace/automationd/internal/logger"
)

var validate = validator.New()

// Document is the parsed shape of a configuration file: component
// namespace -> plugin_type -> list of config_data items (or a bare
// plugin_type string, the scalar shorthand for `{plugin_type: []}`).
type Document map[string]interface{}

// ParseYAML parses raw YAML bytes into a Document.
func ParseYAML(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.Config("config.ParseYAML", "malformed YAML document", err)
	}
	return doc, nil
}

// Bind walks doc and produces the full ordered set of kinds.Spec for every
// plugin Kind registered in reg: one Spec per configured item, plus a
// default Spec (empty config_data, layered over the kind's default
// document) for every plugin Kind the document never mentions and whose
// default document passes its schema. A plugin Kind whose defaults fail
// its schema gets no default Spec (see defaultSpecs).
func Bind(reg *kinds.Registry, doc Document) ([]kinds.Spec, error) {
	log := logger.Component("config")
	covered := make(map[string]bool)
	var specs []kinds.Spec

	for namespace, rawValue := range doc {
		base, count := reg.PluginBase(namespace)
		if count == 0 {
			log.Warn().Str("component_namespace", namespace).Msg("no plugin_base registered for this namespace, ignoring")
			continue
		}
		if count > 1 {
			return nil, apperrors.Config("config.Bind", fmt.Sprintf("ambiguous plugin_base for component_namespace %q", namespace), nil)
		}

		nsSpecs, err := bindNamespace(reg, base, namespace, rawValue, covered)
		if err != nil {
			return nil, err
		}
		specs = append(specs, nsSpecs...)
	}

	specs = append(specs, defaultSpecs(reg, covered)...)
	return specs, nil
}

// bindNamespace binds the single component_namespace entry rawValue against
// base's registered plugins, marking each plugin_type it finds items for
// as covered so Bind doesn't also emit a default Spec for it.
func bindNamespace(reg *kinds.Registry, base *kinds.Kind, namespace string, rawValue interface{}, covered map[string]bool) ([]kinds.Spec, error) {
	if base.ParseConfig != nil {
		return bindWithOverride(base, namespace, rawValue, covered)
	}

	// Scalar shorthand: a bare string is an alias for {string: []}.
	if s, ok := rawValue.(string); ok {
		rawValue = map[string]interface{}{s: []interface{}{}}
	}

	mapping, ok := toStringMap(rawValue)
	if !ok {
		return nil, apperrors.Config("config.Bind", fmt.Sprintf("component_namespace %q must be a scalar or mapping", namespace), nil)
	}

	var specs []kinds.Spec
	// Deterministic plugin_type iteration order for reproducible startup.
	pluginTypes := make([]string, 0, len(mapping))
	for pt := range mapping {
		pluginTypes = append(pluginTypes, pt)
	}
	sort.Strings(pluginTypes)

	for _, pluginType := range pluginTypes {
		items, ok := toList(mapping[pluginType])
		if !ok {
			logger.Component("config").Warn().
				Str("component_namespace", namespace).Str("plugin_type", pluginType).
				Msg("config_data for plugin_type must be a list, skipping")
			continue
		}

		plugin, ok := exactlyOnePlugin(reg, namespace, pluginType)
		if !ok {
			return nil, apperrors.Config("config.Bind", fmt.Sprintf("plugin_type %q under %q does not resolve to exactly one plugin kind", pluginType, namespace), nil)
		}

		kindID := plugin.ID()
		covered[kindID] = true

		if len(items) == 0 {
			items = []interface{}{nil}
		}
		for _, item := range items {
			data, err := layerDefaults(plugin, item)
			if err != nil {
				return nil, err
			}
			specs = append(specs, kinds.Spec{Namespace: namespace, PluginType: pluginType, Data: data})
		}
	}

	return specs, nil
}

// bindWithOverride delegates config_data normalization to the plugin_base's
// ParseConfig hook, the generalized equivalent of a plugin_base subclass
// overriding how its children's configuration is shaped (e.g. the webhook
// trigger base folding a bare secret string into a single adapter spec).
func bindWithOverride(base *kinds.Kind, namespace string, rawValue interface{}, covered map[string]bool) ([]kinds.Spec, error) {
	mapping, ok := toStringMap(rawValue)
	if !ok {
		if s, ok := rawValue.(string); ok {
			mapping = map[string]interface{}{s: []interface{}{}}
		} else {
			return nil, apperrors.Config("config.Bind", fmt.Sprintf("component_namespace %q must be a scalar or mapping", namespace), nil)
		}
	}

	var specs []kinds.Spec
	pluginTypes := make([]string, 0, len(mapping))
	for pt := range mapping {
		pluginTypes = append(pluginTypes, pt)
	}
	sort.Strings(pluginTypes)

	for _, pluginType := range pluginTypes {
		parsed, err := base.ParseConfig(pluginType, mapping[pluginType])
		if err != nil {
			return nil, apperrors.Config("config.Bind", fmt.Sprintf("ParseConfig failed for %q/%q", namespace, pluginType), err)
		}
		for _, s := range parsed {
			covered[kindIDOf(s)] = true
			specs = append(specs, s)
		}
	}
	return specs, nil
}

// defaultSpecs emits one empty-config_data Spec for every registered
// plugin Kind not already covered by the document. A Kind whose default
// document fails its schema (e.g. a required field with no default) is
// logged and skipped, so it gets no default Spec and is not instantiated.
func defaultSpecs(reg *kinds.Registry, covered map[string]bool) []kinds.Spec {
	var out []kinds.Spec
	all := reg.All()
	sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })

	for _, k := range all {
		if k.Role != kinds.RolePlugin {
			continue
		}
		if covered[k.ID()] {
			continue
		}
		data, err := layerDefaults(k, nil)
		if err != nil {
			logger.Component("config").Warn().Str("kind", k.ID()).Err(err).Msg("default config rejected by schema, skipping")
			continue
		}
		out = append(out, kinds.Spec{Namespace: k.Namespace, PluginType: k.PluginType, Data: data})
	}
	return out
}

func exactlyOnePlugin(reg *kinds.Registry, namespace, pluginType string) (*kinds.Kind, bool) {
	matches := reg.PluginsOfType(namespace, pluginType)
	if len(matches) != 1 {
		return nil, false
	}
	return matches[0], true
}

func kindIDOf(s kinds.Spec) string {
	if s.PluginType == "" {
		return s.Namespace
	}
	return s.Namespace + "/" + s.PluginType
}

func toStringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Document:
		return map[string]interface{}(m), true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func toList(v interface{}) ([]interface{}, bool) {
	l, ok := v.([]interface{})
	return l, ok
}
