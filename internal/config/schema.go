package config

import (
	"fmt"

	"github.com/streamspace/automationd/internal/apperrors"
	"github.com/streamspace/automationd/internal/kinds"
)

// layerDefaults merges item (a config_data override, possibly nil) over a
// copy of k.Defaults, then validates the result field-by-field against
// k.Schema before returning it. This is the Go equivalent of the original's
// default-config-document layering in Config.parse_conf_component_ns.
func layerDefaults(k *kinds.Kind, item interface{}) (map[string]interface{}, error) {
	data := make(map[string]interface{}, len(k.Defaults))
	for key, v := range k.Defaults {
		data[key] = v
	}

	switch override := item.(type) {
	case nil:
		// No override: defaults stand as-is.
	case map[string]interface{}:
		for key, v := range override {
			data[key] = v
		}
	case map[interface{}]interface{}:
		for key, v := range override {
			s, ok := key.(string)
			if !ok {
				return nil, apperrors.Config("config.layerDefaults", fmt.Sprintf("config_data for %q has a non-string key", k.ID()), nil)
			}
			data[s] = v
		}
	default:
		return nil, apperrors.Config("config.layerDefaults", fmt.Sprintf("config_data item for %q must be a mapping or omitted", k.ID()), nil)
	}

	if err := validateFields(k, data); err != nil {
		return nil, err
	}
	return data, nil
}

// validateFields runs go-playground/validator's single-value validation
// over every field k.Schema declares a tag for. Unlike struct validation,
// config_data stays a generic map — the teacher's internal/validator.go
// validates fixed HTTP request structs; a plugin's config_data shape is
// only known at runtime, so each declared field is validated individually
// with validate.Var instead of validate.Struct.
func validateFields(k *kinds.Kind, data map[string]interface{}) error {
	for field, tag := range k.Schema {
		value, present := data[field]
		if !present {
			value = nil
		}
		if err := validate.Var(value, tag); err != nil {
			return apperrors.Config("config.validateFields",
				fmt.Sprintf("%s: field %q failed validation %q", k.ID(), field, tag), err)
		}
	}
	return nil
}
