package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/automationd/internal/kinds"
)

func setupRegistry() *kinds.Registry {
	r := kinds.New()
	r.MustRegister(&kinds.Kind{Namespace: "mq", Role: kinds.RolePluginBase})
	r.MustRegister(&kinds.Kind{
		Namespace: "mq", PluginType: "nats", Role: kinds.RolePlugin,
		Schema:   map[string]string{"url": "required"},
		Defaults: map[string]interface{}{"url": "nats://localhost:4222"},
	})
	r.MustRegister(&kinds.Kind{Namespace: "triggers", Role: kinds.RolePluginBase})
	r.MustRegister(&kinds.Kind{Namespace: "triggers", PluginType: "http_webhook", Role: kinds.RolePlugin})
	r.MustRegister(&kinds.Kind{Namespace: "triggers", PluginType: "cron", Role: kinds.RolePlugin})
	return r
}

func TestBindScalarShorthandExpandsToEmptyList(t *testing.T) {
	reg := setupRegistry()
	doc := Document{"triggers": "http_webhook"}

	specs, err := Bind(reg, doc)
	require.NoError(t, err)

	var found bool
	for _, s := range specs {
		if s.Namespace == "triggers" && s.PluginType == "http_webhook" {
			found = true
		}
	}
	assert.True(t, found, "expected a Spec for the scalar-shorthand trigger type")
}

func TestBindEmitsDefaultSpecForUncoveredPlugins(t *testing.T) {
	reg := setupRegistry()
	doc := Document{"triggers": map[string]interface{}{"http_webhook": []interface{}{}}}

	specs, err := Bind(reg, doc)
	require.NoError(t, err)

	var sawCron, sawNats bool
	for _, s := range specs {
		if s.Namespace == "triggers" && s.PluginType == "cron" {
			sawCron = true
		}
		if s.Namespace == "mq" && s.PluginType == "nats" {
			sawNats = true
		}
	}
	assert.True(t, sawCron, "expected a default Spec for the uncovered cron plugin")
	assert.True(t, sawNats, "expected a default Spec for the mq/nats plugin, never mentioned in the document")
}

func TestBindLayersDefaultsUnderOverrides(t *testing.T) {
	reg := setupRegistry()
	doc := Document{
		"mq": map[string]interface{}{
			"nats": []interface{}{
				map[string]interface{}{"name": "primary"},
			},
		},
	}

	specs, err := Bind(reg, doc)
	require.NoError(t, err)

	var natsSpec *kinds.Spec
	for i := range specs {
		if specs[i].Namespace == "mq" && specs[i].PluginType == "nats" {
			natsSpec = &specs[i]
		}
	}
	require.NotNil(t, natsSpec, "expected exactly one mq/nats Spec")
	assert.Equal(t, "nats://localhost:4222", natsSpec.Data["url"], "expected default url to survive layering")
	assert.Equal(t, "primary", natsSpec.Data["name"])
}

func TestBindRejectsConfigFailingSchema(t *testing.T) {
	reg := kinds.New()
	reg.MustRegister(&kinds.Kind{Namespace: "mq", Role: kinds.RolePluginBase})
	reg.MustRegister(&kinds.Kind{
		Namespace: "mq", PluginType: "nats", Role: kinds.RolePlugin,
		Schema: map[string]string{"url": "required"},
	})

	doc := Document{
		"mq": map[string]interface{}{
			"nats": []interface{}{
				map[string]interface{}{"name": "no-url"},
			},
		},
	}

	_, err := Bind(reg, doc)
	assert.Error(t, err, "expected Bind to reject config_data missing a required field")
}

func TestBindSkipsUnknownNamespace(t *testing.T) {
	reg := setupRegistry()
	doc := Document{"nonexistent": "whatever"}

	specs, err := Bind(reg, doc)
	require.NoError(t, err, "Bind should warn and skip, not fail")
	for _, s := range specs {
		assert.NotEqual(t, "nonexistent", s.Namespace, "unknown namespace should never produce a Spec")
	}
}
