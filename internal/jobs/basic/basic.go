// Package basic implements the "jobs/basic" plugin: a job handler whose
// entire behavior is declared in configuration — a set of (trigger
// plugin_type, match_data) pairs it registers hooks for, and a log line in
// place of the concrete job action executors the spec explicitly scopes
// out (spec.md Non-goals: "the individual job action executors").
//
// Grounded on original_source/palvella/lib/instance/component.py's
// register_hook-per-config-entry pattern (a job component reads its own
// "triggers" config section and calls Component.register_hook once per
// entry). Example config:
//
//	jobs:
//	  basic:
//	    - name: build
//	      triggers:
//	        http_webhook:
//	          - event_type: push
package basic

import (
	"context"

	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/hooks"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/kinds"
	"github.com/streamspace/automationd/internal/logger"
)

// PluginType is this plugin's identity within the "jobs" namespace.
const PluginType = "basic"

// Kind is the registered Kind for this plugin. config_data's "triggers"
// field is a nested map (plugin_type -> list<match_data>), not a flat
// scalar, so it carries no Schema entry — layerDefaults treats it as an
// opaque pass-through and this plugin parses it itself.
var Kind = &kinds.Kind{
	Namespace:  "jobs",
	PluginType: PluginType,
	Role:       kinds.RolePlugin,
}

func init() {
	kinds.Default.MustRegister(kinds.JobsBase)
	kinds.Default.MustRegister(Kind)
}

// NewFactory returns an instance.Factory that registers one Hook Record
// per (plugin_type, match_data) entry named in a job's config against hr,
// resolving sender kinds against reg.
func NewFactory(reg *kinds.Registry, hr *hooks.Registry) instance.Factory {
	return func(spec kinds.Spec) (instance.Handler, error) {
		return &Job{spec: spec, reg: reg, hooks: hr}, nil
	}
}

// Job is one configured job handler.
type Job struct {
	instance.Base

	spec  kinds.Spec
	reg   *kinds.Registry
	hooks *hooks.Registry

	self *instance.Instance
}

// OnInit registers one hook per configured (plugin_type, match_data) pair.
func (j *Job) OnInit(ctx context.Context, ictx *instance.Context) error {
	j.self = ictx.Self()
	log := logger.Instance("jobs", PluginType, j.self.Name())

	triggers, _ := j.spec.Data["triggers"].(map[string]interface{})
	for pluginType, rawEntries := range triggers {
		entries, _ := rawEntries.([]interface{})
		for _, rawEntry := range entries {
			matchData, _ := rawEntry.(map[string]interface{})
			j.hooks.Register(j.self.Name(), j.reg,
				kinds.Predicate{Namespace: "triggers", PluginType: pluginType},
				matchData, "trigger", j.run)
			log.Debug().Str("trigger_plugin_type", pluginType).Interface("match_data", matchData).Msg("registered hook")
		}
	}
	return nil
}

// run is invoked once per matched Envelope. The concrete job action
// executors are out of scope (spec.md Non-goals); this logs receipt in
// their place.
func (j *Job) run(ctx context.Context, subscriber *instance.Instance, env *envelope.Envelope) error {
	logger.Instance("jobs", PluginType, j.self.Name()).Info().
		Str("sender_namespace", env.Identity().Namespace).
		Str("sender_plugin_type", env.Identity().PluginType).
		Msg("job triggered")
	return nil
}
