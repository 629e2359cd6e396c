// Package hooks implements the Hook Registry: subscriptions matched
// against outbound Envelopes and dispatched by the trigger Dispatcher.
//
// Grounded on the original's Hook/Hooks pair (palvella/lib/instance/hook.py)
// generalized to Go types, and on the teacher's EventBus
// (internal/plugins/event_bus.go) for the concurrent, panic-recovered
// callback-invocation idiom the Dispatcher borrows.
package hooks

import (
	"context"

	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/kinds"
)

// Callback is invoked once per matched (Record, Instance) pair. The
// Instance passed in is the live instance of the Record's sender Kind that
// the match was found against, not the instance that registered the hook;
// a callback that needs its own state captures it at registration time.
type Callback func(ctx context.Context, subscriber *instance.Instance, env *envelope.Envelope) error

// Record is one registered subscription: owner names the Instance that
// registered it (kept for diagnostics; the Hook Registry has no removal
// operation, so a Record stays registered after its owner is closed). Kind
// is the resolved sender Kind the predicate matched at registration time.
type Record struct {
	Owner     string
	Kind      *kinds.Kind
	MatchData map[string]interface{}
	HookType  string
	Callback  Callback
}

// Match pairs a matched Record with the sender-Kind Instance it was found
// against.
type Match struct {
	Record   Record
	Instance *instance.Instance
}

// Registry stores Hook Records in insertion order and matches them against
// Envelopes on demand.
type Registry struct {
	records []Record
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Register resolves predicate against reg and creates one Hook Record per
// matching Kind, matching the original's "for each class matching
// plugin_dep, register a Hook" behavior — a predicate naming only a
// component_namespace fans out into one Record per plugin_type registered
// under it.
func (r *Registry) Register(owner string, reg *kinds.Registry, predicate kinds.Predicate, matchData map[string]interface{}, hookType string, cb Callback) {
	for _, k := range reg.Match(predicate) {
		r.records = append(r.records, Record{
			Owner:     owner,
			Kind:      k,
			MatchData: matchData,
			HookType:  hookType,
			Callback:  cb,
		})
	}
}

// List returns every registered Record, in insertion order.
func (r *Registry) List() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Match returns every (Record, Instance) pair that fires for env, in
// (hook insertion order, instance insertion order) — the tie-break order
// the Dispatcher uses to decide callback launch order (completion order is
// still unspecified; callbacks run concurrently).
func (r *Registry) Match(env *envelope.Envelope, instances []*instance.Instance) []Match {
	var out []Match
	id := env.Identity()

	for _, rec := range r.records {
		if rec.Kind.Namespace != id.Namespace || rec.Kind.PluginType != id.PluginType {
			continue
		}
		if !matchData(rec.MatchData, env.Data()) {
			continue
		}
		for _, inst := range instances {
			if inst.Kind != rec.Kind {
				continue
			}
			out = append(out, Match{Record: rec, Instance: inst})
		}
	}
	return out
}

// matchData reports whether every key/value in want appears, recursively,
// in at least one mapping in data. An empty want matches anything
// (including empty data); a non-empty want never matches empty data.
func matchData(want map[string]interface{}, data []interface{}) bool {
	if len(want) == 0 {
		return true
	}
	for _, d := range data {
		m, ok := d.(map[string]interface{})
		if !ok {
			continue
		}
		if subsetOf(want, m) {
			return true
		}
	}
	return false
}

// subsetOf reports whether every key in want exists in have with an equal
// (or, for nested maps, recursively subset; for lists, element-wise
// matching) value.
func subsetOf(want, have map[string]interface{}) bool {
	for k, wantVal := range want {
		haveVal, ok := have[k]
		if !ok {
			return false
		}
		wantMap, wantIsMap := wantVal.(map[string]interface{})
		haveMap, haveIsMap := haveVal.(map[string]interface{})
		if wantIsMap && haveIsMap {
			if !subsetOf(wantMap, haveMap) {
				return false
			}
			continue
		}
		// Lists compare element by element, each element under these same rules.
		wantList, wantIsList := wantVal.([]interface{})
		haveList, haveIsList := haveVal.([]interface{})
		if wantIsList && haveIsList {
			if len(wantList) != len(haveList) {
				return false
			}
			for i := range wantList {
				if !subsetOf(map[string]interface{}{"": wantList[i]}, map[string]interface{}{"": haveList[i]}) {
					return false
				}
			}
			continue
		}
		if wantVal != haveVal {
			return false
		}
	}
	return true
}
