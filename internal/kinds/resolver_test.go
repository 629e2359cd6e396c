package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrdersDependenciesFirst(t *testing.T) {
	mq := &Kind{Namespace: "mq", PluginType: "nats", Role: RolePlugin}
	trigger := &Kind{
		Namespace: "triggers", PluginType: "http_webhook", Role: RolePlugin,
		Requires: []Predicate{{Namespace: "mq"}},
	}
	job := &Kind{
		Namespace: "jobs", PluginType: "basic", Role: RolePlugin,
		Requires: []Predicate{{Namespace: "triggers", PluginType: "http_webhook"}},
	}

	order, err := Resolve([]*Kind{job, trigger, mq})
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := make(map[string]int, len(order))
	for i, k := range order {
		pos[k.ID()] = i
	}
	assert.Lessf(t, pos["mq/nats"], pos["triggers/http_webhook"], "mq/nats must precede triggers/http_webhook, got order %v", order)
	assert.Lessf(t, pos["triggers/http_webhook"], pos["jobs/basic"], "triggers/http_webhook must precede jobs/basic, got order %v", order)
}

func TestResolveDeterministicWithoutConstraints(t *testing.T) {
	a := &Kind{Namespace: "jobs", PluginType: "a", Role: RolePlugin}
	b := &Kind{Namespace: "jobs", PluginType: "b", Role: RolePlugin}
	c := &Kind{Namespace: "jobs", PluginType: "c", Role: RolePlugin}

	order1, err := Resolve([]*Kind{c, a, b})
	require.NoError(t, err)
	order2, err := Resolve([]*Kind{b, c, a})
	require.NoError(t, err)

	ids1 := make([]string, len(order1))
	ids2 := make([]string, len(order2))
	for i := range order1 {
		ids1[i] = order1[i].ID()
		ids2[i] = order2[i].ID()
	}
	assert.Equal(t, ids1, ids2)
}

func TestResolveDetectsCycle(t *testing.T) {
	a := &Kind{
		Namespace: "jobs", PluginType: "a", Role: RolePlugin,
		Requires: []Predicate{{Namespace: "jobs", PluginType: "b"}},
	}
	b := &Kind{
		Namespace: "jobs", PluginType: "b", Role: RolePlugin,
		Requires: []Predicate{{Namespace: "jobs", PluginType: "a"}},
	}

	_, err := Resolve([]*Kind{a, b})
	assert.Error(t, err)
}
