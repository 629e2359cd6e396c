package hooks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/kinds"
)

func setup(t *testing.T) (*kinds.Registry, *instance.Instance) {
	t.Helper()
	reg := kinds.New()
	webhookKind := &kinds.Kind{Namespace: "triggers", PluginType: "http_webhook", Role: kinds.RolePlugin}
	reg.MustRegister(webhookKind)

	inst := &instance.Instance{Kind: webhookKind, Spec: kinds.Spec{Namespace: "triggers", PluginType: "http_webhook"}}
	return reg, inst
}

func TestMatchFiresOnSubsetData(t *testing.T) {
	reg, inst := setup(t)
	hr := New()

	var fired int
	hr.Register("jobs/basic", reg, kinds.Predicate{Namespace: "triggers", PluginType: "http_webhook"},
		map[string]interface{}{"event_type": "push"}, "job", func(ctx context.Context, sub *instance.Instance, env *envelope.Envelope) error {
			fired++
			return nil
		})

	env, err := envelope.FromSender("triggers", "http_webhook", "gh", nil, map[string]interface{}{"event_type": "push", "ref": "main"})
	require.NoError(t, err)

	matches := hr.Match(env, []*instance.Instance{inst})
	require.Len(t, matches, 1)
	matches[0].Record.Callback(context.Background(), matches[0].Instance, env)
	assert.Equal(t, 1, fired)
}

func TestMatchDoesNotFireOnMismatchedData(t *testing.T) {
	reg, inst := setup(t)
	hr := New()
	hr.Register("jobs/basic", reg, kinds.Predicate{Namespace: "triggers", PluginType: "http_webhook"},
		map[string]interface{}{"event_type": "push"}, "job", func(ctx context.Context, sub *instance.Instance, env *envelope.Envelope) error {
			return nil
		})

	env, err := envelope.FromSender("triggers", "http_webhook", "gh", nil, map[string]interface{}{"event_type": "ping"})
	require.NoError(t, err)

	matches := hr.Match(env, []*instance.Instance{inst})
	assert.Empty(t, matches)
}

func TestEmptyMatchDataMatchesAnyData(t *testing.T) {
	reg, inst := setup(t)
	hr := New()
	hr.Register("jobs/basic", reg, kinds.Predicate{Namespace: "triggers", PluginType: "http_webhook"},
		nil, "job", func(ctx context.Context, sub *instance.Instance, env *envelope.Envelope) error { return nil })

	envNoData, err := envelope.FromSender("triggers", "http_webhook", "gh", nil)
	require.NoError(t, err)
	assert.Len(t, hr.Match(envNoData, []*instance.Instance{inst}), 1, "expected empty match_data to match an envelope with no data")
}

func TestNonEmptyMatchDataNeverMatchesEmptyData(t *testing.T) {
	reg, inst := setup(t)
	hr := New()
	hr.Register("jobs/basic", reg, kinds.Predicate{Namespace: "triggers", PluginType: "http_webhook"},
		map[string]interface{}{"event_type": "push"}, "job", func(ctx context.Context, sub *instance.Instance, env *envelope.Envelope) error { return nil })

	envNoData, err := envelope.FromSender("triggers", "http_webhook", "gh", nil)
	require.NoError(t, err)
	assert.Empty(t, hr.Match(envNoData, []*instance.Instance{inst}), "expected non-empty match_data to reject empty envelope data")
}
