package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/automationd/internal/dispatcher"
	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/hooks"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/kinds"
	"github.com/streamspace/automationd/internal/logger"
)

func TestOnInitRejectsInvalidSchedule(t *testing.T) {
	reg := kinds.New()
	reg.MustRegister(Kind)

	mgr := instance.NewManager()
	d := dispatcher.New(mgr, hooks.New())
	instance.RegisterFactory("triggers/cron", NewFactory(d))

	err := mgr.Start(context.Background(), reg, []kinds.Spec{
		{Namespace: "triggers", PluginType: "cron", Data: map[string]interface{}{"schedule": "not a cron expression"}},
	})
	require.Error(t, err)
}

func TestFireDispatchesMatchingHook(t *testing.T) {
	reg := kinds.New()
	reg.MustRegister(Kind)

	mgr := instance.NewManager()
	hr := hooks.New()
	d := dispatcher.New(mgr, hr)
	instance.RegisterFactory("triggers/cron", NewFactory(d))

	require.NoError(t, mgr.Start(context.Background(), reg, []kinds.Spec{
		{Namespace: "triggers", PluginType: "cron", Data: map[string]interface{}{"schedule": "@every 1h", "event_type": "tick"}},
	}))
	t.Cleanup(func() { _ = mgr.Close(context.Background()) })

	matches := mgr.Find(kinds.Predicate{Namespace: "triggers", PluginType: "cron"})
	require.Len(t, matches, 1)
	trig, ok := matches[0].Handler.(*Trigger)
	require.True(t, ok)
	assert.Equal(t, "@every 1h", trig.schedule())
	assert.Equal(t, "tick", trig.eventType())

	var fired *envelope.Envelope
	done := make(chan struct{})
	hr.Register("test-owner", reg, kinds.Predicate{Namespace: "triggers", PluginType: "cron"}, nil, "trigger",
		func(ctx context.Context, subscriber *instance.Instance, env *envelope.Envelope) error {
			fired = env
			close(done)
			return nil
		})

	job := trig.fire(context.Background(), logger.Component("test"))
	job()

	<-done
	require.NotNil(t, fired)
	assert.Equal(t, "cron", fired.Identity().PluginType)
	assert.Equal(t, "tick", fired.Meta("mq")["event_type"])
}
