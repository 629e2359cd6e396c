package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/kinds"
)

// fakeConsumer is a minimal Transport that yields one Envelope then blocks
// until ctx is cancelled, enough to exercise Adapter's consume loop without
// a real broker.
type fakeConsumer struct {
	ch     chan *envelope.Envelope
	opened bool
	closed bool
}

func (f *fakeConsumer) Open(ctx context.Context) error  { f.opened = true; return nil }
func (f *fakeConsumer) Close(ctx context.Context) error { f.closed = true; return nil }
func (f *fakeConsumer) Publish(ctx context.Context, env *envelope.Envelope) error {
	f.ch <- env
	return nil
}
func (f *fakeConsumer) Consume(ctx context.Context) (*envelope.Envelope, error) {
	select {
	case env := <-f.ch:
		return env, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestAdapterConsumerSocketInvokesOnEnvelope(t *testing.T) {
	ft := &fakeConsumer{ch: make(chan *envelope.Envelope, 1)}
	received := make(chan *envelope.Envelope, 1)

	adapter := &Adapter{
		Transport:  ft,
		SocketType: Pull,
		OnEnvelope: func(ctx context.Context, self *instance.Instance, env *envelope.Envelope) {
			received <- env
		},
	}

	reg := kinds.New()
	k := &kinds.Kind{Namespace: "mq", PluginType: "fake", Role: kinds.RolePlugin}
	reg.MustRegister(k)
	mgr := instance.NewManager()
	instance.RegisterFactory("mq/fake", func(spec kinds.Spec) (instance.Handler, error) { return adapter, nil })
	require.NoError(t, mgr.Start(context.Background(), reg, []kinds.Spec{{Namespace: "mq", PluginType: "fake"}}))
	t.Cleanup(func() { _ = mgr.Close(context.Background()) })

	assert.True(t, ft.opened)

	env, err := envelope.FromSender("triggers", "http_webhook", "gh", nil, "payload")
	require.NoError(t, err)
	require.NoError(t, ft.Publish(context.Background(), env))

	select {
	case got := <-received:
		assert.Equal(t, env, got)
	case <-time.After(time.Second):
		t.Fatal("OnEnvelope was never invoked")
	}

	require.NoError(t, mgr.Close(context.Background()))
	assert.True(t, ft.closed)
}

func TestAdapterNonConsumerSocketSkipsLoop(t *testing.T) {
	ft := &fakeConsumer{ch: make(chan *envelope.Envelope, 1)}
	adapter := &Adapter{Transport: ft, SocketType: Push}

	reg := kinds.New()
	k := &kinds.Kind{Namespace: "mq", PluginType: "fake-push", Role: kinds.RolePlugin}
	reg.MustRegister(k)
	mgr := instance.NewManager()
	instance.RegisterFactory("mq/fake-push", func(spec kinds.Spec) (instance.Handler, error) { return adapter, nil })
	require.NoError(t, mgr.Start(context.Background(), reg, []kinds.Spec{{Namespace: "mq", PluginType: "fake-push"}}))

	assert.True(t, ft.opened)
	require.NoError(t, mgr.Close(context.Background()))
	assert.True(t, ft.closed)
}
