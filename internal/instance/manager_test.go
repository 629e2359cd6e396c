package instance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/automationd/internal/kinds"
)

type recordingHandler struct {
	Base
	name      string
	initOrder *[]string
	peers     []kinds.Predicate
	seenPeers *[][]*Instance
}

func (h *recordingHandler) OnInit(ctx context.Context, ictx *Context) error {
	*h.initOrder = append(*h.initOrder, h.name)
	for _, p := range h.peers {
		*h.seenPeers = append(*h.seenPeers, ictx.Find(p))
	}
	return nil
}

func TestStartConstructsInDependencyOrder(t *testing.T) {
	reg := kinds.New()
	reg.MustRegister(&kinds.Kind{Namespace: "mq", PluginType: "nats", Role: kinds.RolePlugin})
	reg.MustRegister(&kinds.Kind{
		Namespace: "triggers", PluginType: "http_webhook", Role: kinds.RolePlugin,
		Requires: []kinds.Predicate{{Namespace: "mq"}},
	})

	var order []string
	var seen [][]*Instance

	RegisterFactory("mq/nats", func(spec kinds.Spec) (Handler, error) {
		return &recordingHandler{name: "mq/nats", initOrder: &order, seenPeers: &seen}, nil
	})
	RegisterFactory("triggers/http_webhook", func(spec kinds.Spec) (Handler, error) {
		return &recordingHandler{
			name: "triggers/http_webhook", initOrder: &order, seenPeers: &seen,
			peers: []kinds.Predicate{{Namespace: "mq"}},
		}, nil
	})

	mgr := NewManager()
	specs := []kinds.Spec{
		{Namespace: "triggers", PluginType: "http_webhook"},
		{Namespace: "mq", PluginType: "nats"},
	}
	require.NoError(t, mgr.Start(context.Background(), reg, specs))

	require.Len(t, order, 2)
	assert.Equal(t, []string{"mq/nats", "triggers/http_webhook"}, order)

	require.Len(t, seen, 1)
	assert.Len(t, seen[0], 1, "expected http_webhook's OnInit to find exactly one Ready mq peer")
}

func TestFindOnlyReturnsReadyInstances(t *testing.T) {
	reg := kinds.New()
	reg.MustRegister(&kinds.Kind{Namespace: "mq", PluginType: "nats", Role: kinds.RolePlugin})

	RegisterFactory("mq/nats", func(spec kinds.Spec) (Handler, error) {
		return &Base{}, nil
	})

	mgr := NewManager()
	require.NoError(t, mgr.Start(context.Background(), reg, []kinds.Spec{{Namespace: "mq", PluginType: "nats"}}))

	matches := mgr.Find(kinds.Predicate{Namespace: "mq"})
	require.Len(t, matches, 1)
	assert.Equal(t, Ready, matches[0].State())
}
