package inproc

import (
	"context"

	"github.com/streamspace/automationd/internal/dispatcher"
	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/kinds"
	"github.com/streamspace/automationd/internal/transport"
)

const pluginType = "inproc"

// Kind is the registered "mq/inproc" plugin Kind: a channel-backed stand-in
// for a real broker, for local development and tests that need the
// dispatcher/transport boundary without a running NATS or Redis instance.
var Kind = &kinds.Kind{
	Namespace:  "mq",
	PluginType: pluginType,
	Role:       kinds.RolePlugin,
	Defaults:   map[string]interface{}{"buffer": 64},
}

func init() {
	kinds.Default.MustRegister(kinds.MQBase)
	kinds.Default.MustRegister(Kind)
}

// NewFactory returns an instance.Factory building a transport.Adapter
// around an inproc Transport. The socket always behaves as a consumer —
// its single channel is both where Publish sends and where the Adapter's
// background loop reads from, so configuring it always runs the consume
// loop regardless of a socket_type field (which inproc has no use for).
func NewFactory(d *dispatcher.Dispatcher) instance.Factory {
	return func(spec kinds.Spec) (instance.Handler, error) {
		buffer := 64
		if v, ok := spec.Data["buffer"]; ok {
			if n, ok := v.(int); ok {
				buffer = n
			}
		}
		return &transport.Adapter{
			Transport:  New(buffer),
			SocketType: transport.Pull,
			OnEnvelope: func(ctx context.Context, self *instance.Instance, env *envelope.Envelope) {
				d.Trigger(ctx, self, env)
			},
		}, nil
	}
}
