package redis

import (
	"context"

	"github.com/streamspace/automationd/internal/dispatcher"
	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/kinds"
	"github.com/streamspace/automationd/internal/transport"
)

const pluginType = "redis"

// Kind is the registered "mq/redis" plugin Kind.
var Kind = &kinds.Kind{
	Namespace:  "mq",
	PluginType: pluginType,
	Role:       kinds.RolePlugin,
	Schema:     map[string]string{"url": "required", "socket_type": "required,oneof=push pull pub sub xpub xsub"},
}

func init() {
	kinds.Default.MustRegister(kinds.MQBase)
	kinds.Default.MustRegister(Kind)
}

// NewFactory returns an instance.Factory building a transport.Adapter
// around a redis Transport, mirroring the nats plugin's wiring.
func NewFactory(d *dispatcher.Dispatcher) instance.Factory {
	return func(spec kinds.Spec) (instance.Handler, error) {
		cfg, err := transport.ParseSocketConfig(spec.Data)
		if err != nil {
			return nil, err
		}
		return &transport.Adapter{
			Transport:  New(cfg),
			SocketType: cfg.SocketType,
			OnEnvelope: func(ctx context.Context, self *instance.Instance, env *envelope.Envelope) {
				d.Trigger(ctx, self, env)
			},
		}, nil
	}
}
