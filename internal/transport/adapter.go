package transport

import (
	"context"
	"time"

	"github.com/streamspace/automationd/internal/apperrors"
	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/logger"
)

// consume loop backoff: on a Consume error, wait n*backoffUnit before
// retrying, n counting consecutive errors and capped at backoffMax.
const (
	backoffUnit = 200 * time.Millisecond
	backoffMax  = 5 * time.Second
)

// OnEnvelope is called once per Envelope a consumer-type socket receives,
// with self set to the Adapter's own Instance (the sender dispatcher.Trigger
// expects). It lives outside this package's import graph (a plain func
// type) so the concrete driver can close over a *dispatcher.Dispatcher
// without this package needing to import dispatcher — dispatcher already
// imports transport for the Transport interface, and a transport->
// dispatcher import back would cycle.
type OnEnvelope func(ctx context.Context, self *instance.Instance, env *envelope.Envelope)

// Adapter wraps a Transport as an instance.Handler, and also re-exposes that
// Transport directly so the wrapped instance can itself be looked up and
// published to as an mq peer (dispatcher.Trigger finds a sender's peer by
// Instance.Handler.(transport.Transport)). OnInit opens the connection and,
// for a consumer socket_type, launches a background loop handing every
// received Envelope to OnEnvelope until Close cancels it. Every mq plugin
// (nats, redis, inproc) is this same Adapter around a different Transport
// implementation.
type Adapter struct {
	instance.Base

	Transport  Transport
	SocketType SocketType
	OnEnvelope OnEnvelope

	self   *instance.Instance
	cancel context.CancelFunc
}

func (a *Adapter) OnInit(ctx context.Context, ictx *instance.Context) error {
	a.self = ictx.Self()

	if err := a.Transport.Open(ctx); err != nil {
		return err
	}

	if !IsConsumerSocket(a.SocketType) {
		return nil
	}

	consumeCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	log := logger.Instance("mq", string(a.SocketType), a.self.Name())
	go func() {
		var errStreak int
		for {
			env, err := a.Transport.Consume(consumeCtx)
			if err != nil {
				if consumeCtx.Err() != nil {
					return
				}
				log.Warn().Err(apperrors.Operation("transport.Adapter", "consume failed", err)).Msg("consume error, retrying")
				errStreak++
				wait := time.Duration(errStreak) * backoffUnit
				if wait > backoffMax {
					wait = backoffMax
				}
				select {
				case <-time.After(wait):
				case <-consumeCtx.Done():
					return
				}
				continue
			}
			errStreak = 0
			if a.OnEnvelope != nil {
				a.OnEnvelope(consumeCtx, a.self, env)
			}
		}
	}()
	return nil
}

func (a *Adapter) Close(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	return a.Transport.Close(ctx)
}

// Open, Publish, and Consume delegate to the wrapped Transport, so an
// Adapter satisfies Transport itself: dispatcher.Trigger finds a sender's
// "mq" peer by asserting its Instance.Handler to Transport, and that peer's
// Handler is always this same Adapter.
func (a *Adapter) Open(ctx context.Context) error { return a.Transport.Open(ctx) }

func (a *Adapter) Publish(ctx context.Context, env *envelope.Envelope) error {
	return a.Transport.Publish(ctx, env)
}

func (a *Adapter) Consume(ctx context.Context) (*envelope.Envelope, error) {
	return a.Transport.Consume(ctx)
}
