// Package dispatcher implements the Trigger Dispatcher: one component
// announcing an event to its configured transport peer and to every
// matching Hook Record, concurrently.
//
// Grounded on the original's async trigger flow (palvella/lib/instance/
// trigger.py delegates publish to its mq peer) and on the teacher's
// EventBus.Emit (internal/plugins/event_bus.go) for the goroutine-per-
// callback, panic-recovered concurrent dispatch idiom.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/streamspace/automationd/internal/apperrors"
	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/hooks"
	"github.com/streamspace/automationd/internal/instance"
	"github.com/streamspace/automationd/internal/logger"
	"github.com/streamspace/automationd/internal/transport"
)

// Dispatcher ties a Manager (for live instances and transport peer
// lookup) to a hooks.Registry.
type Dispatcher struct {
	Manager *instance.Manager
	Hooks   *hooks.Registry
}

// New returns a Dispatcher over mgr and hr.
func New(mgr *instance.Manager, hr *hooks.Registry) *Dispatcher {
	return &Dispatcher{Manager: mgr, Hooks: hr}
}

// Trigger announces env on behalf of sender: best-effort publish via the
// sender's configured "mq" peer, then concurrent, panic-recovered dispatch
// to every hook matched against env. Callbacks are launched in matcher
// order but run concurrently with no ordering guarantee between them;
// Trigger blocks until every launched callback has returned (or panicked
// and been recovered) before returning.
func (d *Dispatcher) Trigger(ctx context.Context, sender *instance.Instance, env *envelope.Envelope) {
	log := logger.Component("dispatcher")

	if peerName, ok := sender.Spec.Data["mq"].(string); ok && peerName != "" {
		if peer, found := d.Manager.ByName(peerName); found {
			if tr, ok := peer.Handler.(transport.Transport); ok {
				if err := tr.Publish(ctx, env); err != nil {
					log.Warn().Err(apperrors.Operation("dispatcher.Trigger", "publish to mq peer failed", err)).
						Str("sender", sender.Name()).Str("mq_peer", peerName).Msg("publish failed, continuing with local dispatch")
				}
			}
		}
	}

	matches := d.Hooks.Match(env, d.Manager.Instances())

	var wg sync.WaitGroup
	wg.Add(len(matches))
	for _, m := range matches {
		m := m
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("owner", m.Record.Owner).
						Str("hook_type", m.Record.HookType).
						Interface("panic", r).
						Msg("hook callback panicked")
				}
			}()
			if err := m.Record.Callback(ctx, m.Instance, env); err != nil {
				log.Warn().Err(apperrors.Dispatch("dispatcher.Trigger", fmt.Sprintf("callback for owner %s failed", m.Record.Owner), err)).Msg("hook callback returned error")
			}
		}()
	}
	wg.Wait()
}
