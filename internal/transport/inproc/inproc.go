// Package inproc implements an in-process Transport: Publish hands the
// Envelope straight to a buffered in-memory channel, Consume reads from
// it. Used as the mq/inproc plugin for local development and in tests
// that exercise the dispatcher/transport boundary without a running
// broker.
package inproc

import (
	"context"
	"sync"

	"github.com/streamspace/automationd/internal/apperrors"
	"github.com/streamspace/automationd/internal/envelope"
)

// Transport is a channel-backed Transport with no external dependency.
type Transport struct {
	mu     sync.Mutex
	closed bool
	ch     chan *envelope.Envelope
}

// New returns an open Transport with the given buffer size.
func New(buffer int) *Transport {
	return &Transport{ch: make(chan *envelope.Envelope, buffer)}
}

func (t *Transport) Open(ctx context.Context) error { return nil }

func (t *Transport) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		close(t.ch)
		t.closed = true
	}
	return nil
}

func (t *Transport) Publish(ctx context.Context, env *envelope.Envelope) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return apperrors.Operation("inproc.Transport.Publish", "transport is closed", nil)
	}
	t.mu.Unlock()

	select {
	case t.ch <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) Consume(ctx context.Context) (*envelope.Envelope, error) {
	select {
	case env, ok := <-t.ch:
		if !ok {
			return nil, context.Canceled
		}
		return env, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
