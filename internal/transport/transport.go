// Package transport defines the Transport Abstraction: the interface a
// concrete message-queue plugin (NATS, Redis, or an in-process stub)
// implements to publish and consume Envelopes.
//
// Grounded on the original ZeroMQ plugin's publish/consume pair
// (palvella/plugins/lib/mq/zeromq), with the socket_type/socket_operation/
// identity/queue vocabulary preserved as SocketConfig even though the
// concrete drivers underneath are NATS and Redis rather than ZeroMQ — see
// SPEC_FULL.md §6.5 for why that vocabulary survives the substitution.
package transport

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/streamspace/automationd/internal/apperrors"
	"github.com/streamspace/automationd/internal/envelope"
)

// Transport is implemented by every mq plugin. Opening is lazy: a Transport
// must defer connecting until the first Publish or Consume call.
type Transport interface {
	// Open establishes the underlying connection/socket. Idempotent.
	Open(ctx context.Context) error
	// Close tears the connection down. Idempotent.
	Close(ctx context.Context) error
	// Publish sends env. Failure is recoverable, never fatal to the caller:
	// an OperationError for a transport failure, an EncodingError if env
	// cannot be serialized, or the context's error if ctx ends first.
	Publish(ctx context.Context, env *envelope.Envelope) error
	// Consume blocks until the next Envelope arrives or ctx is cancelled.
	Consume(ctx context.Context) (*envelope.Envelope, error)
}

// SocketType enumerates the roles a Transport socket can take.
type SocketType string

const (
	Push SocketType = "push"
	Pull SocketType = "pull"
	Pub  SocketType = "pub"
	Sub  SocketType = "sub"
	XPub SocketType = "xpub"
	XSub SocketType = "xsub"
)

// SocketOperation enumerates how a Transport attaches to its URL.
type SocketOperation string

const (
	Connect SocketOperation = "connect"
	Bind    SocketOperation = "bind"
)

// SocketConfig is the common configuration shape every Transport plugin
// parses out of its config_data: url, socket_type, socket_operation,
// identity, queue/name. The nats and redis drivers hold one of these as
// their whole configuration — the vocabulary is uniform across them even
// though only a subset of fields is meaningful to either; inproc takes
// only a buffer size and does not use SocketConfig.
type SocketConfig struct {
	URL             string          `validate:"required"`
	SocketType      SocketType      `validate:"required,oneof=push pull pub sub xpub xsub"`
	SocketOperation SocketOperation `validate:"omitempty,oneof=connect bind"`
	Identity        string
	Queue           string
	Name            string
}

var validate = validator.New()

// ParseSocketConfig extracts and validates a SocketConfig from a plugin's
// config_data map, applying the socket_type-based socket_operation default
// the original _setup_socket used: connect for push/sub, bind for
// pull/pub. xpub/xsub have no default: socket_operation stays empty unless
// configured.
func ParseSocketConfig(data map[string]interface{}) (SocketConfig, error) {
	var cfg SocketConfig

	if v, ok := data["url"].(string); ok {
		cfg.URL = v
	}
	if v, ok := data["socket_type"].(string); ok {
		cfg.SocketType = SocketType(v)
	}
	if v, ok := data["socket_operation"].(string); ok {
		cfg.SocketOperation = SocketOperation(v)
	}
	if v, ok := data["identity"].(string); ok {
		cfg.Identity = v
	}
	if v, ok := data["queue"].(string); ok {
		cfg.Queue = v
	}
	if v, ok := data["name"].(string); ok {
		cfg.Name = v
	}

	if cfg.SocketOperation == "" {
		switch cfg.SocketType {
		case Push, Sub:
			cfg.SocketOperation = Connect
		case Pull, Pub:
			cfg.SocketOperation = Bind
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return cfg, apperrors.Config("transport.ParseSocketConfig", "invalid socket configuration", err)
	}
	return cfg, nil
}

// IsConsumerSocket reports whether a socket_type receives Envelopes (and so
// needs a background Consume loop) rather than only sending them.
func IsConsumerSocket(st SocketType) bool {
	switch st {
	case Pull, Sub, XSub:
		return true
	default:
		return false
	}
}
