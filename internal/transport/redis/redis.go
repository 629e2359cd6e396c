// Package redis implements the mq/redis Transport over Redis Pub/Sub.
// socket_type=="pub" publishes to a channel; "sub" subscribes to it.
// Redis pub/sub has no native queue-group equivalent, so socket_type
// "push"/"pull" with a Queue set falls back to plain pub/sub on that
// channel name — multiple "pull" consumers all receive every message,
// unlike the load-balanced NATS queue group.
//
// Grounded on the teacher's internal/cache/cache.go for the go-redis
// connection-pool and timeout configuration idiom, adapted here from a
// cache client to a pub/sub transport.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/streamspace/automationd/internal/apperrors"
	"github.com/streamspace/automationd/internal/envelope"
	"github.com/streamspace/automationd/internal/transport"
	"github.com/streamspace/automationd/internal/transport/wire"
)

// Transport is the Redis-backed Transport plugin.
type Transport struct {
	cfg transport.SocketConfig

	mu     sync.Mutex
	client *redis.Client
	pubsub *redis.PubSub
}

// New constructs a Transport from a SocketConfig. Connection is deferred
// to the first Open call made implicitly by Publish or Consume.
func New(cfg transport.SocketConfig) *Transport {
	return &Transport{cfg: cfg}
}

func (t *Transport) Open(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.openLocked(ctx)
}

func (t *Transport) openLocked(ctx context.Context) error {
	if t.client != nil {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: t.cfg.URL,

		PoolSize:     25,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return apperrors.Operation("transport.redis", "connect failed", err)
	}
	t.client = client

	if transport.IsConsumerSocket(t.cfg.SocketType) {
		t.pubsub = client.Subscribe(context.Background(), channelOf(t.cfg))
	}

	return nil
}

func (t *Transport) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pubsub != nil {
		_ = t.pubsub.Close()
		t.pubsub = nil
	}
	if t.client != nil {
		_ = t.client.Close()
		t.client = nil
	}
	return nil
}

func (t *Transport) Publish(ctx context.Context, env *envelope.Envelope) error {
	t.mu.Lock()
	if err := t.openLocked(ctx); err != nil {
		t.mu.Unlock()
		return err
	}
	client := t.client
	t.mu.Unlock()

	frames, err := env.Encode()
	if err != nil {
		return err
	}
	payload := wire.Pack(frames)

	if err := client.Publish(ctx, channelOf(t.cfg), payload).Err(); err != nil {
		return apperrors.Operation("transport.redis", "publish failed", err)
	}
	return nil
}

func (t *Transport) Consume(ctx context.Context) (*envelope.Envelope, error) {
	t.mu.Lock()
	if err := t.openLocked(ctx); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	pubsub := t.pubsub
	t.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-pubsub.Channel():
		if !ok {
			return nil, apperrors.Operation("transport.redis", "subscription channel closed", nil)
		}
		frames, err := wire.Unpack([]byte(msg.Payload))
		if err != nil {
			return nil, apperrors.Encoding("transport.redis", "unpack payload", err)
		}
		return envelope.Decode(frames)
	}
}

func channelOf(cfg transport.SocketConfig) string {
	if cfg.Queue != "" {
		return cfg.Queue
	}
	if cfg.Name != "" {
		return cfg.Name
	}
	return "automationd.default"
}
