package inproc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/automationd/internal/envelope"
)

func TestPublishConsumeRoundTrip(t *testing.T) {
	tr := New(1)
	ctx := context.Background()

	env, err := envelope.FromSender("mq", "inproc", "test", nil, map[string]interface{}{"k": 1})
	require.NoError(t, err)

	require.NoError(t, tr.Publish(ctx, env))

	got, err := tr.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test", got.Identity().Name)
}

func TestConsumeHonorsCancellation(t *testing.T) {
	tr := New(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tr.Consume(ctx)
	assert.Error(t, err, "expected Consume to return an error once the context is cancelled")
}
