package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSocketConfigDefaultsSocketOperation(t *testing.T) {
	cases := []struct {
		socketType string
		want       SocketOperation
	}{
		{"push", Connect},
		{"sub", Connect},
		{"pull", Bind},
		{"pub", Bind},
	}
	for _, c := range cases {
		cfg, err := ParseSocketConfig(map[string]interface{}{
			"url": "nats://localhost:4222", "socket_type": c.socketType,
		})
		require.NoErrorf(t, err, "ParseSocketConfig(%s)", c.socketType)
		assert.Equalf(t, c.want, cfg.SocketOperation, "socket_type=%s", c.socketType)
	}
}

func TestParseSocketConfigRejectsMissingURL(t *testing.T) {
	_, err := ParseSocketConfig(map[string]interface{}{"socket_type": "push"})
	assert.Error(t, err)
}

func TestParseSocketConfigRejectsUnknownSocketType(t *testing.T) {
	_, err := ParseSocketConfig(map[string]interface{}{"url": "x", "socket_type": "unknown"})
	assert.Error(t, err)
}

func TestParseSocketConfigPreservesExplicitOperation(t *testing.T) {
	cfg, err := ParseSocketConfig(map[string]interface{}{
		"url": "nats://localhost:4222", "socket_type": "xpub", "socket_operation": "bind",
	})
	require.NoError(t, err)
	assert.Equal(t, Bind, cfg.SocketOperation)
}
