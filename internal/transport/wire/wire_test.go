package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	frames := [][]byte{
		[]byte(`{"plugin_namespace":"triggers","plugin_type":"http_webhook"}`),
		[]byte(`{}`),
		[]byte(`{"event_type":"push"}`),
	}

	packed := Pack(frames)
	unpacked, err := Unpack(packed)
	require.NoError(t, err)
	require.Len(t, unpacked, len(frames))
	for i := range frames {
		assert.Equalf(t, frames[i], unpacked[i], "frame %d mismatch", i)
	}
}

func TestUnpackRejectsTruncatedPayload(t *testing.T) {
	_, err := Unpack([]byte{0, 0, 0, 5, 1, 2})
	assert.Error(t, err, "expected error unpacking a truncated frame")

	_, err = Unpack([]byte{0, 0, 1})
	assert.Error(t, err, "expected error unpacking a truncated length prefix")
}

func TestUnpackEmptyPayload(t *testing.T) {
	frames, err := Unpack(nil)
	require.NoError(t, err)
	assert.Empty(t, frames)
}
