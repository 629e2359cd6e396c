// Package wire packs an Envelope's multipart frames into a single byte
// payload and back, for transports (NATS, Redis) whose wire protocol
// carries one opaque payload per message rather than ZeroMQ-style
// multipart frames.
//
// Each frame is prefixed with its length as a big-endian uint32, mirroring
// the simplest length-prefixed framing used throughout the pack's
// transport code; this keeps the Envelope's "ordered multipart message"
// contract (spec §4.6) intact across a single-payload wire.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Pack concatenates frames into one payload: [len0][frame0][len1][frame1]...
func Pack(frames [][]byte) []byte {
	size := 0
	for _, f := range frames {
		size += 4 + len(f)
	}
	out := make([]byte, 0, size)
	var lenBuf [4]byte
	for _, f := range frames {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(f)))
		out = append(out, lenBuf[:]...)
		out = append(out, f...)
	}
	return out
}

// Unpack reverses Pack, returning the original ordered frames.
func Unpack(payload []byte) ([][]byte, error) {
	var frames [][]byte
	for len(payload) > 0 {
		if len(payload) < 4 {
			return nil, fmt.Errorf("wire: truncated length prefix (%d bytes left)", len(payload))
		}
		n := binary.BigEndian.Uint32(payload[:4])
		payload = payload[4:]
		if uint64(len(payload)) < uint64(n) {
			return nil, fmt.Errorf("wire: truncated frame, want %d bytes, have %d", n, len(payload))
		}
		frames = append(frames, payload[:n])
		payload = payload[n:]
	}
	return frames, nil
}
