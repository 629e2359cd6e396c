// Package envelope implements the Message Envelope: the immutable unit of
// data passed between a trigger and its matched hooks, and serialized onto
// a Transport.
//
// The wire shape is grounded on the original ZeroMQ plugin's publish/
// consume pair: a multipart message whose first frame is the sender
// identity, whose second frame is a two-level meta map, and whose
// remaining frames are opaque data payloads, each independently
// JSON-encoded. A message with fewer than two frames never round-trips —
// identity and meta are mandatory, data is optional.
package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/streamspace/automationd/internal/apperrors"
)

// Identity names the sender of an Envelope: the Kind it was sent by
// (Namespace/PluginType), and optionally the sending Instance's Name.
// Namespace and PluginType are required — the Hook Registry matches
// envelopes against registered hooks by comparing these two fields.
type Identity struct {
	Name       string `json:"name,omitempty"`
	Namespace  string `json:"plugin_namespace"`
	PluginType string `json:"plugin_type"`
}

func (id Identity) validate() error {
	if id.Namespace == "" || id.PluginType == "" {
		return fmt.Errorf("envelope: identity requires non-empty plugin_namespace and plugin_type, got %+v", id)
	}
	return nil
}

// Envelope is an immutable message: an Identity, a two-level Meta map, and
// an ordered list of opaque Data payloads. Construct one with New; there
// are no exported setters, matching the original Message's treatment as a
// value passed by construction, never mutated in place after being handed
// to a hook callback.
type Envelope struct {
	identity Identity
	meta     map[string]map[string]interface{}
	data     []interface{}
}

// New builds an Envelope from an Identity, a meta map, and zero or more
// data payloads. meta and data are copied so later mutation of the
// caller's maps/slices can't reach back into the Envelope. Returns an
// EncodingError if identity is missing its required fields.
func New(id Identity, meta map[string]map[string]interface{}, data ...interface{}) (*Envelope, error) {
	if err := id.validate(); err != nil {
		return nil, apperrors.Encoding("envelope.New", "invalid identity", err)
	}

	metaCopy := make(map[string]map[string]interface{}, len(meta))
	for section, fields := range meta {
		f := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			f[k] = v
		}
		metaCopy[section] = f
	}
	dataCopy := make([]interface{}, len(data))
	copy(dataCopy, data)
	return &Envelope{identity: id, meta: metaCopy, data: dataCopy}, nil
}

// FromSender builds an Envelope whose identity is filled in from a Kind
// (Namespace/PluginType) and instance name — the common case for a trigger
// constructing an outbound Envelope from inside its own OnInit or callback.
func FromSender(namespace, pluginType, name string, meta map[string]map[string]interface{}, data ...interface{}) (*Envelope, error) {
	return New(Identity{Namespace: namespace, PluginType: pluginType, Name: name}, meta, data...)
}

// Identity returns the Envelope's sender Identity.
func (e *Envelope) Identity() Identity { return e.identity }

// Meta returns the named meta section, or nil if it isn't present.
func (e *Envelope) Meta(section string) map[string]interface{} {
	return e.meta[section]
}

// MetaSections reports which meta sections this Envelope carries.
func (e *Envelope) MetaSections() []string {
	out := make([]string, 0, len(e.meta))
	for k := range e.meta {
		out = append(out, k)
	}
	return out
}

// Data returns the ordered data payloads.
func (e *Envelope) Data() []interface{} { return e.data }

// Encode serializes the Envelope into the multipart wire shape:
// [identity_json, meta_json, data0_json, data1_json, ...]. Each frame is
// encoded independently, matching the original's per-part json.dumps.
func (e *Envelope) Encode() ([][]byte, error) {
	frames := make([][]byte, 0, 2+len(e.data))

	idJSON, err := json.Marshal(e.identity)
	if err != nil {
		return nil, apperrors.Encoding("envelope.Encode", "identity", err)
	}
	frames = append(frames, idJSON)

	metaJSON, err := json.Marshal(e.meta)
	if err != nil {
		return nil, apperrors.Encoding("envelope.Encode", "meta", err)
	}
	frames = append(frames, metaJSON)

	for i, d := range e.data {
		dJSON, err := json.Marshal(d)
		if err != nil {
			return nil, apperrors.Encoding("envelope.Encode", fmt.Sprintf("data[%d]", i), err)
		}
		frames = append(frames, dJSON)
	}
	return frames, nil
}

// Decode parses the multipart wire shape produced by Encode back into an
// Envelope. A message with fewer than two frames is rejected: identity and
// meta are mandatory, matching the original consume()'s
// "message consumed had less than 2 frames" check.
func Decode(frames [][]byte) (*Envelope, error) {
	if len(frames) < 2 {
		return nil, apperrors.Encoding("envelope.Decode", fmt.Sprintf("message has %d frames, need at least 2", len(frames)), nil)
	}

	var id Identity
	if err := json.Unmarshal(frames[0], &id); err != nil {
		return nil, apperrors.Encoding("envelope.Decode", "identity", err)
	}

	var meta map[string]map[string]interface{}
	if err := json.Unmarshal(frames[1], &meta); err != nil {
		return nil, apperrors.Encoding("envelope.Decode", "meta", err)
	}

	data := make([]interface{}, 0, len(frames)-2)
	for i, frame := range frames[2:] {
		var v interface{}
		if err := json.Unmarshal(frame, &v); err != nil {
			return nil, apperrors.Encoding("envelope.Decode", fmt.Sprintf("data[%d]", i), err)
		}
		data = append(data, v)
	}

	return New(id, meta, data...)
}
