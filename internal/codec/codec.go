// Package codec encodes event payloads for the record wire format.
package codec

import "encoding/json"

type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON encodes compactly. Payload bytes are stored verbatim inside the
// record, so the encoding must be stable for a given value.
type JSON struct{}

func (JSON) Name() string                   { return "json" }
func (JSON) Marshal(v any) ([]byte, error)   { return json.Marshal(v) }
func (JSON) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

// Default is the codec used when none is configured.
var Default Codec = JSON{}
