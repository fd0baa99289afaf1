package es

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/codewandler/userstore-go/internal/codec"
)

// wireRecord is the self-describing form records take in every backend.
type wireRecord struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Version   Version         `json:"version"`
	Data      json.RawMessage `json:"data"`
}

// MarshalPayload encodes an event payload. Raw payloads pass through as is.
func MarshalPayload(data any) ([]byte, error) {
	switch d := data.(type) {
	case json.RawMessage:
		return d, nil
	case nil:
		return []byte("null"), nil
	}
	return codec.Default.Marshal(data)
}

func MarshalRecord(r EventRecord) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	data, err := MarshalPayload(r.Data)
	if err != nil {
		return nil, fmt.Errorf("encode payload of %s (%s): %w", r.ID, r.Type, err)
	}
	return codec.Default.Marshal(wireRecord{
		ID:        r.ID,
		Type:      r.Type,
		Timestamp: r.Timestamp,
		Version:   r.Version,
		Data:      data,
	})
}

// UnmarshalRecord decodes a record. With a nil decoder the payload is left
// as json.RawMessage.
func UnmarshalRecord(b []byte, dec Decoder) (EventRecord, error) {
	var w wireRecord
	if err := codec.Default.Unmarshal(b, &w); err != nil {
		return EventRecord{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return recordFromWire(w, dec)
}

// MarshalRecords encodes a batch as one JSON array.
func MarshalRecords(records []EventRecord) ([]byte, error) {
	ws := make([]json.RawMessage, len(records))
	for i, r := range records {
		b, err := MarshalRecord(r)
		if err != nil {
			return nil, err
		}
		ws[i] = b
	}
	return codec.Default.Marshal(ws)
}

func UnmarshalRecords(b []byte, dec Decoder) ([]EventRecord, error) {
	var ws []wireRecord
	if err := codec.Default.Unmarshal(b, &ws); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	out := make([]EventRecord, len(ws))
	for i, w := range ws {
		r, err := recordFromWire(w, dec)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func recordFromWire(w wireRecord, dec Decoder) (EventRecord, error) {
	r := EventRecord{
		ID:        w.ID,
		Type:      w.Type,
		Timestamp: w.Timestamp,
		Version:   w.Version,
		Data:      w.Data,
	}
	if err := r.Validate(); err != nil {
		return EventRecord{}, err
	}
	if dec != nil {
		ev, err := dec.Decode(w.Type, w.Data)
		if err != nil {
			return EventRecord{}, err
		}
		r.Data = ev
	}
	return r, nil
}
