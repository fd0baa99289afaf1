package es

import (
	"context"
	"fmt"
	"strings"
)

// EventStore appends records to named streams.
//
// AppendToStream is atomic per call: afterwards either every record is
// visible at the end of the stream in the given order, or none is. There is
// no expected-version check, so concurrent writers to the same stream may
// interleave their batches. An empty batch fails with ErrStoreNoEvents.
type EventStore interface {
	AppendToStream(ctx context.Context, streamID string, records []EventRecord) error
}

// StreamReader reads a stream back in append order. Unknown streams fail
// with ErrStreamNotFound.
type StreamReader interface {
	ReadStream(ctx context.Context, streamID string) ([]EventRecord, error)
}

// EventStoreReader is implemented by all bundled stores.
type EventStoreReader interface {
	EventStore
	StreamReader
}

const streamIDSep = ":"

// StreamID returns the stream an aggregate's events are appended to:
// "<aggregate type>:<aggregate id>".
func StreamID(agg Aggregate) (string, error) {
	return NewStreamID(agg.GetAggType(), agg.GetID())
}

func NewStreamID(aggType, aggID string) (string, error) {
	if aggType == "" {
		return "", fmt.Errorf("%w: aggregate type is empty", ErrInvalidStreamID)
	}
	if strings.Contains(aggType, streamIDSep) {
		return "", fmt.Errorf("%w: aggregate type %q contains %q", ErrInvalidStreamID, aggType, streamIDSep)
	}
	if aggID == "" {
		return "", fmt.Errorf("%w: aggregate id is empty", ErrInvalidStreamID)
	}
	return aggType + streamIDSep + aggID, nil
}

// ParseStreamID splits a stream id at its first separator.
func ParseStreamID(streamID string) (aggType, aggID string, err error) {
	aggType, aggID, ok := strings.Cut(streamID, streamIDSep)
	if !ok || aggType == "" || aggID == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidStreamID, streamID)
	}
	return aggType, aggID, nil
}
