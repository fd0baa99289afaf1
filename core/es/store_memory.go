package es

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryStore keeps encoded records per stream. It is meant for tests and
// development and goes through the same wire encoding as the real backends.
type InMemoryStore struct {
	mu      sync.RWMutex
	log     *slog.Logger
	decoder Decoder
	streams map[string][][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		log:     slog.Default().With(slog.String("store", "memory")),
		streams: map[string][][]byte{},
	}
}

// SetDecoder makes ReadStream return typed events instead of raw payloads.
func (s *InMemoryStore) SetDecoder(d Decoder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decoder = d
}

func (s *InMemoryStore) AppendToStream(ctx context.Context, streamID string, records []EventRecord) error {
	if err := ValidateRecords(records); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// encode the whole batch before touching the stream
	batch := make([][]byte, len(records))
	for i, r := range records {
		b, err := MarshalRecord(r)
		if err != nil {
			return err
		}
		batch[i] = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams[streamID] = append(s.streams[streamID], batch...)

	s.log.Debug(
		"append",
		slog.String("stream", streamID),
		slog.Int("num_events", len(batch)),
		slog.Int("stream_len", len(s.streams[streamID])),
	)
	return nil
}

func (s *InMemoryStore) ReadStream(ctx context.Context, streamID string) ([]EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	encoded, ok := s.streams[streamID]
	dec := s.decoder
	s.mu.RUnlock()
	if !ok {
		return nil, ErrStreamNotFound
	}

	out := make([]EventRecord, 0, len(encoded))
	for _, b := range encoded {
		r, err := UnmarshalRecord(b, dec)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Streams returns the number of streams written so far.
func (s *InMemoryStore) Streams() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams)
}

var _ EventStoreReader = (*InMemoryStore)(nil)
