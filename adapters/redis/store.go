// Package redis stores event streams as Redis streams.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/codewandler/userstore-go/core/es"
)

const defaultKeyPrefix = "userstore:es:"

const (
	fieldID     = "id"
	fieldType   = "type"
	fieldRecord = "record"
)

// Client is the subset of go-redis the store needs.
type Client interface {
	TxPipelined(ctx context.Context, fn func(goredis.Pipeliner) error) ([]goredis.Cmder, error)
	XRange(ctx context.Context, stream, start, stop string) *goredis.XMessageSliceCmd
	XLen(ctx context.Context, stream string) *goredis.IntCmd
}

type Config struct {
	Client    Client       // Client is required
	Log       *slog.Logger // Log for diagnostics (optional)
	KeyPrefix string       // KeyPrefix is prepended to stream ids, default "userstore:es:"
	Registry  es.Decoder   // Registry decodes payloads in ReadStream; without it payloads stay raw
}

// EventStore writes each batch with MULTI/EXEC so either all XADDs of a
// batch are applied or none is.
type EventStore struct {
	client   Client
	log      *slog.Logger
	prefix   string
	registry es.Decoder
}

func NewEventStore(cfg Config) (*EventStore, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis: client is required")
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &EventStore{
		client:   cfg.Client,
		log:      log.With(slog.String("store", "redis"), slog.String("prefix", prefix)),
		prefix:   prefix,
		registry: cfg.Registry,
	}, nil
}

func (s *EventStore) SetDecoder(d es.Decoder) { s.registry = d }

func (s *EventStore) key(streamID string) string { return s.prefix + streamID }

// AppendToStream adds the batch in one MULTI/EXEC transaction. A context
// that ends once the transaction is on the wire leaves its outcome unknown:
// EXEC may have run, so the error wraps es.ErrOutcomeUnknown.
func (s *EventStore) AppendToStream(ctx context.Context, streamID string, records []es.EventRecord) error {
	if err := es.ValidateRecords(records); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	values := make([]map[string]any, len(records))
	for i, r := range records {
		v, err := encodeRecord(r)
		if err != nil {
			return err
		}
		values[i] = v
	}

	key := s.key(streamID)
	cmds, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		for _, v := range values {
			p.XAdd(ctx, &goredis.XAddArgs{Stream: key, Values: v})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("redis: append to %s: %w: %w", key, es.ErrOutcomeUnknown, err)
		}
		return fmt.Errorf("redis: append to %s: %w", key, err)
	}

	var lastID string
	if n := len(cmds); n > 0 {
		if c, ok := cmds[n-1].(*goredis.StringCmd); ok {
			lastID = c.Val()
		}
	}
	s.log.Debug(
		"append",
		slog.String("key", key),
		slog.String("last_id", lastID),
		slog.Int("num_events", len(records)),
	)
	return nil
}

func (s *EventStore) ReadStream(ctx context.Context, streamID string) ([]es.EventRecord, error) {
	key := s.key(streamID)
	msgs, err := s.client.XRange(ctx, key, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read %s: %w", key, err)
	}
	if len(msgs) == 0 {
		return nil, es.ErrStreamNotFound
	}

	out := make([]es.EventRecord, len(msgs))
	for i, m := range msgs {
		r, err := decodeEntry(m, s.registry)
		if err != nil {
			return nil, fmt.Errorf("redis: entry %s of %s: %w", m.ID, key, err)
		}
		out[i] = r
	}
	return out, nil
}

// StreamLen returns the number of records in a stream.
func (s *EventStore) StreamLen(ctx context.Context, streamID string) (int64, error) {
	return s.client.XLen(ctx, s.key(streamID)).Result()
}

func encodeRecord(r es.EventRecord) (map[string]any, error) {
	b, err := es.MarshalRecord(r)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		fieldID:     r.ID,
		fieldType:   r.Type,
		fieldRecord: string(b),
	}, nil
}

func decodeEntry(m goredis.XMessage, dec es.Decoder) (es.EventRecord, error) {
	raw, ok := m.Values[fieldRecord].(string)
	if !ok {
		return es.EventRecord{}, fmt.Errorf("%w: missing %q field", es.ErrInvalidRecord, fieldRecord)
	}
	r, err := es.UnmarshalRecord([]byte(raw), dec)
	if err != nil {
		return es.EventRecord{}, err
	}
	if id, _ := m.Values[fieldID].(string); id != r.ID {
		return es.EventRecord{}, fmt.Errorf("%w: id field %q does not match record %q", es.ErrInvalidRecord, id, r.ID)
	}
	return r, nil
}

var (
	_ es.EventStoreReader = (*EventStore)(nil)
	_ Client              = (*goredis.Client)(nil)
)
