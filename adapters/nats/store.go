package nats

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/crypto/blake2b"

	"github.com/codewandler/userstore-go/core/es"
)

const (
	defaultSubjectPrefix = "userstore.es"
	defaultStreamName    = "USERSTORE_ES"
	defaultAckTimeout    = 5 * time.Second
	fetchMaxWait         = time.Second

	headerStreamID   = "x-stream-id"
	headerEventCount = "x-event-count"
	headerEventIDs   = "x-event-ids"
	headerEventTypes = "x-event-types"
)

// RetentionPolicy defines how messages are retained in the stream.
type RetentionPolicy int

const (
	// RetentionLimits keeps messages until limits (MaxMsgs, MaxBytes, MaxAge) are reached.
	RetentionLimits RetentionPolicy = iota
	// RetentionInterest keeps messages only while there are consumers with interest.
	RetentionInterest
)

func (r RetentionPolicy) toJetStream() jetstream.RetentionPolicy {
	if r == RetentionInterest {
		return jetstream.InterestPolicy
	}
	return jetstream.LimitsPolicy
}

type EventStoreConfig struct {
	Connect        Connector    // Connect is used to create the underlying NATS connection. If nil, ConnectDefault() is used.
	Log            *slog.Logger // Log for diagnostics (optional)
	SubjectPrefix  string       // SubjectPrefix is the prefix used to store events, default "userstore.es"
	StreamSubjects []string     // StreamSubjects feed the stream, default "<SubjectPrefix>.>"
	StreamName     string
	Registry       es.Decoder // Registry decodes payloads in ReadStream; without it payloads stay raw

	// Retention defines the retention policy for the stream (default: RetentionLimits).
	Retention RetentionPolicy
	// MaxAge, MaxBytes and MaxMsgs limit the stream; zero means unlimited.
	MaxAge   time.Duration
	MaxBytes int64
	MaxMsgs  int64
	// Duplicates is the window in which a resent batch is dropped by the server.
	Duplicates time.Duration
	// Memory keeps the stream in memory instead of on disk.
	Memory bool
	// AckTimeout bounds the wait for the server to confirm an append (default 5s).
	AckTimeout time.Duration
}

// EventStore appends each batch as one JetStream message on
// "<prefix>.<aggregate type>.<aggregate id>". A batch is therefore stored
// atomically and in order; ReadStream flattens the batches again.
type EventStore struct {
	nc            *natsgo.Conn
	closeNc       closeFunc
	js            jetstream.JetStream
	stream        jetstream.Stream
	log           *slog.Logger
	registry      es.Decoder
	subjectPrefix string
	streamName    string
	ackTimeout    time.Duration
}

func NewEventStore(cfg EventStoreConfig) (*EventStore, error) {
	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, closeNatsCon, err := doConnect()
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeNatsCon()
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	streamName := strings.ToUpper(cfg.StreamName)
	if streamName == "" {
		streamName = defaultStreamName
	}

	subjectPrefix := cfg.SubjectPrefix
	if subjectPrefix == "" {
		subjectPrefix = defaultSubjectPrefix
	}

	streamSubjects := cfg.StreamSubjects
	if len(streamSubjects) == 0 {
		streamSubjects = []string{subjectPrefix + ".>"}
	}

	// 0 means unlimited in our config, -1 in NATS
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = -1
	}
	maxMsgs := cfg.MaxMsgs
	if maxMsgs == 0 {
		maxMsgs = -1
	}

	storage := jetstream.FileStorage
	if cfg.Memory {
		storage = jetstream.MemoryStorage
	}

	log = log.With(
		slog.String("store", "nats_js"),
		slog.String("stream", streamName),
		slog.String("subjectPrefix", subjectPrefix),
	)

	log.Debug("ensuring stream")

	stream, streamInfo, err := ensureStream(js, jetstream.StreamConfig{
		Name:       streamName,
		Subjects:   streamSubjects,
		Retention:  cfg.Retention.toJetStream(),
		Storage:    storage,
		MaxAge:     cfg.MaxAge,
		MaxBytes:   maxBytes,
		MaxMsgs:    maxMsgs,
		Duplicates: cfg.Duplicates,
		FirstSeq:   1,
	})
	if err != nil {
		closeNatsCon()
		return nil, fmt.Errorf("ensure stream %s: %w", streamName, err)
	}

	log.Debug("ensured", slog.Any("stream", streamInfo.Config.Subjects))

	ackTimeout := cfg.AckTimeout
	if ackTimeout <= 0 {
		ackTimeout = defaultAckTimeout
	}

	return &EventStore{
		nc:            nc,
		closeNc:       closeNatsCon,
		js:            js,
		stream:        stream,
		log:           log,
		registry:      cfg.Registry,
		subjectPrefix: subjectPrefix,
		streamName:    streamName,
		ackTimeout:    ackTimeout,
	}, nil
}

func (e *EventStore) SetDecoder(d es.Decoder) { e.registry = d }

func (e *EventStore) Close() error {
	e.js.CleanupPublisher()
	e.closeNc()
	e.log.Debug("closed event store")
	return nil
}

func (e *EventStore) AppendToStream(ctx context.Context, streamID string, records []es.EventRecord) error {
	if err := es.ValidateRecords(records); err != nil {
		return err
	}

	subject, err := subjectForStream(e.subjectPrefix, streamID)
	if err != nil {
		return err
	}

	msg := natsgo.NewMsg(subject)
	msg.Data, err = es.MarshalRecords(records)
	if err != nil {
		return err
	}

	ids := make([]string, len(records))
	types := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
		types[i] = r.Type
	}
	msg.Header.Set(headerStreamID, streamID)
	msg.Header.Set(headerEventCount, strconv.Itoa(len(records)))
	msg.Header.Set(headerEventIDs, strings.Join(ids, ","))
	msg.Header.Set(headerEventTypes, strings.Join(types, ","))

	// once the message is out ctx is no longer honored: the batch may be
	// stored, so only the server's answer or the ack timeout ends the wait
	if err := ctx.Err(); err != nil {
		return err
	}
	ackF, err := e.js.PublishMsgAsync(msg, jetstream.WithMsgID(batchMsgID(streamID, ids)))
	if err != nil {
		return fmt.Errorf("append to subject %s: %w", subject, err)
	}

	timeout := time.NewTimer(e.ackTimeout)
	defer timeout.Stop()

	select {
	case err := <-ackF.Err():
		if errors.Is(err, natsgo.ErrConnectionClosed) {
			return fmt.Errorf("append to subject %s: %w: %w", subject, es.ErrOutcomeUnknown, err)
		}
		return fmt.Errorf("append to subject %s: %w", subject, err)
	case ack := <-ackF.Ok():
		e.log.Debug(
			"appended",
			slog.String("stream_id", streamID),
			slog.Uint64("seq", ack.Sequence),
			slog.Int("num_events", len(records)),
			slog.Bool("duplicate", ack.Duplicate),
		)
		return nil
	case <-timeout.C:
		return fmt.Errorf("append to subject %s: no ack after %s: %w", subject, e.ackTimeout, es.ErrOutcomeUnknown)
	}
}

// batchMsgID identifies a batch for JetStream de-duplication. It only
// catches the exact same records being sent again within the Duplicates
// window. Repository.Save creates fresh record ids on every attempt, so a
// retried Save is never deduplicated here.
func batchMsgID(streamID string, recordIDs []string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(streamID))
	for _, id := range recordIDs {
		h.Write([]byte{0})
		h.Write([]byte(id))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (e *EventStore) ReadStream(ctx context.Context, streamID string) ([]es.EventRecord, error) {
	subject, err := subjectForStream(e.subjectPrefix, streamID)
	if err != nil {
		return nil, err
	}

	last, err := e.stream.GetLastMsgForSubject(ctx, subject)
	if err != nil {
		if errors.Is(err, jetstream.ErrMsgNotFound) {
			return nil, es.ErrStreamNotFound
		}
		return nil, fmt.Errorf("get last message for subject %q: %w", subject, err)
	}

	cc, err := e.stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		DeliverPolicy:  jetstream.DeliverAllPolicy,
		FilterSubjects: []string{subject},
	})
	if err != nil {
		return nil, err
	}

	var (
		records []es.EventRecord
		seq     uint64
	)
	for seq < last.Sequence {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mb, err := cc.Fetch(100, jetstream.FetchMaxWait(fetchMaxWait))
		if err != nil {
			return nil, err
		}

		n := 0
		for msg := range mb.Messages() {
			n++
			batch, msgSeq, err := e.decodeMsg(msg)
			if err != nil {
				return nil, fmt.Errorf("decode message on %s: %w", subject, err)
			}
			records = append(records, batch...)
			seq = msgSeq
			if seq >= last.Sequence {
				break
			}
		}
		if err := mb.Error(); err != nil && !errors.Is(err, natsgo.ErrTimeout) {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("read %s: stopped at seq %d, expected %d", subject, seq, last.Sequence)
		}
	}
	return records, nil
}

func (e *EventStore) decodeMsg(msg jetstream.Msg) ([]es.EventRecord, uint64, error) {
	md, err := msg.Metadata()
	if err != nil {
		return nil, 0, err
	}
	records, err := es.UnmarshalRecords(msg.Data(), e.registry)
	if err != nil {
		return nil, 0, err
	}
	if n := msg.Headers().Get(headerEventCount); n != "" && n != strconv.Itoa(len(records)) {
		return nil, 0, fmt.Errorf("batch at seq %d: header says %s records, got %d", md.Sequence.Stream, n, len(records))
	}
	return records, md.Sequence.Stream, nil
}

func ensureStream(js jetstream.JetStream, cfg jetstream.StreamConfig) (s jetstream.Stream, si *jetstream.StreamInfo, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*natsgo.DefaultTimeout)
	defer cancel()

	s, err = js.CreateOrUpdateStream(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	si, err = s.Info(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s, si, nil
}

var _ es.EventStoreReader = (*EventStore)(nil)
