package nats

import (
	"context"
	"fmt"
	"log/slog"

	natsgo "github.com/nats-io/nats.go"

	"github.com/codewandler/userstore-go/core/es"
)

const (
	defaultPublishPrefix = "userstore.events"
	headerEventType      = "x-event-type"
)

type PublisherConfig struct {
	Connect       Connector    // Connect is used to create the underlying NATS connection. If nil, ConnectDefault() is used.
	Log           *slog.Logger // Log for diagnostics (optional)
	SubjectPrefix string       // SubjectPrefix for event subjects, default "userstore.events"
}

// Publisher publishes domain events on core NATS subjects
// "<prefix>.<event type>". Publish returns once the server has received the
// message.
type Publisher struct {
	nc      *natsgo.Conn
	closeNc closeFunc
	log     *slog.Logger
	prefix  string
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}
	nc, closeNc, err := doConnect()
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = defaultPublishPrefix
	}

	return &Publisher{
		nc:      nc,
		closeNc: closeNc,
		log:     log.With(slog.String("publisher", "nats"), slog.String("prefix", prefix)),
		prefix:  prefix,
	}, nil
}

func (p *Publisher) Subject(eventType string) string {
	return p.prefix + "." + subjectToken(eventType)
}

func (p *Publisher) Publish(ctx context.Context, event any) error {
	eventType := es.EventTypeOf(event)
	data, err := es.MarshalPayload(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}

	msg := natsgo.NewMsg(p.Subject(eventType))
	msg.Header.Set(headerEventType, eventType)
	msg.Data = data

	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", msg.Subject, err)
	}

	p.log.Debug("published", slog.String("subject", msg.Subject))
	return nil
}

func (p *Publisher) Close() error {
	p.closeNc()
	return nil
}

var _ es.Publisher = (*Publisher)(nil)
