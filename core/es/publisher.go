package es

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Publisher delivers committed domain events to interested parties.
// Publish blocks until the event is handed off or delivery failed.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

type PublisherFunc func(ctx context.Context, event any) error

func (f PublisherFunc) Publish(ctx context.Context, event any) error { return f(ctx, event) }

// NopPublisher drops every event.
func NopPublisher() Publisher {
	return PublisherFunc(func(context.Context, any) error { return nil })
}

// Handler receives events from an InProcessPublisher.
type Handler func(ctx context.Context, event any) error

// InProcessPublisher calls its handlers sequentially, in subscription order.
// The first handler error stops delivery of that event and is returned.
type InProcessPublisher struct {
	mu       sync.RWMutex
	log      *slog.Logger
	nextID   int
	handlers []subscription
}

type subscription struct {
	id int
	h  Handler
}

func NewInProcessPublisher(log *slog.Logger) *InProcessPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &InProcessPublisher{log: log.With(slog.String("publisher", "in-process"))}
}

// Subscribe registers h and returns a function that removes it again.
func (p *InProcessPublisher) Subscribe(h Handler) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.handlers = append(p.handlers, subscription{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, s := range p.handlers {
				if s.id == id {
					p.handlers = append(p.handlers[:i:i], p.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

func (p *InProcessPublisher) Publish(ctx context.Context, event any) error {
	p.mu.RLock()
	handlers := p.handlers
	p.mu.RUnlock()

	for _, s := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.h(ctx, event); err != nil {
			p.log.Warn(
				"handler failed",
				slog.String("event_type", EventTypeOf(event)),
				slog.Int("handler", s.id),
				slog.Any("err", err),
			)
			return fmt.Errorf("handler %d: %w", s.id, err)
		}
	}
	return nil
}

var _ Publisher = (*InProcessPublisher)(nil)
