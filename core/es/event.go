package es

import (
	"fmt"
	"sync"

	"github.com/codewandler/userstore-go/core/reflector"
	"github.com/codewandler/userstore-go/internal/codec"
)

// EventTypeOf returns the logical type name of a domain event: the result of
// its EventType method if it has one, the short Go type name otherwise.
func EventTypeOf(ev any) string {
	if t, ok := ev.(interface{ EventType() string }); ok {
		return t.EventType()
	}
	return reflector.ShortNameOf(ev)
}

// EventRegistry maps event type names to constructors so we can decode persisted events.
type EventRegistry struct {
	mu    sync.RWMutex
	codec codec.Codec
	news  map[string]func() any
}

func NewRegistry() *EventRegistry {
	return &EventRegistry{codec: codec.Default, news: map[string]func() any{}}
}

func (r *EventRegistry) Register(eventType string, ctor func() any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.news[eventType] = ctor
}

// Types returns the number of registered event types.
func (r *EventRegistry) Types() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.news)
}

func (r *EventRegistry) Decode(eventType string, data []byte) (any, error) {
	r.mu.RLock()
	ctor, ok := r.news[eventType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
	ev := ctor()
	if len(data) > 0 {
		if err := r.codec.Unmarshal(data, ev); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
	}
	return ev, nil
}

type Registrar interface {
	Register(eventType string, ctor func() any)
}

// Decoder turns a persisted payload back into a typed event.
type Decoder interface {
	Decode(eventType string, data []byte) (any, error)
}

func RegisterEventFor[T any](r Registrar) {
	RegisterEvents(r, Event[T]())
}

// Event returns a reflection-free constructor for an event of type T.
// Each call to the returned function constructs a fresh *T via new(T).
func Event[T any]() func() any { return func() any { return new(T) } }

// RegisterEvents calls each constructor once to derive the event type name
// and registers the constructor under it.
func RegisterEvents(r Registrar, ctors ...func() any) {
	for _, ctor := range ctors {
		r.Register(EventTypeOf(ctor()), ctor)
	}
}

var (
	_ Registrar = (*EventRegistry)(nil)
	_ Decoder   = (*EventRegistry)(nil)
)
