package es

import (
	"fmt"

	"github.com/codewandler/userstore-go/core/es/assert"
)

// Applier is the interface for types that can apply events to update their state.
type Applier interface {
	Apply(event any) error
}

// Aggregate is the contract the Repository needs to persist an event-sourced
// domain object.
//
// An aggregate maintains:
//   - Identity: type and ID, which together name the aggregate stream
//   - Uncommitted events: events raised and applied but not yet saved
//
// The typical lifecycle is:
//  1. A factory function or command method calls RaiseAndApply
//  2. Apply mutates state from each event; nothing else mutates state
//  3. Repository.Save persists and publishes the uncommitted events and
//     then calls MarkCommitted
type Aggregate interface {
	Applier

	// GetAggType returns the aggregate type name used for stream identification.
	GetAggType() string
	// GetID returns the unique identifier of this aggregate instance.
	GetID() string

	// Uncommitted returns a copy of the events raised since the last commit, in order.
	Uncommitted() []any
	// MarkCommitted clears the uncommitted events.
	MarkCommitted()
}

// BaseAggregate is an embeddable helper that tracks identity and uncommitted events.
// It is not safe for concurrent use.
type BaseAggregate struct {
	id          string
	uncommitted []any
}

func (b *BaseAggregate) GetID() string   { return b.id }
func (b *BaseAggregate) SetID(id string) { b.id = id }

// Raise records an event as uncommitted without applying it.
// Use RaiseAndApply from command methods.
func (b *BaseAggregate) Raise(event any) { b.uncommitted = append(b.uncommitted, event) }

// MarkCommitted clears the uncommitted events. Calling it twice is harmless.
//
// Only the Repository should call this, after the events are durably
// appended. Calling it earlier drops the events for good.
func (b *BaseAggregate) MarkCommitted() { b.uncommitted = nil }

func (b *BaseAggregate) HasUncommitted() bool { return len(b.uncommitted) > 0 }

func (b *BaseAggregate) Uncommitted() []any {
	out := make([]any, len(b.uncommitted))
	copy(out, b.uncommitted)
	return out
}

func (b *BaseAggregate) Checked(c assert.Cond, thenFunc func() error) error {
	if err := c.Check(); err != nil {
		return err
	}
	return thenFunc()
}

// === Helpers ===

type raiseApplier interface {
	Raise(event any)
	Apply(event any) error
}

// RaiseAndApply validates all events, then applies each one and records it
// as uncommitted. An event is only recorded once Apply accepted it; the first
// failure stops the operation.
func RaiseAndApply(a raiseApplier, events ...any) (err error) {
	if len(events) == 0 {
		return
	}

	// validate
	for _, e := range events {
		if ev, ok := e.(interface{ Validate() error }); ok {
			if err = ev.Validate(); err != nil {
				return fmt.Errorf("invalid event %T: %w", ev, err)
			}
		}
	}

	for _, e := range events {
		if err = a.Apply(e); err != nil {
			return
		}
		a.Raise(e)
	}
	return
}

func RaiseAndApplyD(a raiseApplier, events ...any) func() error {
	return func() error {
		return RaiseAndApply(a, events...)
	}
}

// UnsupportedEvent is returned by Apply for event variants the aggregate
// does not know.
func UnsupportedEvent(agg Aggregate, ev any) error {
	return fmt.Errorf("%w: %T on %s", ErrUnsupportedEvent, ev, agg.GetAggType())
}
