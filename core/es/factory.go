package es

import gonanoid "github.com/matoous/go-nanoid/v2"

// IDGenerator is a function that generates unique IDs for event records.
type IDGenerator func() string

// DefaultIDGenerator returns the default ID generator using nanoid
// (21 characters from crypto/rand).
func DefaultIDGenerator() IDGenerator {
	return func() string { return gonanoid.Must() }
}

// RecordFactory turns an aggregate's uncommitted domain events into records.
type RecordFactory interface {
	// CreateFromDomainEvents returns one record per event, in the same order.
	CreateFromDomainEvents(events []any) []EventRecord
}

type (
	factoryOpts struct {
		clock       Clock
		versioning  VersioningStrategy
		idGenerator IDGenerator
	}
	FactoryOption interface{ applyToFactory(*factoryOpts) }
)

// EventRecordFactory stamps each event with a fresh ID, the clock's time,
// its type name and the version from the versioning strategy. The event
// itself is carried as the record payload unchanged.
type EventRecordFactory struct {
	clock       Clock
	versioning  VersioningStrategy
	idGenerator IDGenerator
}

func NewRecordFactory(opts ...FactoryOption) *EventRecordFactory {
	options := factoryOpts{
		clock:       SystemClock(),
		versioning:  NewSimpleVersioningStrategy(),
		idGenerator: DefaultIDGenerator(),
	}
	for _, opt := range opts {
		opt.applyToFactory(&options)
	}
	return &EventRecordFactory{
		clock:       options.clock,
		versioning:  options.versioning,
		idGenerator: options.idGenerator,
	}
}

func (f *EventRecordFactory) CreateFromDomainEvents(events []any) []EventRecord {
	records := make([]EventRecord, len(events))
	for i, ev := range events {
		records[i] = EventRecord{
			ID:        f.idGenerator(),
			Type:      EventTypeOf(ev),
			Timestamp: f.clock.Now(),
			Version:   f.versioning.GetVersion(ev),
			Data:      ev,
		}
	}
	return records
}

var _ RecordFactory = (*EventRecordFactory)(nil)
