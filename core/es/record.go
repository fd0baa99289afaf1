package es

import (
	"fmt"
	"log/slog"
	"time"
)

// EventRecord is the persisted form of one domain event. Records are built
// by a RecordFactory at save time and never modified afterwards.
type EventRecord struct {
	ID        string
	Type      string
	Timestamp time.Time
	Version   Version
	// Data is the original domain event. After decoding without a registry
	// it holds the raw payload bytes as json.RawMessage.
	Data any
}

func (r EventRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	if r.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidRecord)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidRecord)
	}
	if !r.Version.Valid() {
		return fmt.Errorf("%w: version %d < %d", ErrInvalidRecord, r.Version, DefaultVersion)
	}
	return nil
}

func (r EventRecord) LogAttrs() slog.Attr {
	return slog.Group(
		"record",
		slog.String("id", r.ID),
		slog.String("type", r.Type),
		r.Version.SlogAttr(),
		slog.Time("ts", r.Timestamp),
	)
}

func recordIDs(records []EventRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

// ValidateRecords checks a batch before it is handed to a backend.
func ValidateRecords(records []EventRecord) error {
	if len(records) == 0 {
		return ErrStoreNoEvents
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
