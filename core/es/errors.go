package es

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrUnsupportedEvent = errors.New("unsupported event")
	ErrStoreNoEvents    = errors.New("no events to store")
	ErrStreamNotFound   = errors.New("stream not found")
	ErrInvalidStreamID  = errors.New("invalid stream id")
	ErrInvalidRecord    = errors.New("invalid event record")

	// ErrNotPersisted marks a failed Save that left the store untouched.
	// Retrying is safe.
	ErrNotPersisted = errors.New("events not persisted")
	// ErrNotPublished marks a failed Save whose events are already in the
	// store but were not (all) published. Retrying appends them again.
	ErrNotPublished = errors.New("events persisted but not published")
	// ErrOutcomeUnknown is wrapped by stores when a batch was sent but its
	// write was never confirmed. The events may or may not be stored, so a
	// blind retry can duplicate them.
	ErrOutcomeUnknown = errors.New("append outcome unknown")
)

// SaveStage names the step of Repository.Save that failed.
type SaveStage string

const (
	StagePrepare SaveStage = "prepare"
	StageAppend  SaveStage = "append"
	StagePublish SaveStage = "publish"
)

// SaveError is returned by Repository.Save. It matches ErrNotPersisted,
// ErrNotPublished or ErrOutcomeUnknown with errors.Is, depending on the
// stage and cause, as well as the underlying cause.
type SaveError struct {
	Stage     SaveStage
	StreamID  string
	RecordIDs []string
	// Published counts the events delivered before the publish stage failed.
	Published int
	Err       error
}

// Persisted reports whether the events are known to have reached the store.
func (e *SaveError) Persisted() bool { return e.Stage == StagePublish }

// Uncertain reports whether the store could not confirm the append.
func (e *SaveError) Uncertain() bool {
	return e.Stage == StageAppend && errors.Is(e.Err, ErrOutcomeUnknown)
}

func (e *SaveError) kind() error {
	switch {
	case e.Persisted():
		return ErrNotPublished
	case e.Uncertain():
		return ErrOutcomeUnknown
	}
	return ErrNotPersisted
}

func (e *SaveError) Error() string {
	if e.Persisted() {
		return fmt.Sprintf("save %s: %s (%d/%d published): %v", e.StreamID, e.kind(), e.Published, len(e.RecordIDs), e.Err)
	}
	return fmt.Sprintf("save %s: %s: %s: %v", e.StreamID, e.kind(), e.Stage, e.Err)
}

func (e *SaveError) Unwrap() []error { return []error{e.kind(), e.Err} }

func (e *SaveError) LogAttrs() slog.Attr {
	return slog.Group(
		"save_error",
		slog.String("stage", string(e.Stage)),
		slog.String("stream", e.StreamID),
		slog.Int("records", len(e.RecordIDs)),
		slog.Int("published", e.Published),
		slog.Bool("persisted", e.Persisted()),
		slog.Bool("uncertain", e.Uncertain()),
		slog.Any("err", e.Err),
	)
}
