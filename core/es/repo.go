package es

import (
	"context"
	"fmt"
	"log/slog"
)

// Repository persists and publishes the uncommitted events of aggregates.
// It has no load path: aggregates are built by their own factories.
type Repository interface {
	Save(ctx context.Context, agg Aggregate) error
}

type (
	repoOpts struct {
		factory RecordFactory
		metrics ESMetrics
	}
	RepositoryOption interface{ applyToRepository(*repoOpts) }
)

func newRepoOpts(opts ...RepositoryOption) repoOpts {
	options := repoOpts{
		factory: NewRecordFactory(),
		metrics: NopESMetrics(),
	}
	for _, opt := range opts {
		opt.applyToRepository(&options)
	}
	return options
}

type repository struct {
	log       *slog.Logger
	store     EventStore
	publisher Publisher
	factory   RecordFactory
	metrics   ESMetrics
}

func NewRepository(
	log *slog.Logger,
	store EventStore,
	publisher Publisher,
	opts ...RepositoryOption,
) Repository {
	if log == nil {
		log = slog.Default()
	}
	if publisher == nil {
		publisher = NopPublisher()
	}
	options := newRepoOpts(opts...)
	return &repository{
		log:       log.With(slog.String("repo", fmt.Sprintf("%T", store))),
		store:     store,
		publisher: publisher,
		factory:   options.factory,
		metrics:   options.metrics,
	}
}

// Save runs, in this order: derive the stream id, build records, append them
// in one batch, publish every event in order, mark the aggregate committed.
// A failure stops the sequence and leaves the uncommitted events in place;
// the returned *SaveError tells whether the append already happened.
func (r *repository) Save(ctx context.Context, agg Aggregate) error {
	uncommitted := agg.Uncommitted()
	if len(uncommitted) == 0 {
		return nil
	}

	aggType := agg.GetAggType()
	timer := r.metrics.RepoSaveDuration(aggType)
	defer timer.ObserveDuration()

	log := r.log.With(
		slog.Group(
			"agg",
			slog.String("type", aggType),
			slog.String("id", agg.GetID()),
		),
	)

	fail := func(se *SaveError) error {
		r.metrics.SaveFailed(aggType, se.Stage)
		log.Error("save failed", se.LogAttrs())
		return se
	}

	streamID, err := StreamID(agg)
	if err != nil {
		return fail(&SaveError{Stage: StagePrepare, Err: err})
	}

	records := r.factory.CreateFromDomainEvents(uncommitted)
	ids := recordIDs(records)
	if err := ctx.Err(); err != nil {
		return fail(&SaveError{Stage: StagePrepare, StreamID: streamID, RecordIDs: ids, Err: err})
	}

	appendTimer := r.metrics.StoreAppendDuration(aggType)
	err = r.store.AppendToStream(ctx, streamID, records)
	appendTimer.ObserveDuration()
	if err != nil {
		return fail(&SaveError{Stage: StageAppend, StreamID: streamID, RecordIDs: ids, Err: err})
	}
	r.metrics.EventsAppended(aggType, len(records))

	for i, ev := range uncommitted {
		err = ctx.Err()
		if err == nil {
			err = r.publisher.Publish(ctx, ev)
		}
		if err != nil {
			r.metrics.EventsPublished(aggType, i)
			return fail(&SaveError{
				Stage:     StagePublish,
				StreamID:  streamID,
				RecordIDs: ids,
				Published: i,
				Err:       fmt.Errorf("publish %s (%s): %w", records[i].ID, records[i].Type, err),
			})
		}
	}
	r.metrics.EventsPublished(aggType, len(uncommitted))

	agg.MarkCommitted()

	log.Debug(
		"saved",
		slog.String("stream", streamID),
		slog.Int("num_events", len(records)),
	)

	return nil
}

var _ Repository = &repository{}
