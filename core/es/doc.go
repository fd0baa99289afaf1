// Package es persists event-sourced aggregates.
//
// # Overview
//
// State changes are recorded as an append-only sequence of immutable domain
// events. An aggregate raises events from its command methods, applies them
// to its own state and keeps them as uncommitted until a [Repository] saves
// them.
//
// # Aggregates
//
// Embed [BaseAggregate] and implement GetAggType and Apply. Command methods
// call [RaiseAndApply]; Apply is the only place state is mutated:
//
//	type User struct {
//	    es.BaseAggregate
//	    name string
//	}
//
//	func (u *User) Rename(name string) error {
//	    return es.RaiseAndApply(u, &Renamed{Name: name})
//	}
//
// Apply must return [UnsupportedEvent] for variants it does not know.
//
// # Saving
//
// [Repository.Save] derives the stream id ("<type>:<id>"), turns the
// uncommitted events into [EventRecord]s with a [RecordFactory], appends
// them to the [EventStore] in one batch, hands every event to the
// [Publisher] in order and finally calls MarkCommitted:
//
//	repo := es.NewRepository(log, store, publisher)
//	if err := repo.Save(ctx, user); err != nil {
//	    if errors.Is(err, es.ErrNotPublished) {
//	        // already stored, saving again would store a duplicate
//	    }
//	}
//
// There is no optimistic concurrency check and no load path.
//
// # Records
//
// The [EventRecordFactory] stamps each event with a unique ID, the time from
// its [Clock] and a schema version from its [VersioningStrategy]. Stores
// encode records with [MarshalRecord]; an [EventRegistry] decodes payloads
// back into typed events:
//
//	reg := es.NewRegistry()
//	es.RegisterEvents(reg, es.Event[Created](), es.Event[Renamed]())
//
// # Environment
//
// [Env] wires a store, a publisher, a registry and a repository:
//
//	env, err := es.NewEnv(
//	    es.WithLog(logger),
//	    es.WithStore(natsStore),
//	    es.WithRegisterFunc(user.Register),
//	)
//	repo := env.Repository()
package es
