package es

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Env wires a store, publisher, registry and repository with shared
// configuration.
type Env struct {
	id        string
	log       *slog.Logger
	store     EventStore
	publisher Publisher
	registry  *EventRegistry
	factory   RecordFactory
	repo      Repository
}

func (e *Env) ID() string                   { return e.id }
func (e *Env) Repository() Repository       { return e.repo }
func (e *Env) Store() EventStore            { return e.store }
func (e *Env) Publisher() Publisher         { return e.publisher }
func (e *Env) Registry() *EventRegistry     { return e.registry }
func (e *Env) RecordFactory() RecordFactory { return e.factory }

func NewEnv(opts ...EnvOption) (*Env, error) {
	var (
		id      = gonanoid.Must(6)
		options = newEnvOptions(opts...)
	)

	log := options.log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("env", id))

	if options.store == nil {
		return nil, fmt.Errorf("env %s: no event store configured", id)
	}

	e := &Env{
		id:        id,
		log:       log,
		store:     options.store,
		publisher: options.publisher,
		registry:  NewRegistry(),
		factory:   NewRecordFactory(options.factoryOpts...),
	}

	for _, fn := range options.registerFuncs {
		fn(e.registry)
	}
	RegisterEvents(e.registry, options.events...)
	e.log.Debug("registered events", slog.Int("count", e.registry.Types()))

	if ds, ok := e.store.(interface{ SetDecoder(Decoder) }); ok {
		ds.SetDecoder(e.registry)
	}

	if e.publisher == nil {
		e.publisher = NewInProcessPublisher(e.log)
	}

	e.repo = NewRepository(
		e.log,
		e.store,
		e.publisher,
		WithRecordFactory(e.factory),
		WithMetrics(options.metrics),
	)

	return e, nil
}

// ReadStream reads a stream back if the store supports it.
func (e *Env) ReadStream(ctx context.Context, streamID string) ([]EventRecord, error) {
	r, ok := e.store.(StreamReader)
	if !ok {
		return nil, fmt.Errorf("store %T cannot read streams", e.store)
	}
	return r.ReadStream(ctx, streamID)
}
