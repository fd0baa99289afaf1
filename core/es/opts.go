package es

import "log/slog"

type (
	valueOption[T any] struct{ v T }

	ClockOption         valueOption[Clock]
	VersioningOption    valueOption[VersioningStrategy]
	IDGeneratorOption   valueOption[IDGenerator]
	RecordFactoryOption valueOption[RecordFactory]
	StoreOption         valueOption[EventStore]
	PublisherOption     valueOption[Publisher]
	LogOption           valueOption[*slog.Logger]
	MemoryOption        struct{}
	EventRegisterOption struct {
		ctors []func() any
	}
	RegisterFuncOption valueOption[func(Registrar)]
	MultiOption[T any] struct{ opts []T }
	EnvOpts            MultiOption[EnvOption]
	FactoryOpts        MultiOption[FactoryOption]
)

func WithClock(c Clock) ClockOption                          { return ClockOption{v: c} }
func WithVersioning(s VersioningStrategy) VersioningOption   { return VersioningOption{v: s} }
func WithIDGenerator(gen IDGenerator) IDGeneratorOption      { return IDGeneratorOption{v: gen} }
func WithRecordFactory(f RecordFactory) RecordFactoryOption  { return RecordFactoryOption{v: f} }
func WithStore(s EventStore) StoreOption                     { return StoreOption{v: s} }
func WithPublisher(p Publisher) PublisherOption              { return PublisherOption{v: p} }
func WithLog(l *slog.Logger) LogOption                       { return LogOption{v: l} }
func WithInMemory() MemoryOption                             { return MemoryOption{} }
func WithEvent[T any]() EventRegisterOption                  { return WithEvents(Event[T]()) }
func WithEvents(ctors ...func() any) EventRegisterOption     { return EventRegisterOption{ctors: ctors} }
func WithRegisterFunc(fn func(Registrar)) RegisterFuncOption { return RegisterFuncOption{v: fn} }
func WithEnvOpts(opts ...EnvOption) EnvOpts                  { return EnvOpts{opts: opts} }
func WithFactoryOpts(opts ...FactoryOption) FactoryOpts      { return FactoryOpts{opts: opts} }

// === factory ===

func (o ClockOption) applyToFactory(f *factoryOpts)       { f.clock = o.v }
func (o VersioningOption) applyToFactory(f *factoryOpts)  { f.versioning = o.v }
func (o IDGeneratorOption) applyToFactory(f *factoryOpts) { f.idGenerator = o.v }
func (o FactoryOpts) applyToFactory(f *factoryOpts) {
	for _, opt := range o.opts {
		opt.applyToFactory(f)
	}
}

// === env ===

func (o ClockOption) applyToEnv(e *envOptions)       { e.factoryOpts = append(e.factoryOpts, o) }
func (o VersioningOption) applyToEnv(e *envOptions)  { e.factoryOpts = append(e.factoryOpts, o) }
func (o IDGeneratorOption) applyToEnv(e *envOptions) { e.factoryOpts = append(e.factoryOpts, o) }
func (o FactoryOpts) applyToEnv(e *envOptions)       { e.factoryOpts = append(e.factoryOpts, o) }
func (o StoreOption) applyToEnv(e *envOptions)       { e.store = o.v }
func (o PublisherOption) applyToEnv(e *envOptions)   { e.publisher = o.v }
func (o LogOption) applyToEnv(e *envOptions)         { e.log = o.v }
func (o MemoryOption) applyToEnv(e *envOptions)      { e.store = NewInMemoryStore() }
func (o EventRegisterOption) applyToEnv(e *envOptions) {
	e.events = append(e.events, o.ctors...)
}
func (o RegisterFuncOption) applyToEnv(e *envOptions) {
	e.registerFuncs = append(e.registerFuncs, o.v)
}
func (o EnvOpts) applyToEnv(e *envOptions) {
	for _, opt := range o.opts {
		opt.applyToEnv(e)
	}
}

// === repo ===

func (o RecordFactoryOption) applyToRepository(r *repoOpts) { r.factory = o.v }
