package es

import "log/slog"

type (
	envOptions struct {
		log           *slog.Logger
		store         EventStore
		publisher     Publisher
		events        []func() any
		registerFuncs []func(Registrar)
		factoryOpts   []FactoryOption
		metrics       ESMetrics
	}

	EnvOption interface {
		applyToEnv(*envOptions)
	}
)

func newEnvOptions(opts ...EnvOption) envOptions {
	options := envOptions{
		store:   NewInMemoryStore(),
		metrics: NopESMetrics(),
	}
	for _, opt := range opts {
		opt.applyToEnv(&options)
	}
	return options
}
