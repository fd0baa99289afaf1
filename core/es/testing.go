package es

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// === Helpers ===

type TestingEnv struct {
	*Env
	t *testing.T
}

func (e *TestingEnv) Assert() *TestingEnvAssert {
	return &TestingEnvAssert{env: e}
}

// StartTestEnv builds an Env on an in-memory store and an in-process
// publisher unless opts say otherwise.
func StartTestEnv(
	t *testing.T,
	opts ...EnvOption,
) *TestingEnv {
	t.Helper()
	e, err := NewEnv(
		WithLog(slog.New(slog.DiscardHandler)),
		WithInMemory(),
		WithEnvOpts(opts...),
	)
	require.NoError(t, err)
	return &TestingEnv{
		t:   t,
		Env: e,
	}
}

type TestingEnvAssert struct {
	env *TestingEnv
}

// Save saves agg and requires success and an empty uncommitted list.
func (a *TestingEnvAssert) Save(agg Aggregate) {
	t := a.env.t
	t.Helper()
	require.NoError(t, a.env.Repository().Save(t.Context(), agg))
	require.Empty(t, agg.Uncommitted())
}

// Stream reads the aggregate's stream and requires n records.
func (a *TestingEnvAssert) Stream(agg Aggregate, n int) []EventRecord {
	t := a.env.t
	t.Helper()
	streamID, err := StreamID(agg)
	require.NoError(t, err)
	records, err := a.env.ReadStream(t.Context(), streamID)
	require.NoError(t, err)
	require.Len(t, records, n)
	return records
}
