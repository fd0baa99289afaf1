package estests

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/userstore-go/adapters/sqlite"
	"github.com/codewandler/userstore-go/core/es"
	"github.com/codewandler/userstore-go/core/es/estests/domain"
)

type roundTripStore interface {
	es.EventStoreReader
	SetDecoder(es.Decoder)
}

func TestStores_RoundTrip(t *testing.T) {
	stores := map[string]func(t *testing.T) roundTripStore{
		"memory": func(*testing.T) roundTripStore { return es.NewInMemoryStore() },
		"sqlite": func(t *testing.T) roundTripStore {
			s, err := sqlite.NewEventStore(t.Context(), sqlite.Config{
				Path: filepath.Join(t.TempDir(), "events.db"),
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			reg := es.NewRegistry()
			domain.Register(reg)

			s := open(t)
			s.SetDecoder(reg)

			seq := 0
			f := es.NewRecordFactory(
				es.WithClock(es.FixedClock(time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC))),
				es.WithVersioning(es.NewSimpleVersioningStrategy(es.WithEventVersion[domain.Reset](2))),
				es.WithIDGenerator(func() string {
					seq++
					return fmt.Sprintf("evt-%d", seq)
				}),
			)

			first := f.CreateFromDomainEvents([]any{
				&domain.Incremented{Inc: 3},
				&domain.Reset{Reason: "manual"},
			})
			second := f.CreateFromDomainEvents([]any{&domain.Incremented{Inc: 7}})

			const streamID = "test_agg:rt-1"
			require.NoError(t, s.AppendToStream(t.Context(), streamID, first))
			require.NoError(t, s.AppendToStream(t.Context(), streamID, second))

			got, err := s.ReadStream(t.Context(), streamID)
			require.NoError(t, err)
			require.Equal(t, append(first, second...), got)
			require.Equal(t, es.Version(2), got[1].Version)

			_, err = s.ReadStream(t.Context(), "test_agg:missing")
			require.ErrorIs(t, err, es.ErrStreamNotFound)
		})
	}
}
