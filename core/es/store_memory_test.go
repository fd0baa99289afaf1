package es

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	s := NewInMemoryStore()

	_, err := s.ReadStream(t.Context(), "x:1")
	require.ErrorIs(t, err, ErrStreamNotFound)

	require.ErrorIs(t, s.AppendToStream(t.Context(), "x:1", nil), ErrStoreNoEvents)

	r1, r2 := testRecord(), testRecord()
	r2.ID = "rec-2"
	require.NoError(t, s.AppendToStream(t.Context(), "x:1", []EventRecord{r1}))
	require.NoError(t, s.AppendToStream(t.Context(), "x:1", []EventRecord{r2}))

	got, err := s.ReadStream(t.Context(), "x:1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "rec-1", got[0].ID)
	require.Equal(t, "rec-2", got[1].ID)
	require.Equal(t, 1, s.Streams())

	reg := NewRegistry()
	RegisterEventFor[wireEvent](reg)
	s.SetDecoder(reg)
	got, err = s.ReadStream(t.Context(), "x:1")
	require.NoError(t, err)
	require.Equal(t, r1, got[0])
}

func TestInMemoryStore_BatchIsAtomic(t *testing.T) {
	s := NewInMemoryStore()

	bad := testRecord()
	bad.Version = 0
	require.ErrorIs(t, s.AppendToStream(t.Context(), "x:1", []EventRecord{testRecord(), bad}), ErrInvalidRecord)

	_, err := s.ReadStream(t.Context(), "x:1")
	require.ErrorIs(t, err, ErrStreamNotFound)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.ErrorIs(t, s.AppendToStream(ctx, "x:1", []EventRecord{testRecord()}), context.Canceled)
	require.Zero(t, s.Streams())
}

func TestInMemoryStore_ConcurrentBatches(t *testing.T) {
	s := NewInMemoryStore()

	const writers, perBatch = 8, 5
	var wg sync.WaitGroup
	wg.Add(writers)
	for w := range writers {
		go func() {
			defer wg.Done()
			batch := make([]EventRecord, perBatch)
			for i := range batch {
				batch[i] = testRecord()
				batch[i].ID = fmt.Sprintf("w%d-%d", w, i)
			}
			require.NoError(t, s.AppendToStream(context.Background(), "x:1", batch))
		}()
	}
	wg.Wait()

	got, err := s.ReadStream(t.Context(), "x:1")
	require.NoError(t, err)
	require.Len(t, got, writers*perBatch)

	// batches never interleave
	for i := 0; i < len(got); i += perBatch {
		var w int
		_, err := fmt.Sscanf(got[i].ID, "w%d-0", &w)
		require.NoError(t, err)
		for j := range perBatch {
			require.Equal(t, fmt.Sprintf("w%d-%d", w, j), got[i+j].ID)
		}
	}
}
