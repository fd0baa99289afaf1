package es

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInProcessPublisher(t *testing.T) {
	p := NewInProcessPublisher(nil)
	require.NoError(t, p.Publish(t.Context(), "nobody listens"))

	var got []string
	unsubA := p.Subscribe(func(_ context.Context, ev any) error {
		got = append(got, "a:"+ev.(string))
		return nil
	})
	p.Subscribe(func(_ context.Context, ev any) error {
		got = append(got, "b:"+ev.(string))
		return nil
	})

	require.NoError(t, p.Publish(t.Context(), "1"))
	require.Equal(t, []string{"a:1", "b:1"}, got)

	unsubA()
	unsubA()
	require.NoError(t, p.Publish(t.Context(), "2"))
	require.Equal(t, []string{"a:1", "b:1", "b:2"}, got)
}

func TestInProcessPublisher_FirstErrorStops(t *testing.T) {
	var (
		p     = NewInProcessPublisher(nil)
		boom  = errors.New("boom")
		calls int
	)
	p.Subscribe(func(context.Context, any) error { calls++; return boom })
	p.Subscribe(func(context.Context, any) error { calls++; return nil })

	require.ErrorIs(t, p.Publish(t.Context(), "x"), boom)
	require.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.ErrorIs(t, p.Publish(ctx, "x"), context.Canceled)
	require.Equal(t, 1, calls)
}

func TestNopPublisher(t *testing.T) {
	require.NoError(t, NopPublisher().Publish(t.Context(), "x"))
}
