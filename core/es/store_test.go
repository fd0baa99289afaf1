package es

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type streamAgg struct {
	BaseAggregate
	typ string
}

func (a *streamAgg) GetAggType() string { return a.typ }
func (a *streamAgg) Apply(any) error    { return nil }

func TestStreamID(t *testing.T) {
	a := &streamAgg{typ: "User"}
	a.SetID("7f9c:x")

	id, err := StreamID(a)
	require.NoError(t, err)
	require.Equal(t, "User:7f9c:x", id)

	aggType, aggID, err := ParseStreamID(id)
	require.NoError(t, err)
	require.Equal(t, "User", aggType)
	require.Equal(t, "7f9c:x", aggID)

	_, err = StreamID(&streamAgg{typ: "User"})
	require.ErrorIs(t, err, ErrInvalidStreamID)

	_, err = NewStreamID("", "1")
	require.ErrorIs(t, err, ErrInvalidStreamID)

	_, err = NewStreamID("a:b", "1")
	require.ErrorIs(t, err, ErrInvalidStreamID)

	for _, bad := range []string{"", "User", ":1", "User:"} {
		_, _, err = ParseStreamID(bad)
		require.ErrorIs(t, err, ErrInvalidStreamID, bad)
	}
}
