package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/userstore-go/core/es"
)

func TestCreate(t *testing.T) {
	email := MustParseEmailAddress("ada@example.com")
	u, err := Create("Ada", email, "h1")
	require.NoError(t, err)

	require.Equal(t, "Ada", u.Name())
	require.Equal(t, email, u.Email())
	require.Equal(t, "h1", u.PasswordHash())
	require.Equal(t, "User", u.GetAggType())
	_, err = uuid.Parse(u.GetID())
	require.NoError(t, err)

	events := u.Uncommitted()
	require.Len(t, events, 1)
	created, ok := events[0].(*Created)
	require.True(t, ok)
	require.Equal(t, &Created{ID: u.GetID(), Name: "Ada", Email: email, PasswordHash: "h1"}, created)
	require.Equal(t, "Created", es.EventTypeOf(created))
}

func TestCreate_Invalid(t *testing.T) {
	email := MustParseEmailAddress("ada@example.com")

	_, err := Create("", email, "h1")
	require.ErrorIs(t, err, ErrEmptyName)
	_, err = Create(" \t", email, "h1")
	require.ErrorIs(t, err, ErrEmptyName)
	_, err = Create("Ada", email, "  ")
	require.ErrorIs(t, err, ErrEmptyPassword)
	_, err = Create("Ada", EmailAddress{}, "h1")
	require.ErrorIs(t, err, ErrEmptyEmail)
}

func TestCreate_DistinctIDs(t *testing.T) {
	email := MustParseEmailAddress("ada@example.com")
	a, err := Create("Ada", email, "h1")
	require.NoError(t, err)
	b, err := Create("Ada", email, "h1")
	require.NoError(t, err)
	require.NotEqual(t, a.GetID(), b.GetID())
}

func TestRename(t *testing.T) {
	u, err := Create("Ada", MustParseEmailAddress("ada@example.com"), "h1")
	require.NoError(t, err)
	u.MarkCommitted()

	require.NoError(t, u.Rename("Ada"))
	require.Empty(t, u.Uncommitted())

	require.ErrorIs(t, u.Rename(" "), ErrEmptyName)
	require.Empty(t, u.Uncommitted())

	require.NoError(t, u.Rename("Ada Lovelace"))
	require.Equal(t, "Ada Lovelace", u.Name())
	require.Equal(t, []any{&Renamed{Name: "Ada Lovelace"}}, u.Uncommitted())
	require.Equal(t, "Renamed", es.EventTypeOf(u.Uncommitted()[0]))
}

func TestApply_Unsupported(t *testing.T) {
	u := &User{}
	require.ErrorIs(t, u.Apply(struct{}{}), es.ErrUnsupportedEvent)
	require.ErrorIs(t, u.Apply(Created{}), es.ErrUnsupportedEvent)
}

func TestRegister(t *testing.T) {
	reg := es.NewRegistry()
	Register(reg)

	ev, err := reg.Decode("Created", []byte(`{"id":"1","name":"Ada","email":"ada@example.com","password_hash":"h1"}`))
	require.NoError(t, err)
	require.Equal(t, &Created{ID: "1", Name: "Ada", Email: MustParseEmailAddress("ada@example.com"), PasswordHash: "h1"}, ev)

	ev, err = reg.Decode("Renamed", []byte(`{"name":"Bob"}`))
	require.NoError(t, err)
	require.Equal(t, &Renamed{Name: "Bob"}, ev)
}
