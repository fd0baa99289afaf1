package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/userstore-go/core/es"
	"github.com/codewandler/userstore-go/domain/user"
)

func TestService_CreateUser(t *testing.T) {
	var (
		te        = es.StartTestEnv(t, es.WithRegisterFunc(user.Register))
		hasher    = fastHasher()
		svc       = NewService(slog.New(slog.DiscardHandler), te.Repository(), hasher)
		published []any
	)
	te.Publisher().(*es.InProcessPublisher).Subscribe(func(_ context.Context, ev any) error {
		published = append(published, ev)
		return nil
	})

	id, err := svc.CreateUser(t.Context(), CreateUserCommand{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	records, err := te.ReadStream(t.Context(), "User:"+id)
	require.NoError(t, err)
	require.Len(t, records, 1)

	created, ok := records[0].Data.(*user.Created)
	require.True(t, ok)
	require.Equal(t, id, created.ID)
	require.Equal(t, "Ada", created.Name)
	require.Equal(t, "ada@example.com", created.Email.String())
	require.NotEqual(t, "correct horse", created.PasswordHash)

	ok, err = hasher.Verify("correct horse", created.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, published, 1)
}

func TestService_CreateUser_Invalid(t *testing.T) {
	te := es.StartTestEnv(t, es.WithRegisterFunc(user.Register))
	svc := NewService(nil, te.Repository(), fastHasher())

	_, err := svc.CreateUser(t.Context(), CreateUserCommand{Name: "A", Email: "x", Password: "short"})
	require.ErrorIs(t, err, ErrInvalidCommand)
	require.Zero(t, te.Store().(*es.InMemoryStore).Streams())
}

func TestService_CreateUser_PublishFails(t *testing.T) {
	var (
		boom  = errors.New("broker down")
		store = es.NewInMemoryStore()
		repo  = es.NewRepository(nil, store, es.PublisherFunc(func(context.Context, any) error { return boom }))
		svc   = NewService(nil, repo, fastHasher())
	)

	id, err := svc.CreateUser(t.Context(), CreateUserCommand{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, es.ErrNotPublished)
	require.ErrorIs(t, err, boom)
	require.NotEmpty(t, id)

	records, err := store.ReadStream(t.Context(), "User:"+id)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

type failingStore struct{ err error }

func (s failingStore) AppendToStream(context.Context, string, []es.EventRecord) error { return s.err }

func TestService_CreateUser_AppendUnconfirmed(t *testing.T) {
	var (
		store = failingStore{err: fmt.Errorf("no ack: %w", es.ErrOutcomeUnknown)}
		repo  = es.NewRepository(nil, store, nil)
		svc   = NewService(nil, repo, fastHasher())
	)

	id, err := svc.CreateUser(t.Context(), CreateUserCommand{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, es.ErrOutcomeUnknown)
	require.NotErrorIs(t, err, es.ErrNotPersisted)
	require.NotEmpty(t, id)
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error)         { return "", errors.New("no entropy") }
func (failingHasher) Verify(string, string) (bool, error) { return false, nil }

func TestService_CreateUser_HashFails(t *testing.T) {
	te := es.StartTestEnv(t)
	svc := NewService(nil, te.Repository(), failingHasher{})

	_, err := svc.CreateUser(t.Context(), CreateUserCommand{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.ErrorContains(t, err, "no entropy")
}
