// Package user holds the User aggregate.
package user

import (
	"errors"

	"github.com/google/uuid"

	"github.com/codewandler/userstore-go/core/es"
	"github.com/codewandler/userstore-go/core/es/assert"
	"github.com/codewandler/userstore-go/core/reflector"
)

var (
	ErrEmptyName     = errors.New("name is empty")
	ErrEmptyPassword = errors.New("password hash is empty")
)

var aggType = reflector.TypeInfoFor[User]().Short

type User struct {
	es.BaseAggregate

	name         string
	email        EmailAddress
	passwordHash string
}

// Create builds a new user with a random id. The returned user holds one
// uncommitted Created event.
func Create(name string, email EmailAddress, passwordHash string) (*User, error) {
	u := &User{}
	err := u.Checked(
		assert.All(
			assert.OrErr(assert.NotBlank(name, "name"), ErrEmptyName),
			assert.OrErr(assert.NotBlank(passwordHash, "password hash"), ErrEmptyPassword),
			assert.OrErr(assert.False(email.IsZero(), "email set"), ErrEmptyEmail),
		),
		func() error {
			return u.raise(&Created{
				ID:           uuid.NewString(),
				Name:         name,
				Email:        email,
				PasswordHash: passwordHash,
			})
		},
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) Rename(name string) error {
	if u.name == name {
		return nil
	}
	return u.Checked(
		assert.OrErr(assert.NotBlank(name, "name"), ErrEmptyName),
		func() error { return u.raise(&Renamed{Name: name}) },
	)
}

func (u *User) GetAggType() string   { return aggType }
func (u *User) Name() string         { return u.name }
func (u *User) Email() EmailAddress  { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }

func (u *User) Apply(event any) error {
	switch e := event.(type) {
	case *Created:
		u.SetID(e.ID)
		u.name = e.Name
		u.email = e.Email
		u.passwordHash = e.PasswordHash
	case *Renamed:
		u.name = e.Name
	default:
		return es.UnsupportedEvent(u, event)
	}
	return nil
}

func (u *User) raise(events ...Event) error {
	evs := make([]any, len(events))
	for i, e := range events {
		evs[i] = e
	}
	return es.RaiseAndApply(u, evs...)
}

var _ es.Aggregate = (*User)(nil)
