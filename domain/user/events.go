package user

import "github.com/codewandler/userstore-go/core/es"

type (
	// Event is implemented by the events of the User aggregate only.
	Event interface{ isUserEvent() }

	Created struct {
		ID           string       `json:"id"`
		Name         string       `json:"name"`
		Email        EmailAddress `json:"email"`
		PasswordHash string       `json:"password_hash"`
	}

	Renamed struct {
		Name string `json:"name"`
	}
)

func (*Created) isUserEvent() {}
func (*Renamed) isUserEvent() {}

// Register makes the user events decodable.
func Register(r es.Registrar) {
	es.RegisterEvents(r, es.Event[Created](), es.Event[Renamed]())
}
