package user

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrEmptyEmail         = errors.New("email address is empty")
	ErrInvalidEmailFormat = errors.New("email address has an invalid format")

	emailFormat = regexp.MustCompile(`^(.+)@(.+)$`)
)

// EmailAddress is a syntactically checked e-mail address.
type EmailAddress struct {
	value string
}

func ParseEmailAddress(s string) (EmailAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EmailAddress{}, ErrEmptyEmail
	}
	if !emailFormat.MatchString(s) {
		return EmailAddress{}, ErrInvalidEmailFormat
	}
	return EmailAddress{value: s}, nil
}

func MustParseEmailAddress(s string) EmailAddress {
	e, err := ParseEmailAddress(s)
	if err != nil {
		panic(err)
	}
	return e
}

func (e EmailAddress) String() string { return e.value }
func (e EmailAddress) IsZero() bool   { return e.value == "" }

func (e EmailAddress) MarshalJSON() ([]byte, error) { return json.Marshal(e.value) }

func (e *EmailAddress) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseEmailAddress(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
