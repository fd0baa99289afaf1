package users

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/codewandler/userstore-go/domain/user"
)

const (
	MinNameLength     = 2
	MaxNameLength     = 100
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var ErrInvalidCommand = errors.New("invalid command")

type CreateUserCommand struct {
	Name     string
	Email    string
	Password string
}

// LogValue keeps the password out of logs.
func (c CreateUserCommand) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", c.Name),
		slog.String("email", c.Email),
	)
}

// ValidationError lists the problems per field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], ", "))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidCommand, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidCommand }

// Validate checks the command and returns a *ValidationError when it is not
// acceptable.
func (c CreateUserCommand) Validate() error {
	var ve ValidationError

	name := strings.TrimSpace(c.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		ve.add("name", "is required")
	case n < MinNameLength || n > MaxNameLength:
		ve.add("name", fmt.Sprintf("must be between %d and %d characters", MinNameLength, MaxNameLength))
	}

	if _, err := user.ParseEmailAddress(c.Email); err != nil {
		switch {
		case errors.Is(err, user.ErrEmptyEmail):
			ve.add("email", "is required")
		default:
			ve.add("email", "has an invalid format")
		}
	}

	switch n := utf8.RuneCountInString(c.Password); {
	case n == 0:
		ve.add("password", "is required")
	case n < MinPasswordLength || n > MaxPasswordLength:
		ve.add("password", fmt.Sprintf("must be between %d and %d characters", MinPasswordLength, MaxPasswordLength))
	}

	if len(ve.Fields) > 0 {
		return &ve
	}
	return nil
}
