package users

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateUserCommand_Validate(t *testing.T) {
	valid := CreateUserCommand{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}
	require.NoError(t, valid.Validate())

	for _, tc := range []struct {
		name   string
		mutate func(*CreateUserCommand)
		fields []string
	}{
		{"empty name", func(c *CreateUserCommand) { c.Name = " " }, []string{"name"}},
		{"short name", func(c *CreateUserCommand) { c.Name = "A" }, []string{"name"}},
		{"long name", func(c *CreateUserCommand) { c.Name = strings.Repeat("a", 101) }, []string{"name"}},
		{"empty email", func(c *CreateUserCommand) { c.Email = "" }, []string{"email"}},
		{"bad email", func(c *CreateUserCommand) { c.Email = "ada" }, []string{"email"}},
		{"short password", func(c *CreateUserCommand) { c.Password = "1234567" }, []string{"password"}},
		{"long password", func(c *CreateUserCommand) { c.Password = strings.Repeat("p", 129) }, []string{"password"}},
		{"everything", func(c *CreateUserCommand) { *c = CreateUserCommand{} }, []string{"email", "name", "password"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cmd := valid
			tc.mutate(&cmd)
			err := cmd.Validate()
			require.ErrorIs(t, err, ErrInvalidCommand)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			got := make([]string, 0, len(ve.Fields))
			for f := range ve.Fields {
				got = append(got, f)
			}
			require.ElementsMatch(t, tc.fields, got)
		})
	}
}

func TestCreateUserCommand_Bounds(t *testing.T) {
	cmd := CreateUserCommand{Name: "Al", Email: "a@b", Password: strings.Repeat("p", 8)}
	require.NoError(t, cmd.Validate())

	cmd.Name = strings.Repeat("ä", 100)
	cmd.Password = strings.Repeat("p", 128)
	require.NoError(t, cmd.Validate())
}

func TestValidationError_Message(t *testing.T) {
	err := CreateUserCommand{Name: "Ada", Email: "", Password: "x"}.Validate()
	require.EqualError(t, err, "invalid command: email: is required; password: must be between 8 and 128 characters")
}
