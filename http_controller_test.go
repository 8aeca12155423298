package auth_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-authd"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		payload auth.SignUpRequest
		fields  []string
	}{
		{
			name:    "valid without role",
			payload: auth.SignUpRequest{Name: "A", Email: "a@x.com", Password: "secret1"},
		},
		{
			name:    "valid admin",
			payload: auth.SignUpRequest{Name: "A", Email: "a@x.com", Password: "secret1", Role: "admin"},
		},
		{
			name:    "unknown role",
			payload: auth.SignUpRequest{Name: "A", Email: "a@x.com", Password: "secret1", Role: "root"},
			fields:  []string{"role"},
		},
		{
			name:    "short password",
			payload: auth.SignUpRequest{Name: "A", Email: "a@x.com", Password: "12345"},
			fields:  []string{"password"},
		},
		{
			name:    "password past the bcrypt limit",
			payload: auth.SignUpRequest{Name: "A", Email: "a@x.com", Password: strings.Repeat("p", 73)},
			fields:  []string{"password"},
		},
		{
			name:    "everything missing",
			payload: auth.SignUpRequest{},
			fields:  []string{"email", "name", "password"},
		},
		{
			name:    "bad email",
			payload: auth.SignUpRequest{Name: "A", Email: "a-at-x", Password: "secret1"},
			fields:  []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidationError(tt.payload.Validate())
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var richErr *goerrors.Error
			require.ErrorAs(t, err, &richErr)
			assert.Equal(t, auth.TextCodeValidationFailed, richErr.TextCode)
			details := auth.DetailsOf(err)
			require.Len(t, details, len(tt.fields))
			for i, field := range tt.fields {
				assert.True(t, strings.HasPrefix(details[i], field+": "), details[i])
			}
		})
	}
}

func TestSignInRequest_Validate(t *testing.T) {
	assert.NoError(t, auth.SignInRequest{Email: "a@x.com", Password: "x"}.Validate())

	err := auth.ValidationError(auth.SignInRequest{Email: "nope"}.Validate())
	require.True(t, auth.HasTextCode(err, auth.TextCodeValidationFailed))
	assert.Equal(t, []string{"email: must be a valid email address", "password: cannot be blank"}, auth.DetailsOf(err))
}

func TestSignUpRequest_Message(t *testing.T) {
	msg := auth.SignUpRequest{Name: "A", Email: "a@x.com", Password: "secret1", Role: "admin"}.Message()
	assert.Equal(t, auth.RegisterUserMessage{Name: "A", Email: "a@x.com", Password: "secret1", Role: auth.RoleAdmin}, msg)
}

func TestValidationError_Nil(t *testing.T) {
	assert.NoError(t, auth.ValidationError(nil))
}
