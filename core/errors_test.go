package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Is(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		sentinel error
		server   bool
	}{
		{
			name:     "missing token",
			err:      NewValidationError(ErrorCodeTokenMissing, "missing", nil),
			sentinel: ErrJWTMissing,
		},
		{
			name:     "invalid token",
			err:      NewValidationError(ErrorCodeTokenInvalid, "invalid", nil),
			sentinel: ErrJWTInvalid,
		},
		{
			name:     "key not found",
			err:      NewKeyNotFoundError("k2"),
			sentinel: ErrKeyNotFound,
		},
		{
			name:     "key construction",
			err:      NewValidationError(ErrorCodeKeyConstruction, "bad key", errors.New("bad modulus")),
			sentinel: ErrKeyConstruction,
			server:   true,
		},
		{
			name:     "provider unreachable, wrapped",
			err:      fmt.Errorf("fetching: %w", NewValidationError(ErrorCodeProviderUnreachable, "down", nil)),
			sentinel: ErrProviderUnreachable,
			server:   true,
		},
	}

	all := []error{ErrJWTMissing, ErrJWTInvalid, ErrKeyNotFound, ErrKeyConstruction, ErrProviderUnreachable}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			for _, sentinel := range all {
				assert.Equal(t, sentinel == testCase.sentinel, errors.Is(testCase.err, sentinel), sentinel.Error())
			}
			assert.Equal(t, testCase.server, IsServerError(testCase.err))
		})
	}
}

func TestNewKeyNotFoundError(t *testing.T) {
	err := NewKeyNotFoundError("k2")
	assert.Equal(t, "k2", err.KeyID)
	assert.Contains(t, err.Error(), `"k2"`)

	err = NewKeyNotFoundError("")
	assert.Equal(t, "no key id in token header", err.Error())
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestValidationError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewValidationError(ErrorCodeProviderUnreachable, "could not fetch JWKS", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not fetch JWKS: connection refused", err.Error())
}

func TestIsServerError_UnknownError(t *testing.T) {
	assert.True(t, IsServerError(errors.New("something else")))
}
