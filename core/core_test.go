package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockValidator struct {
	validateFunc func(ctx context.Context, token string) (any, error)
}

func (m *mockValidator) ValidateToken(ctx context.Context, token string) (any, error) {
	if m.validateFunc != nil {
		return m.validateFunc(ctx, token)
	}
	return nil, errors.New("not implemented")
}

type mockLogger struct {
	debugCalls []logCall
	infoCalls  []logCall
	warnCalls  []logCall
	errorCalls []logCall
}

type logCall struct {
	msg  string
	args []any
}

func (m *mockLogger) Debug(msg string, args ...any) {
	m.debugCalls = append(m.debugCalls, logCall{msg, args})
}

func (m *mockLogger) Info(msg string, args ...any) {
	m.infoCalls = append(m.infoCalls, logCall{msg, args})
}

func (m *mockLogger) Warn(msg string, args ...any) {
	m.warnCalls = append(m.warnCalls, logCall{msg, args})
}

func (m *mockLogger) Error(msg string, args ...any) {
	m.errorCalls = append(m.errorCalls, logCall{msg, args})
}

func TestNew(t *testing.T) {
	v := &mockValidator{}

	t.Run("successful creation with required options", func(t *testing.T) {
		c, err := New(WithValidator(v))
		require.NoError(t, err)
		assert.False(t, c.credentialsOptional)
		assert.Nil(t, c.logger)
	})

	t.Run("successful creation with all options", func(t *testing.T) {
		c, err := New(
			WithValidator(v),
			WithCredentialsOptional(true),
			WithLogger(&mockLogger{}),
		)
		require.NoError(t, err)
		assert.True(t, c.credentialsOptional)
		assert.NotNil(t, c.logger)
	})

	t.Run("error when validator is missing", func(t *testing.T) {
		_, err := New()
		require.Error(t, err)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, ErrorCodeValidatorNotSet, vErr.Code)
	})

	t.Run("error when validator is nil", func(t *testing.T) {
		_, err := New(WithValidator(nil))
		assert.EqualError(t, err, "validator cannot be nil")
	})

	t.Run("error when logger is nil", func(t *testing.T) {
		_, err := New(WithValidator(v), WithLogger(nil))
		assert.EqualError(t, err, "logger cannot be nil")
	})
}

func TestCore_CheckToken(t *testing.T) {
	t.Run("empty token with credentials required", func(t *testing.T) {
		logger := &mockLogger{}
		c, err := New(WithValidator(&mockValidator{}), WithLogger(logger))
		require.NoError(t, err)

		claims, err := c.CheckToken(context.Background(), "")
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrJWTMissing)
		assert.False(t, IsServerError(err))
		assert.Len(t, logger.warnCalls, 1)
	})

	t.Run("empty token with credentials optional", func(t *testing.T) {
		logger := &mockLogger{}
		c, err := New(
			WithValidator(&mockValidator{}),
			WithCredentialsOptional(true),
			WithLogger(logger),
		)
		require.NoError(t, err)

		claims, err := c.CheckToken(context.Background(), "")
		assert.NoError(t, err)
		assert.Nil(t, claims)
		assert.Len(t, logger.debugCalls, 1)
	})

	t.Run("valid token returns the validator's claims", func(t *testing.T) {
		c, err := New(WithValidator(&mockValidator{
			validateFunc: func(_ context.Context, token string) (any, error) {
				return "claims for " + token, nil
			},
		}))
		require.NoError(t, err)

		claims, err := c.CheckToken(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "claims for abc", claims)
	})

	t.Run("validator errors are returned unchanged", func(t *testing.T) {
		logger := &mockLogger{}
		want := NewKeyNotFoundError("k2")
		c, err := New(
			WithValidator(&mockValidator{
				validateFunc: func(context.Context, string) (any, error) {
					return nil, want
				},
			}),
			WithLogger(logger),
		)
		require.NoError(t, err)

		_, err = c.CheckToken(context.Background(), "abc")
		assert.Same(t, want, err)
		assert.Len(t, logger.warnCalls, 1)
		assert.Empty(t, logger.errorCalls)
	})

	t.Run("server-side failures are logged as errors", func(t *testing.T) {
		logger := &mockLogger{}
		c, err := New(
			WithValidator(&mockValidator{
				validateFunc: func(context.Context, string) (any, error) {
					return nil, NewValidationError(ErrorCodeProviderUnreachable, "could not fetch JWKS", errors.New("status 502"))
				},
			}),
			WithLogger(logger),
		)
		require.NoError(t, err)

		_, err = c.CheckToken(context.Background(), "abc")
		assert.ErrorIs(t, err, ErrProviderUnreachable)
		assert.True(t, IsServerError(err))
		assert.Len(t, logger.errorCalls, 1)
		assert.Empty(t, logger.warnCalls)
	})
}
