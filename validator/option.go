package validator

import (
	"errors"
	"time"
)

// Option is how options for the Validator are set up.
// Options return errors to enable validation during construction.
type Option func(*Validator) error

// WithProvider sets where signing keys and the expected issuer come from.
// This is a required option; *jwks.Provider satisfies it.
func WithProvider(provider KeyProvider) Option {
	return func(v *Validator) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		v.provider = provider
		return nil
	}
}

// WithAudience sets the audience every token must be issued for.
// This is a required option.
func WithAudience(audience string) Option {
	return func(v *Validator) error {
		if audience == "" {
			return errors.New("audience cannot be empty")
		}
		v.audience = audience
		return nil
	}
}

// WithAllowedClockSkew tolerates clock differences when checking exp. The
// default is zero: a token is rejected the second it expires. iat and nbf
// are never checked.
func WithAllowedClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		v.allowedClockSkew = skew
		return nil
	}
}

// WithClock replaces time.Now for time-based claim checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		v.now = now
		return nil
	}
}

// WithLogger sets an optional logger. Rejection causes are logged at debug
// level only; callers never see them.
func WithLogger(logger Logger) Option {
	return func(v *Validator) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		v.logger = logger
		return nil
	}
}
