package core

import (
	"context"
	"time"
)

// Validator turns a raw token into claims. *validator.Validator implements it
// through ValidateToken.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (any, error)
}

// Logger defines an optional logging interface compatible with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Core checks bearer tokens independently of the transport that carried
// them. The HTTP middleware, the Gin and Echo adapters and the gRPC
// interceptors all delegate to it.
type Core struct {
	validator           Validator
	credentialsOptional bool
	logger              Logger
}

// New returns a Core. WithValidator is required.
//
//	c, err := core.New(
//	    core.WithValidator(v),
//	    core.WithLogger(logger),
//	)
func New(opts ...Option) (*Core, error) {
	c := &Core{}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.validator == nil {
		return nil, NewValidationError(
			ErrorCodeValidatorNotSet,
			"validator is required but not set (use WithValidator option)",
			nil,
		)
	}

	return c, nil
}

// CheckToken returns the claims for token.
//
// An empty token means no credential was presented: the result is
// (nil, nil) when credentials are optional and ErrJWTMissing otherwise.
// Validator errors are returned as they are so callers can match them
// against the sentinels.
func (c *Core) CheckToken(ctx context.Context, token string) (any, error) {
	if token == "" {
		return c.noCredentials()
	}

	start := time.Now()
	claims, err := c.validator.ValidateToken(ctx, token)
	elapsed := time.Since(start)

	if err != nil {
		c.logRejection(err, elapsed)
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug("Token validated successfully", "duration", elapsed)
	}
	return claims, nil
}

func (c *Core) noCredentials() (any, error) {
	if c.credentialsOptional {
		if c.logger != nil {
			c.logger.Debug("No token provided, but credentials are optional")
		}
		return nil, nil
	}

	if c.logger != nil {
		c.logger.Warn("No token provided and credentials are required")
	}
	return nil, NewValidationError(ErrorCodeTokenMissing, "no bearer token presented", nil)
}

// logRejection logs client-side rejections at warn and failures on our side
// (provider down, unusable key) at error.
func (c *Core) logRejection(err error, elapsed time.Duration) {
	if c.logger == nil {
		return
	}
	if IsServerError(err) {
		c.logger.Error("Token could not be checked", "error", err, "duration", elapsed)
		return
	}
	c.logger.Warn("Token rejected", "error", err, "duration", elapsed)
}
