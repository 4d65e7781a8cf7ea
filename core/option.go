package core

import "errors"

// Option configures a Core. It returns an error for invalid input so New can
// refuse to build a half-configured Core.
type Option func(*Core) error

// WithValidator sets the token validator. Required.
func WithValidator(v Validator) Option {
	return func(c *Core) error {
		if v == nil {
			return errors.New("validator cannot be nil")
		}
		c.validator = v
		return nil
	}
}

// WithCredentialsOptional lets requests without a token through with no
// claims. By default a missing token is rejected with ErrJWTMissing.
func WithCredentialsOptional(optional bool) Option {
	return func(c *Core) error {
		c.credentialsOptional = optional
		return nil
	}
}

// WithLogger sets an optional logger.
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
