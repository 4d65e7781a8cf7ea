package jwtechohandler

import (
	"github.com/labstack/echo/v4"

	jwtmiddleware "github.com/contactbook/go-jwt-middleware"
)

// Option is a function that configures the middleware
type Option func(*echoMiddlewareConfig)

// WithErrorHandler sets a custom error handler. Its return value is returned
// from the Echo handler chain.
func WithErrorHandler(handler func(echo.Context, error) error) Option {
	return func(config *echoMiddlewareConfig) {
		if handler != nil {
			config.errorHandler = handler
		}
	}
}

// WithContextKey sets a custom context key to store claims
func WithContextKey(key string) Option {
	return func(config *echoMiddlewareConfig) {
		config.contextKey = key
	}
}

// WithTokenExtractor sets a custom token extractor
func WithTokenExtractor(extractor jwtmiddleware.TokenExtractor) Option {
	return WithMiddlewareOptions(jwtmiddleware.WithTokenExtractor(extractor))
}

// WithMiddlewareOptions passes options to the underlying JWTMiddleware. An
// error handler set here is replaced; use WithErrorHandler instead.
func WithMiddlewareOptions(opts ...jwtmiddleware.Option) Option {
	return func(config *echoMiddlewareConfig) {
		config.options = append(config.options, opts...)
	}
}
