package jwtechohandler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	jwtmiddleware "github.com/contactbook/go-jwt-middleware"
	"github.com/contactbook/go-jwt-middleware/core"
	"github.com/contactbook/go-jwt-middleware/validator"
)

// DefaultClaimsKey is the echo.Context key validated claims are stored under.
const DefaultClaimsKey = "jwt"

// echoMiddlewareConfig holds all configuration for the middleware
type echoMiddlewareConfig struct {
	errorHandler func(echo.Context, error) error
	contextKey   string
	options      []jwtmiddleware.Option
}

type echoContextKey struct{}

// errorSlot carries the error handler's result out of CheckJWT.
type errorSlot struct {
	err error
}

// NewEchoMiddleware builds an Echo middleware that validates tokens with
// validateToken. Validated claims are stored on the echo.Context under the
// configured key and on the request context for jwtmiddleware.GetClaims.
func NewEchoMiddleware(validateToken jwtmiddleware.ValidateToken, opts ...Option) (echo.MiddlewareFunc, error) {
	config := &echoMiddlewareConfig{
		errorHandler: DefaultEchoErrorHandler,
		contextKey:   DefaultClaimsKey,
	}
	for _, opt := range opts {
		opt(config)
	}

	middlewareOpts := append([]jwtmiddleware.Option{
		jwtmiddleware.WithValidateToken(validateToken),
	}, config.options...)
	middlewareOpts = append(middlewareOpts, jwtmiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		c, ok := r.Context().Value(echoContextKey{}).(echo.Context)
		if !ok {
			jwtmiddleware.DefaultErrorHandler(w, r, err)
			return
		}
		if slot, ok := r.Context().Value(errorSlot{}).(*errorSlot); ok {
			slot.err = config.errorHandler(c, err)
		}
	}))

	middleware, err := jwtmiddleware.New(middlewareOpts...)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			slot := &errorSlot{}
			ctx := context.WithValue(c.Request().Context(), echoContextKey{}, c)
			ctx = context.WithValue(ctx, errorSlot{}, slot)

			handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)
				if claims, err := core.GetClaims[any](r.Context()); err == nil {
					c.Set(config.contextKey, claims)
				}
				slot.err = next(c)
			})

			middleware.CheckJWT(handler).ServeHTTP(c.Response(), c.Request().WithContext(ctx))
			return slot.err
		}
	}, nil
}

// DefaultEchoErrorHandler writes the same status, challenge and body as
// jwtmiddleware.DefaultErrorHandler.
func DefaultEchoErrorHandler(c echo.Context, err error) error {
	resp := jwtmiddleware.ResponseFor(err)
	if resp.Challenge != "" {
		c.Response().Header().Set("WWW-Authenticate", resp.Challenge)
	}
	return c.JSONBlob(resp.Status, []byte(resp.Body))
}

// GetClaims extracts the validated claims from the Echo context.
func GetClaims(c echo.Context, contextKey string) (*validator.Claims, bool) {
	claims, ok := c.Get(contextKey).(*validator.Claims)
	return claims, ok
}
