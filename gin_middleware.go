package jwtmiddleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contactbook/go-jwt-middleware/core"
)

// DefaultGinClaimsKey is the gin.Context key validated claims are stored under.
const DefaultGinClaimsKey = "jwt"

// GinErrorHandler writes the response for a request that failed
// authentication. It must abort the gin.Context.
type GinErrorHandler func(c *gin.Context, err error)

// GinOption configures the GinJWTMiddleware.
type GinOption func(*GinJWTMiddleware) error

type ginContextKey struct{}

// GinJWTMiddleware runs JWTMiddleware.CheckJWT inside a Gin handler chain.
type GinJWTMiddleware struct {
	middleware   *JWTMiddleware
	errorHandler GinErrorHandler
	claimsKey    string
	options      []Option
}

// NewGin constructs a Gin middleware that validates tokens with
// validateToken. Plain Options are passed on with WithGinOptions.
//
// Example:
//
//	m, err := jwtmiddleware.NewGin(v.ValidateToken)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	router.Use(m.CheckJWTGin())
func NewGin(validateToken ValidateToken, opts ...GinOption) (*GinJWTMiddleware, error) {
	m := &GinJWTMiddleware{
		errorHandler: DefaultGinErrorHandler,
		claimsKey:    DefaultGinClaimsKey,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	middlewareOpts := append([]Option{
		WithValidateToken(validateToken),
	}, m.options...)
	middlewareOpts = append(middlewareOpts, WithErrorHandler(m.forwardError))

	middleware, err := New(middlewareOpts...)
	if err != nil {
		return nil, err
	}
	m.middleware = middleware

	return m, nil
}

// WithGinErrorHandler replaces DefaultGinErrorHandler.
func WithGinErrorHandler(h GinErrorHandler) GinOption {
	return func(m *GinJWTMiddleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithGinClaimsKey changes the gin.Context key claims are stored under.
func WithGinClaimsKey(key string) GinOption {
	return func(m *GinJWTMiddleware) error {
		m.claimsKey = key
		return nil
	}
}

// WithGinOptions passes opts to the underlying JWTMiddleware. An error
// handler set here is ignored; use WithGinErrorHandler instead.
func WithGinOptions(opts ...Option) GinOption {
	return func(m *GinJWTMiddleware) error {
		m.options = append(m.options, opts...)
		return nil
	}
}

// CheckJWTGin returns the gin.HandlerFunc. Validated claims are available
// both through GetClaims on the request context and through c.Get under the
// configured claims key.
func (m *GinJWTMiddleware) CheckJWTGin() gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			if claims, err := core.GetClaims[any](r.Context()); err == nil {
				c.Set(m.claimsKey, claims)
			}
			c.Next()
		})

		req := c.Request.WithContext(context.WithValue(c.Request.Context(), ginContextKey{}, c))
		m.middleware.CheckJWT(next).ServeHTTP(c.Writer, req)

		if !passed {
			c.Abort()
		}
	}
}

func (m *GinJWTMiddleware) forwardError(w http.ResponseWriter, r *http.Request, err error) {
	c, ok := r.Context().Value(ginContextKey{}).(*gin.Context)
	if !ok {
		DefaultErrorHandler(w, r, err)
		return
	}
	m.errorHandler(c, err)
}

// DefaultGinErrorHandler writes the same status, challenge and body as
// DefaultErrorHandler and aborts the chain.
func DefaultGinErrorHandler(c *gin.Context, err error) {
	resp := ResponseFor(err)
	if resp.Challenge != "" {
		c.Header("WWW-Authenticate", resp.Challenge)
	}
	c.Data(resp.Status, "application/json", []byte(resp.Body))
	c.Abort()
}
