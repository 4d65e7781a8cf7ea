package jwtmiddleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/contactbook/go-jwt-middleware/core"
)

// CheckJWTSpanName names the span started for every authenticated request.
const CheckJWTSpanName = "jwtmiddleware.CheckJWT"

type JWTMiddleware struct {
	core                *core.Core
	errorHandler        ErrorHandler
	tokenExtractor      TokenExtractor
	validateOnOptions   bool
	exclusionURLHandler ExclusionURLHandler
	logger              Logger
	metrics             Metrics
	tracer              Tracer

	// Temporary fields used during construction
	validateToken       ValidateToken
	credentialsOptional bool
}

// ExclusionURLHandler is a function that takes in a http.Request and returns
// true if the request should be excluded from JWT validation.
type ExclusionURLHandler func(r *http.Request) bool

// New constructs a new JWTMiddleware instance with the supplied options.
//
// Example:
//
//	middleware, err := jwtmiddleware.New(
//	    jwtmiddleware.WithValidator(v),
//	    jwtmiddleware.WithLogger(jwtmiddleware.NewLogrusLogger(logrus.StandardLogger())),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*JWTMiddleware, error) {
	m := &JWTMiddleware{
		validateOnOptions:   true,
		credentialsOptional: false,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", err)
	}

	m.applyDefaults()

	if err := m.createCore(); err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}

	return m, nil
}

func (m *JWTMiddleware) validate() error {
	if m.validateToken == nil {
		return ErrValidateTokenNil
	}
	return nil
}

// validatorAdapter lets a ValidateToken func satisfy core.Validator.
type validatorAdapter struct {
	validateFunc ValidateToken
}

func (v *validatorAdapter) ValidateToken(ctx context.Context, token string) (any, error) {
	return v.validateFunc(ctx, token)
}

func (m *JWTMiddleware) createCore() error {
	coreOpts := []core.Option{
		core.WithValidator(&validatorAdapter{validateFunc: m.validateToken}),
		core.WithCredentialsOptional(m.credentialsOptional),
	}
	if m.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(m.logger))
	}

	coreInstance, err := core.New(coreOpts...)
	if err != nil {
		return err
	}
	m.core = coreInstance
	return nil
}

func (m *JWTMiddleware) applyDefaults() {
	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.tokenExtractor == nil {
		m.tokenExtractor = AuthHeaderTokenExtractor
	}
	if m.metrics == nil {
		m.metrics = NoopMetrics{}
	}
	if m.tracer == nil {
		m.tracer = NoopTracer{}
	}
}

// CheckJWT is the main JWTMiddleware function which performs the main logic. It
// is passed a http.Handler which will be called if the JWT passes validation.
func (m *JWTMiddleware) CheckJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debug("skipping JWT validation for excluded URL",
					"method", r.Method,
					"path", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}
		if !m.validateOnOptions && r.Method == http.MethodOptions {
			if m.logger != nil {
				m.logger.Debug("skipping JWT validation for OPTIONS request")
			}
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.authenticate(r)
		if err != nil {
			if m.logger != nil {
				m.logger.Warn("JWT validation failed",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path)
			}
			m.errorHandler(w, r, err)
			return
		}

		// Credentials optional and none presented.
		if claims == nil {
			if m.logger != nil {
				m.logger.Debug("no credentials provided, continuing without claims (credentials optional)")
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.Clone(core.SetClaims(r.Context(), claims)))
	})
}

// authenticate extracts and validates the request's token, recording one
// span and one metric observation for it.
func (m *JWTMiddleware) authenticate(r *http.Request) (claims any, err error) {
	ctx, span := m.tracer.StartSpan(r.Context(), CheckJWTSpanName)
	start := time.Now()
	defer func() {
		outcome := Outcome(claims, err)
		m.metrics.ObserveAuth(outcome, time.Since(start))
		span.SetTag("auth.outcome", outcome)
		if err != nil {
			span.RecordError(err)
		}
		span.Finish()
	}()

	return m.checkRequest(ctx, r)
}

func (m *JWTMiddleware) checkRequest(ctx context.Context, r *http.Request) (any, error) {
	token, err := m.tokenExtractor(r)
	if err != nil {
		// A credential that cannot be read is treated as no credential.
		if m.logger != nil {
			m.logger.Debug("failed to extract token from request",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path)
		}
		return nil, core.NewValidationError(core.ErrorCodeTokenMissing, "error extracting token", err)
	}

	claims, err := m.core.CheckToken(ctx, token)
	if err != nil {
		return nil, classify(err)
	}
	return claims, nil
}
