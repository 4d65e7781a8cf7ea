package jwtmiddleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/contactbook/go-jwt-middleware/core"
)

var (
	// ErrJWTMissing is returned when the JWT is missing.
	ErrJWTMissing = core.ErrJWTMissing

	// ErrJWTInvalid is returned when the JWT is invalid.
	ErrJWTInvalid = core.ErrJWTInvalid
)

// Challenges sent in the WWW-Authenticate header. A request with no
// credentials gets the bare scheme, without an error code (RFC 6750 §3.1).
const (
	bearerChallenge       = "Bearer"
	invalidTokenChallenge = `Bearer error="invalid_token"`
)

// Response bodies. Server-side failures share one body so a client cannot
// tell an unreachable provider from a broken key.
const (
	missingTokenBody = `{"message":"JWT is missing."}`
	invalidTokenBody = `{"message":"JWT is invalid."}`
	serverErrorBody  = `{"message":"Something went wrong while checking the JWT."}`
)

// ErrorHandler is a handler which is called when an error occurs in the
// JWTMiddleware. Among some general errors, this handler also determines the
// response of the JWTMiddleware when a token is not found or is invalid. The
// err can be matched with errors.Is against the sentinels in core. If you
// implement your own ErrorHandler you MUST take into consideration the error
// types as not properly responding to them or having a poorly implemented
// handler could result in the JWTMiddleware not functioning as intended.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse describes how an authentication error is reported over HTTP.
type ErrorResponse struct {
	Status int
	// Challenge is the WWW-Authenticate value, empty for server errors.
	Challenge string
	Body      string
}

// ResponseFor maps err onto its HTTP status, challenge and JSON body:
//
//   - core.ErrJWTMissing: 401, Bearer
//   - core.ErrJWTInvalid, core.ErrKeyNotFound: 401, Bearer error="invalid_token"
//   - anything else: 500 with a fixed body
func ResponseFor(err error) ErrorResponse {
	switch {
	case errors.Is(err, core.ErrJWTMissing):
		return ErrorResponse{Status: http.StatusUnauthorized, Challenge: bearerChallenge, Body: missingTokenBody}
	case errors.Is(err, core.ErrJWTInvalid), errors.Is(err, core.ErrKeyNotFound):
		return ErrorResponse{Status: http.StatusUnauthorized, Challenge: invalidTokenChallenge, Body: invalidTokenBody}
	default:
		return ErrorResponse{Status: http.StatusInternalServerError, Body: serverErrorBody}
	}
}

// DefaultErrorHandler is the default error handler implementation for the
// JWTMiddleware. If an error handler is not provided via the WithErrorHandler
// option this will be used.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	resp := ResponseFor(err)

	w.Header().Set("Content-Type", "application/json")
	if resp.Challenge != "" {
		w.Header().Set("WWW-Authenticate", resp.Challenge)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}

// invalidError handles wrapping a validation error that does not belong to
// the core taxonomy with the concrete error ErrJWTInvalid. We do not expose
// this publicly because the interface methods of Is and Unwrap should give
// the user all they need.
type invalidError struct {
	details error
}

// Is allows the error to support equality to ErrJWTInvalid.
func (e *invalidError) Is(target error) bool {
	return target == ErrJWTInvalid
}

// Error returns a string representation of the error.
func (e *invalidError) Error() string {
	return fmt.Sprintf("%s: %s", ErrJWTInvalid, e.details)
}

// Unwrap allows the error to support equality to the
// underlying error and not just ErrJWTInvalid.
func (e *invalidError) Unwrap() error {
	return e.details
}

// classify leaves taxonomy errors alone and treats anything else a
// ValidateToken func returned as an invalid token.
func classify(err error) error {
	var validationErr *core.ValidationError
	if errors.As(err, &validationErr) {
		return err
	}
	return &invalidError{details: err}
}
