package jwtmiddleware

import (
	"context"

	"github.com/contactbook/go-jwt-middleware/core"
)

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core, jwks and validator, so one logger
// can be shared across the stack. See logger.go for logrus, zap and zerolog
// adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ValidateToken takes in a string JWT and makes sure it is valid and
// returns the valid token. If it is not valid it will return nil and
// an error describing why validation failed.
type ValidateToken func(context.Context, string) (any, error)

// GetClaims retrieves claims from the context with type safety using generics.
//
// Example:
//
//	claims, err := jwtmiddleware.GetClaims[*validator.Claims](r.Context())
//	if err != nil {
//	    http.Error(w, "failed to get claims", http.StatusInternalServerError)
//	    return
//	}
//	fmt.Println(claims.PreferredUsername)
func GetClaims[T any](ctx context.Context) (T, error) {
	return core.GetClaims[T](ctx)
}

// MustGetClaims retrieves claims from the context or panics.
// Use only when you are certain claims exist (e.g., after middleware has run).
func MustGetClaims[T any](ctx context.Context) T {
	claims, err := core.GetClaims[T](ctx)
	if err != nil {
		panic(err)
	}
	return claims
}

// HasClaims checks if claims exist in the context.
func HasClaims(ctx context.Context) bool {
	return core.HasClaims(ctx)
}
