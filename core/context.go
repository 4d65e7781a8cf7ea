package core

import "context"

type claimsContextKey struct{}

// SetClaims returns a copy of ctx carrying the validated claims. Transport
// adapters call it once a token has been authenticated.
func SetClaims(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// GetClaims returns the claims stored by SetClaims as type T.
//
//	claims, err := core.GetClaims[*validator.Claims](ctx)
//
// ErrClaimsNotFound is returned when nothing was stored; a ValidationError
// with ErrorCodeClaimsNotFound is returned when the stored value is not a T.
func GetClaims[T any](ctx context.Context) (T, error) {
	var zero T

	raw := ctx.Value(claimsContextKey{})
	if raw == nil {
		return zero, ErrClaimsNotFound
	}

	claims, ok := raw.(T)
	if !ok {
		return zero, NewValidationError(ErrorCodeClaimsNotFound, "claims type assertion failed", nil)
	}
	return claims, nil
}

// HasClaims reports whether ctx carries claims.
func HasClaims(ctx context.Context) bool {
	return ctx.Value(claimsContextKey{}) != nil
}
