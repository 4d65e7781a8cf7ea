package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/contactbook/go-jwt-middleware/core"
	"github.com/contactbook/go-jwt-middleware/jwks"
)

const (
	preferredUsernameClaim = "preferred_username"
	emailClaim             = "email"
)

// KeyProvider supplies the expected issuer and verifying keys.
// *jwks.Provider implements it.
type KeyProvider interface {
	Metadata(ctx context.Context) (*jwks.ProviderMetadata, error)
	VerifyingKey(ctx context.Context, kid string) (*jwks.VerifyingKey, error)
}

// Logger defines an optional logging interface compatible with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// The token header picks the algorithm, but only RSA signature algorithms are
// accepted because every key is constructed as an RSA public key.
var allowedSigningAlgorithms = map[jwa.SignatureAlgorithm]bool{
	jwa.RS256: true,
	jwa.RS384: true,
	jwa.RS512: true,
	jwa.PS256: true,
	jwa.PS384: true,
	jwa.PS512: true,
}

// Validator authenticates bearer tokens issued by a single identity provider.
type Validator struct {
	provider         KeyProvider   // Required.
	audience         string        // Required.
	allowedClockSkew time.Duration // Optional.
	now              func() time.Time
	logger           Logger
}

// New sets up a new Validator.
//
// Example:
//
//	v, err := validator.New(
//	    validator.WithProvider(provider),
//	    validator.WithAudience("my-api"),
//	)
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		now: time.Now,
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if v.provider == nil {
		return nil, errors.New("provider is required (use WithProvider)")
	}
	if v.audience == "" {
		return nil, errors.New("audience is required (use WithAudience)")
	}

	return v, nil
}

// Authenticate verifies token and returns its claims.
//
// Errors match exactly one of core.ErrJWTInvalid, core.ErrKeyNotFound,
// core.ErrKeyConstruction or core.ErrProviderUnreachable. Every signature,
// structure and claim failure collapses into core.ErrJWTInvalid without
// saying which check failed.
func (v *Validator) Authenticate(ctx context.Context, token string) (*Claims, error) {
	if err := validateTokenFormat(token); err != nil {
		return nil, v.invalid("token format rejected", err)
	}

	kid, alg, err := decodeHeader(token)
	if err != nil {
		return nil, v.invalid("token header could not be decoded", err)
	}
	if kid == "" {
		return nil, core.NewKeyNotFoundError("")
	}

	key, err := v.provider.VerifyingKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	if !allowedSigningAlgorithms[alg] {
		return nil, v.invalid("token algorithm not allowed", fmt.Errorf("alg %q", alg))
	}
	if key.Algorithm != "" && key.Algorithm != alg.String() {
		return nil, v.invalid("token algorithm does not match key", fmt.Errorf("token alg %q, key alg %q", alg, key.Algorithm))
	}

	metadata, err := v.provider.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(alg, key.Key),
		jwt.WithValidate(false),
	)
	if err != nil {
		return nil, v.invalid("token signature could not be verified", err)
	}

	// Only aud, iss and exp are checked; iat and nbf are not.
	if err := jwt.Validate(parsed,
		jwt.WithResetValidators(true),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(metadata.Issuer),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
	); err != nil {
		return nil, v.invalid("token claims rejected", err)
	}
	if err := v.checkExpiry(parsed.Expiration()); err != nil {
		return nil, v.invalid("token expired", err)
	}

	claims, err := v.buildClaims(parsed)
	if err != nil {
		return nil, v.invalid("token claims rejected", err)
	}

	return claims, nil
}

// ValidateToken adapts Authenticate to core.Validator.
func (v *Validator) ValidateToken(ctx context.Context, token string) (any, error) {
	claims, err := v.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *Validator) buildClaims(token jwt.Token) (*Claims, error) {
	username, err := stringClaim(token, preferredUsernameClaim, true)
	if err != nil {
		return nil, err
	}
	email, err := stringClaim(token, emailClaim, false)
	if err != nil {
		return nil, err
	}

	return &Claims{
		Subject:           token.Subject(),
		PreferredUsername: username,
		Email:             email,
		Audience:          v.audience,
		Issuer:            token.Issuer(),
		Expiry:            token.Expiration().Unix(),
	}, nil
}

// checkExpiry requires exp to lie after now, widened by the allowed skew.
// An exp at or before the epoch is always expired.
func (v *Validator) checkExpiry(exp time.Time) error {
	now := v.now()
	if exp.Unix() <= 0 || !now.Before(exp.Add(v.allowedClockSkew)) {
		return fmt.Errorf("exp %s is not after %s", exp.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}
	return nil
}

// invalid logs the real cause and returns the opaque invalid-token error.
func (v *Validator) invalid(reason string, cause error) error {
	if v.logger != nil {
		v.logger.Debug("rejecting token", "reason", reason, "error", cause)
	}
	return core.NewValidationError(core.ErrorCodeTokenInvalid, "token is invalid", nil)
}

// decodeHeader reads kid and alg from the protected header without verifying
// the signature.
func decodeHeader(token string) (string, jwa.SignatureAlgorithm, error) {
	msg, err := jws.Parse([]byte(token))
	if err != nil {
		return "", "", err
	}

	signatures := msg.Signatures()
	if len(signatures) != 1 {
		return "", "", fmt.Errorf("expected exactly one signature, got %d", len(signatures))
	}

	headers := signatures[0].ProtectedHeaders()
	return headers.KeyID(), headers.Algorithm(), nil
}

func stringClaim(token jwt.Token, name string, required bool) (string, error) {
	raw, ok := token.Get(name)
	if !ok {
		if required {
			return "", fmt.Errorf("required claim %q is missing", name)
		}
		return "", nil
	}

	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("claim %q is not a string", name)
	}
	return value, nil
}
