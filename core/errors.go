package core

import "errors"

// Sentinel errors for JWT validation.
//
// Every error produced by the jwks and validator packages matches exactly one
// of these through errors.Is, so transport adapters can map them without
// inspecting messages.
var (
	// ErrJWTMissing is returned when no usable bearer credential was presented.
	ErrJWTMissing = errors.New("jwt missing")

	// ErrJWTInvalid is returned for signature failures, structural decode
	// failures and any claim mismatch. It is intentionally coarse.
	ErrJWTInvalid = errors.New("jwt invalid")

	// ErrKeyNotFound is returned when the token references a key identifier
	// that is absent from the current key set.
	ErrKeyNotFound = errors.New("signing key not found")

	// ErrKeyConstruction is returned when a key set entry cannot be turned
	// into a usable verifying key.
	ErrKeyConstruction = errors.New("signing key could not be constructed")

	// ErrProviderUnreachable is returned when the discovery document or the
	// key set could not be fetched or decoded.
	ErrProviderUnreachable = errors.New("identity provider unreachable")

	// ErrClaimsNotFound is returned when claims cannot be retrieved from context.
	ErrClaimsNotFound = errors.New("claims not found in context")
)

// Common error codes
const (
	ErrorCodeTokenMissing        = "token_missing"
	ErrorCodeTokenInvalid        = "token_invalid"
	ErrorCodeKeyNotFound         = "key_not_found"
	ErrorCodeKeyConstruction     = "key_construction_failed"
	ErrorCodeProviderUnreachable = "provider_unreachable"
	ErrorCodeValidatorNotSet     = "validator_not_set"
	ErrorCodeClaimsNotFound      = "claims_not_found"
)

var sentinelByCode = map[string]error{
	ErrorCodeTokenMissing:        ErrJWTMissing,
	ErrorCodeTokenInvalid:        ErrJWTInvalid,
	ErrorCodeKeyNotFound:         ErrKeyNotFound,
	ErrorCodeKeyConstruction:     ErrKeyConstruction,
	ErrorCodeProviderUnreachable: ErrProviderUnreachable,
	ErrorCodeClaimsNotFound:      ErrClaimsNotFound,
}

// ValidationError wraps JWT validation errors with additional context.
// It provides structured error information that can be used for
// logging, metrics, and returning appropriate error responses.
type ValidationError struct {
	// Code is a machine-readable error code (e.g., "token_invalid", "key_not_found")
	Code string

	// Message is a human-readable error message
	Message string

	// KeyID is the key identifier the error refers to, if any.
	KeyID string

	// Details contains the underlying error
	Details error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Details != nil {
		return e.Message + ": " + e.Details.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Details
}

// Is reports whether target is the sentinel error for this error's code.
func (e *ValidationError) Is(target error) bool {
	sentinel, ok := sentinelByCode[e.Code]
	return ok && target == sentinel
}

// NewValidationError creates a new ValidationError with the given code and message.
func NewValidationError(code, message string, details error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewKeyNotFoundError reports that no key with the given identifier exists in
// the key set. An empty keyID means the token header carried no identifier.
func NewKeyNotFoundError(keyID string) *ValidationError {
	msg := "no signing key found for key id " + `"` + keyID + `"`
	if keyID == "" {
		msg = "no key id in token header"
	}
	return &ValidationError{
		Code:    ErrorCodeKeyNotFound,
		Message: msg,
		KeyID:   keyID,
	}
}

// IsServerError reports whether err is a server-side failure (provider
// unreachable, key construction, or anything outside the taxonomy). Transport
// adapters must not let clients tell these apart.
func IsServerError(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, ErrJWTMissing),
		errors.Is(err, ErrJWTInvalid),
		errors.Is(err, ErrKeyNotFound):
		return false
	default:
		return true
	}
}
