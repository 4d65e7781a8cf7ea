package validator

import (
	"errors"
	"strings"
)

const (
	// maxTokenSize rejects oversized inputs before any decoding happens.
	maxTokenSize = 1 << 20

	// compactJWSDots is the separator count of header.payload.signature.
	compactJWSDots = 2
)

var (
	errTokenEmpty    = errors.New("token is empty")
	errTokenTooLarge = errors.New("token exceeds maximum size (1MB)")
	errTokenShape    = errors.New("token is not in compact JWS form")
)

// validateTokenFormat rejects strings that cannot be a compact JWS before
// they reach the parser.
func validateTokenFormat(token string) error {
	switch {
	case token == "":
		return errTokenEmpty
	case len(token) > maxTokenSize:
		return errTokenTooLarge
	case strings.Count(token, ".") != compactJWSDots:
		return errTokenShape
	}
	return nil
}
