package jwtmiddleware

import (
	"errors"
	"net/http"
	"strings"
)

// ErrMalformedAuthHeader is returned when an Authorization value is present
// but is not a bearer credential. CheckJWT reports it as a missing token.
var ErrMalformedAuthHeader = errors.New("authorization header format must be Bearer {token}")

// TokenExtractor pulls the raw token out of a request. It returns "" and no
// error when the request carries no token; an error means something that
// looked like a credential could not be read.
type TokenExtractor func(r *http.Request) (string, error)

// ParseBearer returns the token from an Authorization value of the form
// "Bearer <token>". The scheme is matched case-insensitively. An empty value
// yields "" and no error.
func ParseBearer(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(value), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMalformedAuthHeader
	}
	return token, nil
}

// AuthHeaderTokenExtractor reads the bearer token from the Authorization
// header. It is the default extractor.
func AuthHeaderTokenExtractor(r *http.Request) (string, error) {
	return ParseBearer(r.Header.Get("Authorization"))
}

// CookieTokenExtractor reads the token from the named cookie.
func CookieTokenExtractor(cookieName string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		switch {
		case errors.Is(err, http.ErrNoCookie):
			return "", nil
		case err != nil:
			return "", err
		}
		return cookie.Value, nil
	}
}

// ParameterTokenExtractor reads the token from a query string parameter.
func ParameterTokenExtractor(param string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		return r.URL.Query().Get(param), nil
	}
}

// MultiTokenExtractor tries extractors in order and returns the first
// non-empty token. The first error stops the search.
func MultiTokenExtractor(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) (string, error) {
		for _, extract := range extractors {
			token, err := extract(r)
			if err != nil || token != "" {
				return token, err
			}
		}
		return "", nil
	}
}
