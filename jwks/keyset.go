package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

const maxKeySetSize = 1 << 20

// SigningKey is one entry of a provider's key set as published. Key material
// stays in its wire encoding until PublicKey is called.
type SigningKey struct {
	KeyID     string `json:"kid"`
	KeyType   string `json:"kty,omitempty"`
	Algorithm string `json:"alg,omitempty"`
	Use       string `json:"use,omitempty"`
	N         string `json:"n"`
	E         string `json:"e"`
}

// KeySet is the ordered sequence of keys as received from the provider.
type KeySet struct {
	Keys []SigningKey `json:"keys"`
}

// LookupKeyID returns the key whose identifier equals kid.
func (s *KeySet) LookupKeyID(kid string) (SigningKey, bool) {
	for _, key := range s.Keys {
		if key.KeyID == kid {
			return key, true
		}
	}
	return SigningKey{}, false
}

// PublicKey builds an RSA public key from the base64url modulus and exponent.
// Keys are always treated as RSA, whatever kty the provider advertised.
func (k SigningKey) PublicKey() (*rsa.PublicKey, error) {
	encoded, err := json.Marshal(map[string]string{
		"kty": jwa.RSA.String(),
		"n":   k.N,
		"e":   k.E,
	})
	if err != nil {
		return nil, fmt.Errorf("could not encode key %q: %w", k.KeyID, err)
	}

	key, err := jwk.ParseKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA components of key %q: %w", k.KeyID, err)
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("could not export RSA public key %q: %w", k.KeyID, err)
	}
	pub, ok := raw.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("key %q is not an RSA public key (got %T)", k.KeyID, raw)
	}
	if pub.N == nil || pub.N.Sign() <= 0 || pub.E <= 1 {
		return nil, fmt.Errorf("key %q has an empty modulus or exponent", k.KeyID)
	}

	return pub, nil
}

func (s *KeySet) validate() error {
	for i, key := range s.Keys {
		switch {
		case key.KeyID == "":
			return fmt.Errorf("key at index %d is missing required 'kid' field", i)
		case key.N == "":
			return fmt.Errorf("key %q is missing required 'n' field", key.KeyID)
		case key.E == "":
			return fmt.Errorf("key %q is missing required 'e' field", key.KeyID)
		}
	}
	return nil
}

// FetchKeySet downloads and decodes the key set published at jwksURI.
func FetchKeySet(ctx context.Context, client *http.Client, jwksURI string) (*KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request returned status %d, expected 200", resp.StatusCode)
	}

	var set KeySet
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxKeySetSize)).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}
	if set.Keys == nil {
		return nil, fmt.Errorf("failed to parse JWKS: missing required 'keys' field")
	}
	if err := set.validate(); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	return &set, nil
}
