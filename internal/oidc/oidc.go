package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

const (
	// WellKnownPath is appended to the provider base URL to locate the
	// discovery document.
	WellKnownPath = ".well-known/openid-configuration"

	maxDocumentSize = 1 << 20
)

// ProviderMetadata is the subset of the OIDC discovery document the validator
// relies on. It is replaced wholesale on every refresh.
type ProviderMetadata struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// DiscoveryURL returns the discovery document location for baseURL.
func DiscoveryURL(baseURL url.URL) *url.URL {
	baseURL.Path = path.Join(baseURL.Path, WellKnownPath)
	baseURL.RawPath = ""
	return &baseURL
}

// FetchMetadata fetches and decodes the discovery document published under
// baseURL. A document without an issuer or jwks_uri is rejected.
func FetchMetadata(ctx context.Context, client *http.Client, baseURL url.URL) (*ProviderMetadata, error) {
	discoveryURL := DiscoveryURL(baseURL).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request to get discovery document: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch discovery document from %s: %w", discoveryURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery document request to %s returned status %d", discoveryURL, resp.StatusCode)
	}

	var metadata ProviderMetadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentSize)).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode JSON discovery document: %w", err)
	}

	if err := metadata.validate(); err != nil {
		return nil, err
	}

	return &metadata, nil
}

func (m *ProviderMetadata) validate() error {
	if m.Issuer == "" {
		return errors.New("discovery document is missing required 'issuer' field")
	}
	if m.JWKSURI == "" {
		return errors.New("discovery document is missing required 'jwks_uri' field")
	}
	return nil
}
