package jwks

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/contactbook/go-jwt-middleware/core"
	"github.com/contactbook/go-jwt-middleware/internal/oidc"
)

// DefaultCacheTTL is how long discovery metadata and the key set stay fresh.
const DefaultCacheTTL = 5 * time.Minute

// Fetch targets reported to a FetchObserver.
const (
	FetchTargetDiscovery = "discovery"
	FetchTargetJWKS      = "jwks"
)

// ProviderMetadata is the discovery document subset the validator consumes.
type ProviderMetadata = oidc.ProviderMetadata

// Logger defines an optional logging interface compatible with log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// FetchObserver is notified after every network fetch the Provider performs,
// successful or not. err is nil on success.
type FetchObserver interface {
	ObserveFetch(target string, duration time.Duration, err error)
}

// VerifyingKey is a key selected by identifier and ready for signature
// verification.
type VerifyingKey struct {
	KeyID string
	// Algorithm is the alg the provider published for this key, possibly empty.
	Algorithm string
	Key       *rsa.PublicKey
}

// Provider discovers an identity provider's metadata and signing keys and
// caches both with an independent freshness window of the same TTL.
//
// Concurrent callers that observe a stale slot each fetch; the last writer
// wins. Fetches are never deduplicated, so a burst of N callers hitting a
// stale slot can issue up to N requests.
type Provider struct {
	issuerURL    *url.URL
	client       *http.Client
	cacheTTL     time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	logger       Logger
	observer     FetchObserver

	metadata entry[*ProviderMetadata]
	keys     entry[*KeySet]
}

// NewProvider builds and returns a new *Provider.
// Required options:
//   - WithIssuerURL: base URL of the identity provider
//
// Optional options:
//   - WithCacheTTL: freshness window for both cache slots (default: 5 minutes)
//   - WithCustomClient: custom HTTP client (default: no client-side timeout)
//   - WithFetchTimeout: per-fetch deadline (default: none)
//   - WithClock, WithLogger, WithFetchObserver
//
// Example:
//
//	provider, err := jwks.NewProvider(
//	    jwks.WithIssuerURL(issuerURL),
//	    jwks.WithFetchTimeout(10*time.Second),
//	)
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	p := &Provider{
		client:   &http.Client{},
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if p.issuerURL == nil {
		return nil, fmt.Errorf("issuer URL is required (use WithIssuerURL)")
	}

	return p, nil
}

// CacheTTL returns the freshness window shared by both cache slots.
func (p *Provider) CacheTTL() time.Duration {
	return p.cacheTTL
}

// Metadata returns the provider metadata, fetching the discovery document
// when the cached copy is missing or stale. A failed fetch leaves the cached
// entry untouched and returns an error matching core.ErrProviderUnreachable.
func (p *Provider) Metadata(ctx context.Context) (*ProviderMetadata, error) {
	if metadata, ok := p.metadata.load(p.now(), p.cacheTTL); ok {
		return metadata, nil
	}

	if p.logger != nil {
		p.logger.Info("fetching OIDC discovery document", "issuer_url", p.issuerURL.String())
	}

	ctx, cancel := p.fetchContext(ctx)
	defer cancel()

	start := time.Now()
	metadata, err := oidc.FetchMetadata(ctx, p.client, *p.issuerURL)
	p.observe(FetchTargetDiscovery, start, err)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("failed to fetch OIDC discovery document", "error", err)
		}
		return nil, core.NewValidationError(
			core.ErrorCodeProviderUnreachable,
			"could not fetch provider metadata",
			err,
		)
	}

	p.metadata.store(metadata, p.now())
	return metadata, nil
}

// KeySet returns the provider's signing keys, fetching them when the cached
// set is missing or stale. Fetching goes through Metadata, so stale metadata
// is refreshed first and a metadata failure aborts the key set refresh.
func (p *Provider) KeySet(ctx context.Context) (*KeySet, error) {
	if set, ok := p.keys.load(p.now(), p.cacheTTL); ok {
		return set, nil
	}

	metadata, err := p.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	if p.logger != nil {
		p.logger.Info("fetching JWKS", "jwks_uri", metadata.JWKSURI)
	}

	ctx, cancel := p.fetchContext(ctx)
	defer cancel()

	start := time.Now()
	set, err := FetchKeySet(ctx, p.client, metadata.JWKSURI)
	p.observe(FetchTargetJWKS, start, err)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("failed to fetch JWKS", "jwks_uri", metadata.JWKSURI, "error", err)
		}
		return nil, core.NewValidationError(
			core.ErrorCodeProviderUnreachable,
			"could not fetch JWKS",
			err,
		)
	}

	p.keys.store(set, p.now())
	return set, nil
}

// VerifyingKey returns the public key whose identifier equals kid.
//
// A missing identifier yields an error matching core.ErrKeyNotFound; an entry
// whose RSA components cannot be decoded yields core.ErrKeyConstruction.
func (p *Provider) VerifyingKey(ctx context.Context, kid string) (*VerifyingKey, error) {
	set, err := p.KeySet(ctx)
	if err != nil {
		return nil, err
	}

	signingKey, ok := set.LookupKeyID(kid)
	if !ok {
		if p.logger != nil {
			p.logger.Warn("no key in JWKS matches token key id", "kid", kid, "keys", len(set.Keys))
		}
		return nil, core.NewKeyNotFoundError(kid)
	}

	pub, err := signingKey.PublicKey()
	if err != nil {
		if p.logger != nil {
			p.logger.Error("could not construct verifying key", "kid", kid, "error", err)
		}
		vErr := core.NewValidationError(core.ErrorCodeKeyConstruction, "could not construct verifying key", err)
		vErr.KeyID = kid
		return nil, vErr
	}

	return &VerifyingKey{
		KeyID:     signingKey.KeyID,
		Algorithm: signingKey.Algorithm,
		Key:       pub,
	}, nil
}

func (p *Provider) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.fetchTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.fetchTimeout)
}

func (p *Provider) observe(target string, start time.Time, err error) {
	if p.observer != nil {
		p.observer.ObserveFetch(target, time.Since(start), err)
	}
}
