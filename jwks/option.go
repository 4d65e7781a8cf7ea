package jwks

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

// ProviderOption is how options for the Provider are set up.
type ProviderOption func(*Provider) error

// WithIssuerURL sets the base URL of the identity provider. This is a
// required option. The discovery document is fetched from
// {issuerURL}/.well-known/openid-configuration.
func WithIssuerURL(issuerURL *url.URL) ProviderOption {
	return func(p *Provider) error {
		if issuerURL == nil {
			return errors.New("issuer URL cannot be nil")
		}
		if issuerURL.Scheme == "" || issuerURL.Host == "" {
			return errors.New("issuer URL must be absolute")
		}
		p.issuerURL = issuerURL
		return nil
	}
}

// WithCustomClient sets the HTTP client used for discovery and key set
// fetches. The default client has no timeout of its own.
func WithCustomClient(c *http.Client) ProviderOption {
	return func(p *Provider) error {
		if c == nil {
			return errors.New("HTTP client cannot be nil")
		}
		p.client = c
		return nil
	}
}

// WithCacheTTL sets how long metadata and keys stay fresh. Zero selects
// DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) ProviderOption {
	return func(p *Provider) error {
		if ttl < 0 {
			return errors.New("cache TTL cannot be negative")
		}
		if ttl == 0 {
			ttl = DefaultCacheTTL
		}
		p.cacheTTL = ttl
		return nil
	}
}

// WithFetchTimeout bounds each outbound fetch. A fetch that exceeds it fails
// with core.ErrProviderUnreachable. Zero disables the bound.
func WithFetchTimeout(timeout time.Duration) ProviderOption {
	return func(p *Provider) error {
		if timeout < 0 {
			return errors.New("fetch timeout cannot be negative")
		}
		p.fetchTimeout = timeout
		return nil
	}
}

// WithClock replaces time.Now for cache freshness decisions.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		p.now = now
		return nil
	}
}

// WithLogger sets an optional logger.
func WithLogger(logger Logger) ProviderOption {
	return func(p *Provider) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// WithFetchObserver registers an observer for every discovery and key set
// fetch, e.g. jwtmiddleware.PrometheusMetrics.
func WithFetchObserver(observer FetchObserver) ProviderOption {
	return func(p *Provider) error {
		if observer == nil {
			return errors.New("fetch observer cannot be nil")
		}
		p.observer = observer
		return nil
	}
}
