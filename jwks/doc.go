/*
Package jwks discovers an identity provider's signing keys and keeps them in
memory for a bounded time.

A Provider owns two independent cache slots, one for the discovery metadata
(issuer and jwks_uri) and one for the key set. Each slot moves through

	Empty -> Fresh -> Stale -> Fresh -> ...

A slot is fresh while now - fetchedAt < TTL (5 minutes unless WithCacheTTL
says otherwise). Only a successful fetch makes it fresh again; a failed fetch
leaves it exactly as it was and the caller gets an error matching
core.ErrProviderUnreachable. Stale values are never served.

# Pipeline

	VerifyingKey(kid)
	    -> KeySet()           cached, refreshed through Metadata() when stale
	        -> Metadata()     cached, GET {issuer}/.well-known/openid-configuration
	        -> GET jwks_uri
	    -> LookupKeyID(kid)   core.ErrKeyNotFound when absent
	    -> PublicKey()        core.ErrKeyConstruction when n/e are unusable

# Concurrency

Cache hits take a read lock on one slot only. A refresh fetches with no lock
held and takes the write lock just long enough to install the new value.
Several goroutines that see the same stale slot will all fetch and the last
one to finish wins. Fetches are not coalesced.

# Timeouts

By default neither the HTTP client nor the Provider bounds an outbound fetch;
cancellation comes only from the caller's context. WithFetchTimeout adds a
per-fetch deadline, and a fetch that runs past it is reported as
core.ErrProviderUnreachable like any other transport failure.

# Usage

	issuerURL, _ := url.Parse("https://idp.example.com/realms/contacts")

	provider, err := jwks.NewProvider(
	    jwks.WithIssuerURL(issuerURL),
	    jwks.WithFetchTimeout(10*time.Second),
	)
	if err != nil {
	    log.Fatal(err)
	}

	key, err := provider.VerifyingKey(ctx, "k1")
*/
package jwks
