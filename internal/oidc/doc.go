/*
Package oidc fetches the OpenID Connect discovery document of an identity
provider.

The document lives at a fixed location under the provider base URL:

	https://idp.example.com/.well-known/openid-configuration

Only two fields are consumed:
  - issuer: must equal the iss claim of every accepted token
  - jwks_uri: where the provider publishes its public signing keys

FetchMetadata performs a single GET with no retries and no caching. Caching,
freshness and error classification belong to the jwks package.
*/
package oidc
