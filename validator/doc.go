/*
Package validator authenticates bearer tokens issued by one OpenID Connect
provider, using the lestrrat-go/jwx v2 library.

Keys and the expected issuer come from a KeyProvider, normally a
*jwks.Provider, so discovery and key retrieval are cached there and never
repeated here.

# Pipeline

Authenticate runs these steps in order and stops at the first failure:

 1. Structural precheck: empty, larger than 1MB or not three dot-separated
    segments.
 2. The protected header is decoded without verification. A token with no
    kid fails with core.ErrKeyNotFound.
 3. The verifying key for kid is requested from the provider. Its errors
    (key not found, key construction, provider unreachable) are returned
    unchanged.
 4. The header alg must be RS256, RS384, RS512, PS256, PS384 or PS512, and
    must equal the key's alg when the key set advertises one.
 5. The signature is verified and exp, iss (from the discovery document)
    and aud are checked.
 6. preferred_username must be present and a string.

Failures in steps 1, 4, 5 and 6 all return the same core.ErrJWTInvalid error.
The real cause is only written to the debug log.

# Basic Usage

	issuerURL, _ := url.Parse("https://idp.example.com/realms/contacts")

	provider, err := jwks.NewProvider(jwks.WithIssuerURL(issuerURL))
	if err != nil {
	    log.Fatal(err)
	}

	v, err := validator.New(
	    validator.WithProvider(provider),
	    validator.WithAudience("my-api"),
	)
	if err != nil {
	    log.Fatal(err)
	}

	claims, err := v.Authenticate(ctx, tokenString)
	if err != nil {
	    // errors.Is(err, core.ErrJWTInvalid), core.ErrKeyNotFound, ...
	}
	fmt.Println(claims.PreferredUsername)

# Clock Skew Tolerance

The default is zero. A token is rejected as soon as its exp has passed:

	v, err := validator.New(
	    validator.WithProvider(provider),
	    validator.WithAudience("my-api"),
	    validator.WithAllowedClockSkew(30*time.Second),
	)

# Middleware

ValidateToken adapts Authenticate to the core.Validator interface, so a
*Validator can be passed straight to jwtmiddleware.WithValidator:

	middleware, err := jwtmiddleware.New(
	    jwtmiddleware.WithValidator(v),
	)
*/
package validator
