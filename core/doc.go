/*
Package core holds the transport-independent part of bearer authentication:
the Core engine that turns a raw token string into claims, the error taxonomy
every other package reports through, and the context helpers adapters use to
hand claims to application code.

# Error taxonomy

Each failure matches exactly one sentinel through errors.Is:

	ErrJWTMissing           no usable bearer credential                     -> 401
	ErrJWTInvalid           bad signature, bad structure, claim mismatch    -> 401
	ErrKeyNotFound          kid absent from the current key set             -> 401
	ErrKeyConstruction      key set entry unusable as an RSA key            -> 500
	ErrProviderUnreachable  discovery or key set fetch failed               -> 500

ErrJWTInvalid deliberately does not say which check failed. A client must not
be able to tell a wrong audience from a forged signature. The two server-side
errors are likewise rendered identically by the adapters; IsServerError groups
them.

	claims, err := c.CheckToken(ctx, token)
	switch {
	case errors.Is(err, core.ErrKeyNotFound):
	    var vErr *core.ValidationError
	    if errors.As(err, &vErr) {
	        log.Printf("unknown kid %q", vErr.KeyID)
	    }
	case core.IsServerError(err):
	    // 500
	}

# Usage

	c, err := core.New(
	    core.WithValidator(tokenValidator),
	    core.WithLogger(logger),
	)
	if err != nil {
	    log.Fatal(err)
	}

	claims, err := c.CheckToken(ctx, token)
	if err != nil {
	    return err
	}
	ctx = core.SetClaims(ctx, claims)

Adapters retrieve the claims later with GetClaims:

	claims, err := core.GetClaims[*validator.Claims](ctx)
*/
package core
