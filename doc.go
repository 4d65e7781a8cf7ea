/*
Package jwtmiddleware provides HTTP middleware that authenticates bearer
tokens issued by an OpenID Connect provider.

The middleware follows the Core-Adapter pattern: token validation lives in
the core, jwks and validator packages, and this package is the net/http
transport adapter. Gin support is in this package; Echo and gRPC adapters
live under framework/.

# Quick Start

	import (
	    jwtmiddleware "github.com/contactbook/go-jwt-middleware"
	    "github.com/contactbook/go-jwt-middleware/jwks"
	    "github.com/contactbook/go-jwt-middleware/validator"
	)

	func main() {
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

	    middleware, err := jwtmiddleware.New(jwtmiddleware.WithValidator(v))
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.Handle("/api/", middleware.CheckJWT(apiHandler))
	    log.Fatal(http.ListenAndServe(":8080", nil))
	}

# Accessing Claims

	func apiHandler(w http.ResponseWriter, r *http.Request) {
	    claims, err := jwtmiddleware.GetClaims[*validator.Claims](r.Context())
	    if err != nil {
	        http.Error(w, "Unauthorized", http.StatusUnauthorized)
	        return
	    }
	    fmt.Fprintf(w, "hello %s", claims.PreferredUsername)
	}

# Error Responses

DefaultErrorHandler answers with JSON and these statuses:

  - no token, or an Authorization header that is not a bearer credential:
    401 with WWW-Authenticate: Bearer
  - invalid token or unknown key id: 401 with
    WWW-Authenticate: Bearer error="invalid_token"
  - provider unreachable, unusable key or anything else: 500 with one fixed
    body, so the cause is never revealed

ResponseFor exposes the same mapping for custom handlers.

# Logging

WithLogger takes any logger with slog-style Debug, Info, Warn and Error
methods. NewLogrusLogger, NewZapLogger and NewZerologLogger adapt the common
structured loggers:

	middleware, err := jwtmiddleware.New(
	    jwtmiddleware.WithValidator(v),
	    jwtmiddleware.WithLogger(jwtmiddleware.NewLogrusLogger(logrus.StandardLogger())),
	)

# Metrics and Tracing

PrometheusMetrics counts authentication outcomes and, when passed to
jwks.WithFetchObserver, discovery and key set fetches as well:

	metrics, err := jwtmiddleware.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	provider, err := jwks.NewProvider(
	    jwks.WithIssuerURL(issuerURL),
	    jwks.WithFetchObserver(metrics),
	)
	middleware, err := jwtmiddleware.New(
	    jwtmiddleware.WithValidator(v),
	    jwtmiddleware.WithMetrics(metrics),
	    jwtmiddleware.WithTracer(jwtmiddleware.NewOpenTelemetryTracer(otel.Tracer("api"))),
	)

Every request that reaches validation gets one span named
jwtmiddleware.CheckJWT carrying an auth.outcome attribute.

# Gin

	m, err := jwtmiddleware.NewGin(v.ValidateToken)
	if err != nil {
	    log.Fatal(err)
	}
	router.Use(m.CheckJWTGin())
*/
package jwtmiddleware
