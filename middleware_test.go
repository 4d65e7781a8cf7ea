package jwtmiddleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactbook/go-jwt-middleware/core"
	"github.com/contactbook/go-jwt-middleware/internal/testidp"
	"github.com/contactbook/go-jwt-middleware/jwks"
	"github.com/contactbook/go-jwt-middleware/validator"
)

// newTestValidator wires a validator to a fresh test identity provider.
func newTestValidator(t *testing.T, keys ...*testidp.Key) (*validator.Validator, *testidp.Server) {
	t.Helper()

	idp := testidp.New(t, keys...)
	issuerURL, err := url.Parse(idp.URL)
	require.NoError(t, err)

	provider, err := jwks.NewProvider(jwks.WithIssuerURL(issuerURL))
	require.NoError(t, err)

	v, err := validator.New(
		validator.WithProvider(provider),
		validator.WithAudience(testidp.Audience),
	)
	require.NoError(t, err)

	return v, idp
}

// claimsEcho answers 200 with the authenticated username, or "anonymous".
var claimsEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	claims, err := GetClaims[*validator.Claims](r.Context())
	if err != nil {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(claims.PreferredUsername))
})

func Test_CheckJWT(t *testing.T) {
	k1 := testidp.NewKey(t, "k1")
	v, idp := newTestValidator(t, k1)

	validToken := k1.Sign(t, idp.DefaultClaims())

	testCases := []struct {
		name          string
		options       []Option
		method        string
		path          string
		authorization string
		wantStatus    int
		wantBody      string
		wantChallenge string
	}{
		{
			name:          "valid token",
			authorization: "Bearer " + validToken,
			wantStatus:    http.StatusOK,
			wantBody:      "jdoe",
		},
		{
			name:          "lowercase scheme",
			authorization: "bearer " + validToken,
			wantStatus:    http.StatusOK,
			wantBody:      "jdoe",
		},
		{
			name:          "no Authorization header",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      missingTokenBody,
			wantChallenge: "Bearer",
		},
		{
			name:          "Basic credentials",
			authorization: "Basic dXNlcjpwYXNz",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      missingTokenBody,
			wantChallenge: "Bearer",
		},
		{
			name:          "bearer with no token",
			authorization: "Bearer",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      missingTokenBody,
			wantChallenge: "Bearer",
		},
		{
			name:          "signed by an unknown key",
			authorization: "Bearer " + testidp.NewKey(t, "k1").Sign(t, idp.DefaultClaims()),
			wantStatus:    http.StatusUnauthorized,
			wantBody:      invalidTokenBody,
			wantChallenge: `Bearer error="invalid_token"`,
		},
		{
			name:          "unknown kid",
			authorization: "Bearer " + testidp.NewKey(t, "k2").Sign(t, idp.DefaultClaims()),
			wantStatus:    http.StatusUnauthorized,
			wantBody:      invalidTokenBody,
			wantChallenge: `Bearer error="invalid_token"`,
		},
		{
			name:          "garbage token",
			authorization: "Bearer abc",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      invalidTokenBody,
			wantChallenge: `Bearer error="invalid_token"`,
		},
		{
			name:       "credentials optional without a token",
			options:    []Option{WithCredentialsOptional(true)},
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
		{
			name:          "credentials optional still rejects a bad token",
			options:       []Option{WithCredentialsOptional(true)},
			authorization: "Bearer abc",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      invalidTokenBody,
			wantChallenge: `Bearer error="invalid_token"`,
		},
		{
			name:       "OPTIONS skipped when configured",
			options:    []Option{WithValidateOnOptions(false)},
			method:     http.MethodOptions,
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
		{
			name:          "OPTIONS validated by default",
			method:        http.MethodOptions,
			wantStatus:    http.StatusUnauthorized,
			wantBody:      missingTokenBody,
			wantChallenge: "Bearer",
		},
		{
			name:       "excluded path",
			options:    []Option{WithExclusionUrls([]string{"/healthz"})},
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			opts := append([]Option{WithValidator(v)}, testCase.options...)
			middleware, err := New(opts...)
			require.NoError(t, err)

			method := testCase.method
			if method == "" {
				method = http.MethodGet
			}
			path := testCase.path
			if path == "" {
				path = "/api/me"
			}

			req := httptest.NewRequest(method, path, nil)
			if testCase.authorization != "" {
				req.Header.Set("Authorization", testCase.authorization)
			}
			rec := httptest.NewRecorder()

			middleware.CheckJWT(claimsEcho).ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatus, rec.Code)
			assert.Equal(t, testCase.wantBody, rec.Body.String())
			assert.Equal(t, testCase.wantChallenge, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func Test_CheckJWT_ProviderFailuresAreIndistinguishable(t *testing.T) {
	k1 := testidp.NewKey(t, "k1")

	unreachable, idp := newTestValidator(t, k1)
	idp.FailDiscovery(http.StatusServiceUnavailable)
	unreachableToken := k1.Sign(t, idp.DefaultClaims())

	brokenKey, brokenIdp := newTestValidator(t, k1)
	brokenIdp.SetJWKSBody(`{"keys":[{"kid":"k1","kty":"RSA","n":"***","e":"AQAB"}]}`)
	brokenToken := k1.Sign(t, brokenIdp.DefaultClaims())

	serve := func(v *validator.Validator, token string) *httptest.ResponseRecorder {
		middleware, err := New(WithValidator(v))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		middleware.CheckJWT(claimsEcho).ServeHTTP(rec, req)
		return rec
	}

	first := serve(unreachable, unreachableToken)
	second := serve(brokenKey, brokenToken)

	assert.Equal(t, http.StatusInternalServerError, first.Code)
	assert.Equal(t, http.StatusInternalServerError, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Empty(t, first.Header().Get("WWW-Authenticate"))
	assert.Empty(t, second.Header().Get("WWW-Authenticate"))
}

func Test_CheckJWT_CustomValidateToken(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "unclassified error is an invalid token",
			err:        errors.New("nope"),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "provider unreachable passes through",
			err:        core.NewValidationError(core.ErrorCodeProviderUnreachable, "down", nil),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "key not found passes through",
			err:        core.NewKeyNotFoundError("k9"),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var handled error
			middleware, err := New(
				WithValidateToken(func(context.Context, string) (any, error) {
					return nil, testCase.err
				}),
				WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
					handled = err
					DefaultErrorHandler(w, r, err)
				}),
			)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer a.b.c")
			rec := httptest.NewRecorder()
			middleware.CheckJWT(claimsEcho).ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatus, rec.Code)
			assert.ErrorIs(t, handled, testCase.err)
		})
	}
}

func Test_CheckJWT_ClaimsReachNextHandler(t *testing.T) {
	k1 := testidp.NewKey(t, "k1")
	v, idp := newTestValidator(t, k1)

	middleware, err := New(WithValidator(v))
	require.NoError(t, err)

	var got *validator.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, HasClaims(r.Context()))
		got = MustGetClaims[*validator.Claims](r.Context())
	})

	token := k1.Sign(t, withClaims(idp.DefaultClaims(), jwt.MapClaims{"email": "someone@example.com"}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	server := httptest.NewServer(middleware.CheckJWT(next))
	t.Cleanup(server.Close)

	clientReq, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	clientReq.Header = req.Header
	resp, err := server.Client().Do(clientReq)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())

	require.NotNil(t, got)
	assert.Equal(t, "someone@example.com", got.Email)
	assert.Equal(t, "user-123", got.Subject)
}

func Test_MustGetClaims_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGetClaims[*validator.Claims](context.Background())
	})
}

func withClaims(base jwt.MapClaims, overrides jwt.MapClaims) jwt.MapClaims {
	claims := jwt.MapClaims{}
	for k, v := range base {
		claims[k] = v
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}
