package jwtechohandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtmiddleware "github.com/contactbook/go-jwt-middleware"
	"github.com/contactbook/go-jwt-middleware/internal/testidp"
	"github.com/contactbook/go-jwt-middleware/jwks"
	"github.com/contactbook/go-jwt-middleware/validator"
)

func newValidator(t *testing.T, key *testidp.Key) (*validator.Validator, *testidp.Server) {
	t.Helper()

	idp := testidp.New(t, key)
	issuerURL, err := url.Parse(idp.URL)
	require.NoError(t, err)

	provider, err := jwks.NewProvider(jwks.WithIssuerURL(issuerURL))
	require.NoError(t, err)

	v, err := validator.New(validator.WithProvider(provider), validator.WithAudience(testidp.Audience))
	require.NoError(t, err)
	return v, idp
}

func TestNewEchoMiddleware(t *testing.T) {
	k1 := testidp.NewKey(t, "k1")
	v, idp := newValidator(t, k1)
	validToken := k1.Sign(t, idp.DefaultClaims())

	tests := []struct {
		name          string
		options       []Option
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
			name:          "missing token",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      `{"message":"JWT is missing."}`,
			wantChallenge: "Bearer",
		},
		{
			name:          "invalid token",
			authorization: "Bearer a.b.c",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      `{"message":"JWT is invalid."}`,
			wantChallenge: `Bearer error="invalid_token"`,
		},
		{
			name: "custom error handler",
			options: []Option{WithErrorHandler(func(c echo.Context, err error) error {
				return c.String(http.StatusForbidden, "custom")
			})},
			wantStatus: http.StatusForbidden,
			wantBody:   "custom",
		},
		{
			name:       "credentials optional",
			options:    []Option{WithMiddlewareOptions(jwtmiddleware.WithCredentialsOptional(true))},
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, err := NewEchoMiddleware(v.ValidateToken, tt.options...)
			require.NoError(t, err)

			e := echo.New()
			e.Use(mw)
			e.GET("/api/me", func(c echo.Context) error {
				claims, ok := GetClaims(c, DefaultClaimsKey)
				if !ok {
					return c.String(http.StatusOK, "anonymous")
				}
				return c.String(http.StatusOK, claims.PreferredUsername)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.authorization != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.authorization)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.wantChallenge, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestNewEchoMiddleware_PropagatesHandlerError(t *testing.T) {
	mw, err := NewEchoMiddleware(func(context.Context, string) (any, error) {
		return "claims", nil
	}, WithContextKey("user"))
	require.NoError(t, err)

	e := echo.New()
	e.Use(mw)
	e.GET("/", func(c echo.Context) error {
		assert.Equal(t, "claims", c.Get("user"))
		return echo.NewHTTPError(http.StatusConflict, "conflict")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer a.b.c")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNewEchoMiddleware_RequiresValidateToken(t *testing.T) {
	_, err := NewEchoMiddleware(nil)
	assert.ErrorIs(t, err, jwtmiddleware.ErrValidateTokenNil)
}
