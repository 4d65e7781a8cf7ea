package jwtmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactbook/go-jwt-middleware/internal/testidp"
	"github.com/contactbook/go-jwt-middleware/validator"
)

func Test_GinCheckJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)

	k1 := testidp.NewKey(t, "k1")
	v, idp := newTestValidator(t, k1)
	validToken := k1.Sign(t, idp.DefaultClaims())

	testCases := []struct {
		name          string
		options       []GinOption
		method        string
		authorization string
		wantStatus    int
		wantBody      string
		wantChallenge string
	}{
		{
			name:          "valid token",
			authorization: "Bearer " + validToken,
			wantStatus:    http.StatusOK,
			wantBody:      `{"username":"jdoe"}`,
		},
		{
			name:          "missing token",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      missingTokenBody,
			wantChallenge: "Bearer",
		},
		{
			name:          "invalid token",
			authorization: "Bearer a.b.c",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      invalidTokenBody,
			wantChallenge: `Bearer error="invalid_token"`,
		},
		{
			name:       "credentials optional",
			options:    []GinOption{WithGinOptions(WithCredentialsOptional(true))},
			wantStatus: http.StatusOK,
			wantBody:   `{"username":""}`,
		},
		{
			name: "custom error handler",
			options: []GinOption{WithGinErrorHandler(func(c *gin.Context, err error) {
				c.AbortWithStatusJSON(http.StatusTeapot, gin.H{"error": "custom"})
			})},
			wantStatus: http.StatusTeapot,
			wantBody:   `{"error":"custom"}`,
		},
		{
			name:       "OPTIONS skipped",
			options:    []GinOption{WithGinOptions(WithValidateOnOptions(false))},
			method:     http.MethodOptions,
			wantStatus: http.StatusOK,
			wantBody:   `{"username":""}`,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			m, err := NewGin(v.ValidateToken, testCase.options...)
			require.NoError(t, err)

			method := testCase.method
			if method == "" {
				method = http.MethodGet
			}

			router := gin.New()
			router.Use(m.CheckJWTGin())
			router.Handle(method, "/api/me", func(c *gin.Context) {
				username := ""
				if raw, ok := c.Get(DefaultGinClaimsKey); ok {
					username = raw.(*validator.Claims).PreferredUsername
				}
				c.JSON(http.StatusOK, gin.H{"username": username})
			})

			req := httptest.NewRequest(method, "/api/me", nil)
			if testCase.authorization != "" {
				req.Header.Set("Authorization", testCase.authorization)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, testCase.wantStatus, rec.Code)
			assert.Equal(t, testCase.wantBody, rec.Body.String())
			assert.Equal(t, testCase.wantChallenge, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func Test_GinClaimsKeyAndRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	k1 := testidp.NewKey(t, "k1")
	v, idp := newTestValidator(t, k1)

	m, err := NewGin(v.ValidateToken, WithGinClaimsKey("user"))
	require.NoError(t, err)

	router := gin.New()
	router.Use(m.CheckJWTGin())
	router.GET("/", func(c *gin.Context) {
		_, inGin := c.Get("user")
		claims, err := GetClaims[*validator.Claims](c.Request.Context())
		assert.True(t, inGin)
		assert.NoError(t, err)
		c.String(http.StatusOK, claims.Subject)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+k1.Sign(t, idp.DefaultClaims()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", rec.Body.String())
}

func Test_NewGin_Errors(t *testing.T) {
	_, err := NewGin(nil)
	assert.Error(t, err)

	_, err = NewGin(func(c context.Context, s string) (any, error) { return nil, nil }, WithGinErrorHandler(nil))
	assert.ErrorIs(t, err, ErrErrorHandlerNil)
}
