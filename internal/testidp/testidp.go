// Package testidp runs an in-process identity provider for tests. It serves a
// discovery document and a key set over httptest and mints RS256 tokens with
// the keys it publishes.
package testidp

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DiscoveryPath is where the discovery document is served.
	DiscoveryPath = "/.well-known/openid-configuration"
	// JWKSPath is where the key set is served.
	JWKSPath = "/jwks"
	// Audience is the audience DefaultClaims uses.
	Audience = "my-api"
)

// Key is a signing key pair with its identifier.
type Key struct {
	ID      string
	Alg     string
	Private *rsa.PrivateKey
}

// NewKey generates a 2048-bit RSA key.
func NewKey(t testing.TB, kid string) *Key {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	return &Key{ID: kid, Alg: "RS256", Private: priv}
}

// JWK returns the public half in key set form.
func (k *Key) JWK() map[string]string {
	n, e := EncodeRSA(&k.Private.PublicKey)
	return map[string]string{
		"kid": k.ID,
		"kty": "RSA",
		"alg": k.Alg,
		"use": "sig",
		"n":   n,
		"e":   e,
	}
}

// Sign mints an RS256 token carrying kid = k.ID.
func (k *Key) Sign(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	return k.SignWith(t, jwt.SigningMethodRS256, claims, map[string]any{"kid": k.ID})
}

// SignWith mints a token with an explicit method and extra header values.
// A nil header value removes the field.
func (k *Key) SignWith(t testing.TB, method jwt.SigningMethod, claims jwt.MapClaims, header map[string]any) string {
	t.Helper()

	token := jwt.NewWithClaims(method, claims)
	for name, value := range header {
		if value == nil {
			delete(token.Header, name)
			continue
		}
		token.Header[name] = value
	}

	signed, err := token.SignedString(k.Private)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// EncodeRSA returns the base64url modulus and exponent of pub.
func EncodeRSA(pub *rsa.PublicKey) (n, e string) {
	n = base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e = base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())
	return n, e
}

// Server is a running test identity provider.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	issuer          string
	keys            []*Key
	jwksBody        string
	discoveryStatus int
	jwksStatus      int
	delay           time.Duration

	discoveryHits atomic.Int32
	jwksHits      atomic.Int32
}

// New starts a provider publishing keys. Its issuer is the server URL.
func New(t testing.TB, keys ...*Key) *Server {
	t.Helper()

	s := &Server{keys: keys}
	mux := http.NewServeMux()
	mux.HandleFunc(DiscoveryPath, s.serveDiscovery)
	mux.HandleFunc(JWKSPath, s.serveJWKS)
	s.Server = httptest.NewServer(mux)
	s.issuer = s.URL
	t.Cleanup(s.Close)

	return s
}

// Issuer returns the issuer the discovery document advertises.
func (s *Server) Issuer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issuer
}

// SetIssuer changes the advertised issuer.
func (s *Server) SetIssuer(issuer string) {
	s.mu.Lock()
	s.issuer = issuer
	s.mu.Unlock()
}

// SetKeys replaces the published keys.
func (s *Server) SetKeys(keys ...*Key) {
	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
}

// SetJWKSBody serves raw instead of the published keys. Empty restores them.
func (s *Server) SetJWKSBody(raw string) {
	s.mu.Lock()
	s.jwksBody = raw
	s.mu.Unlock()
}

// FailDiscovery makes the discovery endpoint answer with status. Zero heals it.
func (s *Server) FailDiscovery(status int) {
	s.mu.Lock()
	s.discoveryStatus = status
	s.mu.Unlock()
}

// FailJWKS makes the key set endpoint answer with status. Zero heals it.
func (s *Server) FailJWKS(status int) {
	s.mu.Lock()
	s.jwksStatus = status
	s.mu.Unlock()
}

// SetDelay makes both endpoints wait d before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// DiscoveryHits returns how many discovery requests were served.
func (s *Server) DiscoveryHits() int {
	return int(s.discoveryHits.Load())
}

// JWKSHits returns how many key set requests were served.
func (s *Server) JWKSHits() int {
	return int(s.jwksHits.Load())
}

// DefaultClaims returns a payload that a validator configured with Audience
// and this server's issuer accepts.
func (s *Server) DefaultClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":                "user-123",
		"preferred_username": "jdoe",
		"email":              "jdoe@example.com",
		"aud":                Audience,
		"iss":                s.Issuer(),
		"exp":                time.Now().Add(time.Hour).Unix(),
	}
}

func (s *Server) wait(r *http.Request) {
	s.mu.Lock()
	d := s.delay
	s.mu.Unlock()

	if d <= 0 {
		return
	}
	select {
	case <-r.Context().Done():
	case <-time.After(d):
	}
}

func (s *Server) serveDiscovery(w http.ResponseWriter, r *http.Request) {
	s.discoveryHits.Add(1)
	s.wait(r)

	s.mu.Lock()
	status, issuer := s.discoveryStatus, s.issuer
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"issuer":   issuer,
		"jwks_uri": s.URL + JWKSPath,
	})
}

func (s *Server) serveJWKS(w http.ResponseWriter, r *http.Request) {
	s.jwksHits.Add(1)
	s.wait(r)

	s.mu.Lock()
	status, body := s.jwksStatus, s.jwksBody
	keys := make([]map[string]string, 0, len(s.keys))
	for _, key := range s.keys {
		keys = append(keys, key.JWK())
	}
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if body != "" {
		_, _ = w.Write([]byte(body))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"keys": keys})
}
