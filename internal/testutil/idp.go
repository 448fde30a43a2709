package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
)

// FakeIDP is an httptest-backed identity provider serving discovery, JWKS and token endpoints.
type FakeIDP struct {
	Server *httptest.Server

	JWKSHits      atomic.Int32
	DiscoveryHits atomic.Int32
	TokenHits     atomic.Int32

	mu        sync.Mutex
	published map[string]*rsa.PrivateKey
	jwksCode  int
	tokenCode int
	tokenBody map[string]any
	lastForm  url.Values
}

// NewFakeIDP starts a fake provider that is closed with the test.
func NewFakeIDP(t testing.TB) *FakeIDP {
	t.Helper()
	idp := &FakeIDP{
		published: map[string]*rsa.PrivateKey{},
		jwksCode:  http.StatusOK,
		tokenCode: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", idp.serveDiscovery)
	mux.HandleFunc("/jwks", idp.serveJWKS)
	mux.HandleFunc("/token", idp.serveToken)
	idp.Server = httptest.NewServer(mux)
	t.Cleanup(idp.Server.Close)
	return idp
}

// Issuer returns the provider's issuer URL.
func (f *FakeIDP) Issuer() string { return f.Server.URL }

// NewRSAKey generates a 2048-bit RSA key.
func NewRSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}

// PublishKey adds key to the served JWKS under kid.
func (f *FakeIDP) PublishKey(kid string, key *rsa.PrivateKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[kid] = key
}

// UnpublishAll empties the served JWKS.
func (f *FakeIDP) UnpublishAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = map[string]*rsa.PrivateKey{}
}

// SetJWKSStatus makes the JWKS endpoint answer with code.
func (f *FakeIDP) SetJWKSStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jwksCode = code
}

// SetTokenResponse configures the token endpoint's status and JSON body.
func (f *FakeIDP) SetTokenResponse(code int, body map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenCode = code
	f.tokenBody = body
}

// LastTokenForm returns the form posted in the most recent token request.
func (f *FakeIDP) LastTokenForm() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastForm
}

// Provider returns a provider configured against this IdP.
func (f *FakeIDP) Provider(tenantID, providerID, clientID, encryptedSecret string) *domainauth.Provider {
	return &domainauth.Provider{
		ID:                    providerID,
		TenantID:              tenantID,
		Type:                  domainauth.ProviderCustom,
		Name:                  "fake",
		ClientID:              clientID,
		ClientSecretEncrypted: encryptedSecret,
		IsActive:              true,
		Config: map[string]any{
			domainauth.ConfigAuthorizationEndpoint: f.Issuer() + "/authorize",
			domainauth.ConfigTokenEndpoint:         f.Issuer() + "/token",
			domainauth.ConfigJWKSURI:               f.Issuer() + "/jwks",
			domainauth.ConfigIssuer:                f.Issuer(),
		},
	}
}

// IDTokenClaims returns a claim set that a provider with clientID accepts at now.
func (f *FakeIDP) IDTokenClaims(clientID string, now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":   f.Issuer(),
		"sub":   "user-123",
		"aud":   clientID,
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Add(-time.Minute).Unix(),
		"email": "user@example.com",
	}
}

// SignIDToken signs claims with key using RS256 and sets kid when non-empty.
func SignIDToken(t testing.TB, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign id token: %v", err)
	}
	return signed
}

// UnsignedIDToken builds a token with alg none, as emitted by providers without a key set.
func UnsignedIDToken(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("build unsigned id token: %v", err)
	}
	return signed
}

func (f *FakeIDP) serveDiscovery(w http.ResponseWriter, _ *http.Request) {
	f.DiscoveryHits.Add(1)
	writeJSON(w, http.StatusOK, domainauth.DiscoveryDocument{
		Issuer:                f.Issuer(),
		AuthorizationEndpoint: f.Issuer() + "/authorize",
		TokenEndpoint:         f.Issuer() + "/token",
		JwksURI:               f.Issuer() + "/jwks",
	})
}

func (f *FakeIDP) serveJWKS(w http.ResponseWriter, _ *http.Request) {
	f.JWKSHits.Add(1)
	f.mu.Lock()
	code := f.jwksCode
	set := jose.JSONWebKeySet{}
	for kid, key := range f.published {
		set.Keys = append(set.Keys, jose.JSONWebKey{
			Key:       &key.PublicKey,
			KeyID:     kid,
			Algorithm: "RS256",
			Use:       "sig",
		})
	}
	f.mu.Unlock()

	if code != http.StatusOK {
		w.WriteHeader(code)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (f *FakeIDP) serveToken(w http.ResponseWriter, r *http.Request) {
	f.TokenHits.Add(1)
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.lastForm = r.PostForm
	code, body := f.tokenCode, f.tokenBody
	f.mu.Unlock()

	if body == nil {
		body = map[string]any{"error": "invalid_grant"}
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
