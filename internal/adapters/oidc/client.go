// Package oidc implements the protocol surface toward tenant-configured identity providers:
// authorization URLs, code exchange, discovery, JWKS caching and ID token validation.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/observability/metrics"
	"github.com/javaDevJT/auth-hooker/internal/pkce"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

const (
	// DefaultCallbackBaseURL is the public base that providers redirect back to.
	DefaultCallbackBaseURL = "https://auth.javadevjt.tech"
	// DefaultScopes is requested when a provider configures none.
	DefaultScopes = "openid profile email"
	// DefaultTimeout bounds every outbound call.
	DefaultTimeout = 10 * time.Second
)

// Client implements ports.OIDCClient. It is stateless apart from the JWKS and discovery caches,
// which never expire on a timer.
type Client struct {
	callbackBase  string
	defaultScopes string
	timeout       time.Duration
	allowUnsigned bool

	httpClient *http.Client
	decryptor  ports.Decryptor
	clock      ports.Clock
	logger     *slog.Logger
	metrics    metrics.Recorder

	jwks      *gocache.Cache
	discovery *gocache.Cache
	group     singleflight.Group
}

var _ ports.OIDCClient = (*Client)(nil)

// Options configures a Client.
type Options struct {
	CallbackBaseURL string
	DefaultScopes   string
	Timeout         time.Duration

	// AllowUnsignedIDTokens enables the degraded mode for providers without a jwks_uri,
	// where only issuer and expiry are checked.
	AllowUnsignedIDTokens bool

	// HTTPClient is optional and defaults to a client bounded by Timeout.
	HTTPClient *http.Client
	Decryptor  ports.Decryptor
	Clock      ports.Clock
	Logger     *slog.Logger
	Metrics    metrics.Recorder
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewClient creates a new OIDC client.
func NewClient(opts Options) (*Client, error) {
	if opts.Decryptor == nil {
		return nil, errors.New("decryptor is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(strings.TrimSpace(opts.CallbackBaseURL), "/")
	if base == "" {
		base = DefaultCallbackBaseURL
	}
	scopes := strings.TrimSpace(opts.DefaultScopes)
	if scopes == "" {
		scopes = DefaultScopes
	}
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		callbackBase:  base,
		defaultScopes: scopes,
		timeout:       timeout,
		allowUnsigned: opts.AllowUnsignedIDTokens,
		httpClient:    httpClient,
		decryptor:     opts.Decryptor,
		clock:         clock,
		logger:        logger.With("component", "oidc_client"),
		metrics:       metrics.OrNoop(opts.Metrics),
		jwks:          gocache.New(gocache.NoExpiration, 0),
		discovery:     gocache.New(gocache.NoExpiration, 0),
	}, nil
}

// RedirectURI returns the callback URI registered upstream for the provider.
// Authorization and token exchange must present the identical value.
func (c *Client) RedirectURI(p *domainauth.Provider) string {
	return fmt.Sprintf("%s/oauth/callback/%s/%s", c.callbackBase, p.TenantID, p.ID)
}

// reservedAuthParams may not be overridden by provider-configured extras.
var reservedAuthParams = map[string]struct{}{
	"client_id":             {},
	"redirect_uri":          {},
	"response_type":         {},
	"scope":                 {},
	"state":                 {},
	"code_challenge":        {},
	"code_challenge_method": {},
	"nonce":                 {},
}

// BuildAuthorizationURL returns the provider redirect for an authorization-code flow with PKCE.
// A nonce is included only when the requested scopes contain openid; when nonce is empty a
// fresh one is generated.
func (c *Client) BuildAuthorizationURL(
	_ context.Context,
	p *domainauth.Provider,
	state, codeChallenge, nonce string,
) (string, error) {
	if p == nil {
		return "", apperrors.InvalidArgument("provider is required")
	}
	if strings.TrimSpace(state) == "" {
		return "", apperrors.InvalidArgumentField("state", "state is required")
	}
	if strings.TrimSpace(codeChallenge) == "" {
		return "", apperrors.InvalidArgumentField("code_challenge", "code challenge is required")
	}
	authURL := p.ConfigString(domainauth.ConfigAuthorizationEndpoint)
	if authURL == "" {
		return "", apperrors.Configurationf("provider %s has no authorization_endpoint", p.ID)
	}

	scopes := strings.Fields(p.Scopes())
	if len(scopes) == 0 {
		scopes = strings.Fields(c.defaultScopes)
	}
	cfg := &oauth2.Config{
		ClientID:    p.ClientID,
		RedirectURL: c.RedirectURI(p),
		Scopes:      scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: authURL},
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.MethodS256),
	}
	if hasScope(scopes, "openid") {
		if nonce == "" {
			var err error
			if nonce, err = pkce.RandomToken(); err != nil {
				return "", fmt.Errorf("generate nonce: %w", err)
			}
		}
		opts = append(opts, oauth2.SetAuthURLParam("nonce", nonce))
	}

	// Provider extras follow the protocol parameters in the query.
	extras := url.Values{}
	for k, v := range p.AdditionalAuthParams() {
		if _, reserved := reservedAuthParams[k]; reserved {
			continue
		}
		extras.Set(k, v)
	}

	authCodeURL := cfg.AuthCodeURL(state, opts...)
	if len(extras) > 0 {
		authCodeURL += "&" + extras.Encode()
	}
	return authCodeURL, nil
}

// ExchangeCode redeems an authorization code at the provider's token endpoint.
// The client secret is decrypted only for the duration of the call. Failures are not retried.
func (c *Client) ExchangeCode(
	ctx context.Context,
	p *domainauth.Provider,
	code, codeVerifier string,
) (*domainauth.TokenResponse, error) {
	if p == nil {
		return nil, apperrors.InvalidArgument("provider is required")
	}
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.InvalidArgumentField("code", "authorization code is required")
	}
	if strings.TrimSpace(codeVerifier) == "" {
		return nil, apperrors.InvalidArgumentField("code_verifier", "code verifier is required")
	}
	tokenURL := p.ConfigString(domainauth.ConfigTokenEndpoint)
	if tokenURL == "" {
		return nil, apperrors.Configurationf("provider %s has no token_endpoint", p.ID)
	}

	secret, err := c.decryptor.Decrypt(p.ClientSecretEncrypted)
	if err != nil {
		return nil, fmt.Errorf("decrypt client secret for provider %s: %w", p.ID, err)
	}

	cfg := &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: secret,
		RedirectURL:  c.RedirectURI(p),
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	start := time.Now()
	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		c.metrics.TokenExchange(metrics.ResultError, time.Since(start))
		c.logger.WarnContext(ctx, "token exchange failed", "provider_id", p.ID, "error", err)
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeTokenExchangeFailed, "token exchange with provider %s failed", p.ID)
	}

	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		c.metrics.TokenExchange(metrics.ResultError, time.Since(start))
		return nil, apperrors.TokenExchangeFailed("token response did not include an id_token")
	}
	c.metrics.TokenExchange(metrics.ResultSuccess, time.Since(start))

	return &domainauth.TokenResponse{
		IDToken:      rawID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}, nil
}

func hasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}
