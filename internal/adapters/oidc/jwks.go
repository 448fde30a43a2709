package oidc

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-jose/go-jose/v4"
	gocache "github.com/patrickmn/go-cache"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/observability/metrics"
)

const maxDocumentBytes = 1 << 20

// keySet is an immutable snapshot of a provider's RSA signing keys.
type keySet struct {
	byKID map[string]*rsa.PublicKey
	count int
}

// lookup resolves kid. An empty kid resolves only when the set holds exactly one key.
func (s *keySet) lookup(kid string) (*rsa.PublicKey, bool) {
	if s == nil {
		return nil, false
	}
	if kid == "" {
		if s.count != 1 {
			return nil, false
		}
		for _, k := range s.byKID {
			return k, true
		}
	}
	k, ok := s.byKID[kid]
	return k, ok
}

func jwksCacheKey(providerID string) string { return "jwks:" + providerID }

// signingKey resolves the key for kid, fetching the provider's JWKS on first use. A kid
// missing from a previously cached set forces exactly one refetch before failing.
func (c *Client) signingKey(ctx context.Context, p *domainauth.Provider, kid string) (*rsa.PublicKey, error) {
	cached, found := c.jwks.Get(jwksCacheKey(p.ID))
	if found {
		if key, ok := cached.(*keySet).lookup(kid); ok {
			return key, nil
		}
		c.logger.InfoContext(ctx, "signing key not cached, refetching jwks", "provider_id", p.ID, "kid", kid)
	}

	set, err := c.loadKeySet(ctx, p)
	if err != nil {
		return nil, err
	}
	if key, ok := set.lookup(kid); ok {
		return key, nil
	}
	return nil, apperrors.InvalidIDTokenf("no signing key %q in jwks for provider %s", kid, p.ID)
}

// loadKeySet fetches and caches the provider's JWKS. Concurrent loads for the same provider share one fetch,
// which runs detached from the initiating caller's cancellation and is bounded by the client timeout.
func (c *Client) loadKeySet(ctx context.Context, p *domainauth.Provider) (*keySet, error) {
	key := jwksCacheKey(p.ID)
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		set, err := c.fetchKeySet(fetchCtx, p.ConfigString(domainauth.ConfigJWKSURI))
		if err != nil {
			c.metrics.JWKSFetch(metrics.ResultError)
			return nil, err
		}
		c.metrics.JWKSFetch(metrics.ResultSuccess)
		c.jwks.Set(key, set, gocache.NoExpiration)
		return set, nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "jwks fetch failed", "provider_id", p.ID, "error", err)
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInvalidIDToken, "resolve signing keys for provider %s", p.ID)
	}
	return v.(*keySet), nil
}

func (c *Client) fetchKeySet(ctx context.Context, uri string) (*keySet, error) {
	var doc jose.JSONWebKeySet
	if err := c.getJSON(ctx, uri, &doc); err != nil {
		return nil, err
	}

	set := &keySet{byKID: make(map[string]*rsa.PublicKey, len(doc.Keys))}
	for _, k := range doc.Keys {
		pub, ok := k.Key.(*rsa.PublicKey)
		if !ok || (k.Use != "" && k.Use != "sig") {
			continue
		}
		set.byKID[k.KeyID] = pub
	}
	set.count = len(set.byKID)
	return set, nil
}

// ClearJWKSCache drops the cached key set for a provider, e.g. after an announced key rotation.
func (c *Client) ClearJWKSCache(providerID string) {
	c.jwks.Delete(jwksCacheKey(providerID))
}

// getJSON issues a bounded GET and decodes a JSON body. Non-2xx responses are errors.
func (c *Client) getJSON(ctx context.Context, uri string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", uri, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("get %s: unexpected status %d", uri, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", uri, err)
	}
	return nil
}
