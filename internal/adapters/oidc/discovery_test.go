package oidc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
)

func TestDiscoveryURL(t *testing.T) {
	assert.Equal(t, "https://idp.example/.well-known/openid-configuration", discoveryURL("https://idp.example"))
	assert.Equal(t, "https://idp.example/tenant/.well-known/openid-configuration", discoveryURL("https://idp.example/tenant/"))
}

func TestDiscoverConfiguration_CachesByIssuer(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	doc, err := f.client.DiscoverConfiguration(ctx, f.idp.Issuer())
	require.NoError(t, err)
	assert.Equal(t, f.idp.Issuer()+"/authorize", doc.AuthorizationEndpoint)
	assert.Equal(t, f.idp.Issuer()+"/token", doc.TokenEndpoint)
	assert.Equal(t, f.idp.Issuer()+"/jwks", doc.JwksURI)

	again, err := f.client.DiscoverConfiguration(ctx, f.idp.Issuer())
	require.NoError(t, err)
	assert.Same(t, doc, again)
	assert.Equal(t, int32(1), f.idp.DiscoveryHits.Load())

	f.client.ClearDiscoveryCache(f.idp.Issuer())
	_, err = f.client.DiscoverConfiguration(ctx, f.idp.Issuer())
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.idp.DiscoveryHits.Load())
}

func TestDiscoverConfiguration_TrailingSlash(t *testing.T) {
	f := newClientFixture(t)

	_, err := f.client.DiscoverConfiguration(context.Background(), f.idp.Issuer()+"/")
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.idp.DiscoveryHits.Load())
}

func TestDiscoverConfiguration_CancelledCallerStillPopulatesCache(t *testing.T) {
	f := newClientFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := f.client.DiscoverConfiguration(ctx, f.idp.Issuer())
	require.NoError(t, err)
	assert.Equal(t, f.idp.Issuer()+"/token", doc.TokenEndpoint)

	again, err := f.client.DiscoverConfiguration(context.Background(), f.idp.Issuer())
	require.NoError(t, err)
	assert.Same(t, doc, again)
	assert.Equal(t, int32(1), f.idp.DiscoveryHits.Load())
}

func TestDiscoverConfiguration_Failures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/partial/.well-known/openid-configuration":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"issuer":"x","authorization_endpoint":"https://x/auth"}`))
		case "/garbage/.well-known/openid-configuration":
			_, _ = w.Write([]byte(`<html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := newClientFixture(t)
	ctx := context.Background()

	for _, issuer := range []string{srv.URL + "/partial", srv.URL + "/garbage", srv.URL + "/missing"} {
		_, err := f.client.DiscoverConfiguration(ctx, issuer)
		assert.True(t, apperrors.IsConfiguration(err), "%s: got %v", issuer, err)
	}

	_, err := f.client.DiscoverConfiguration(ctx, srv.URL+"/partial")
	assert.Error(t, err)
	assert.Equal(t, int32(4), hits.Load(), "failed documents must not be cached")

	_, err = f.client.DiscoverConfiguration(ctx, "  ")
	assert.True(t, apperrors.IsInvalidArgument(err))
}
