package oidc

import (
	"context"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
)

const wellKnownPath = ".well-known/openid-configuration"

// discoveryURL appends the well-known path, respecting an existing trailing slash.
func discoveryURL(issuer string) string {
	if strings.HasSuffix(issuer, "/") {
		return issuer + wellKnownPath
	}
	return issuer + "/" + wellKnownPath
}

// DiscoverConfiguration returns the issuer's discovery document, fetching it on first use.
// Documents are cached by issuer until ClearDiscoveryCache is called.
func (c *Client) DiscoverConfiguration(ctx context.Context, issuer string) (*domainauth.DiscoveryDocument, error) {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return nil, apperrors.InvalidArgumentField("issuer", "issuer is required")
	}
	if v, ok := c.discovery.Get(issuer); ok {
		return v.(*domainauth.DiscoveryDocument), nil
	}

	// Shared with other waiters, so one caller's cancellation must not fail the fetch.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("discovery:"+issuer, func() (any, error) {
		var doc domainauth.DiscoveryDocument
		if err := c.getJSON(fetchCtx, discoveryURL(issuer), &doc); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrCodeConfiguration, "fetch discovery document for %s", issuer)
		}
		if doc.AuthorizationEndpoint == "" || doc.TokenEndpoint == "" {
			return nil, apperrors.Configurationf("discovery document for %s lacks authorization_endpoint or token_endpoint", issuer)
		}
		c.discovery.Set(issuer, &doc, gocache.NoExpiration)
		return &doc, nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "discovery failed", "issuer", issuer, "error", err)
		return nil, err
	}
	return v.(*domainauth.DiscoveryDocument), nil
}

// ClearDiscoveryCache drops the cached discovery document for an issuer.
func (c *Client) ClearDiscoveryCache(issuer string) {
	c.discovery.Delete(strings.TrimSpace(issuer))
}
