package oidc

import (
	"bytes"
	"context"
	"crypto"
	"encoding/json"
	"strings"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/observability/metrics"
)

var rsaSigningAlgs = []string{gooidc.RS256, gooidc.RS384, gooidc.RS512}

// decodedToken holds the unverified header and payload of a compact JWS.
type decodedToken struct {
	header map[string]any
	claims jwt.MapClaims
}

// decodeToken splits and decodes a compact token without verifying it.
// Numbers in the payload are kept as json.Number so large identifiers survive intact.
func decodeToken(raw string) (*decodedToken, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) != 3 {
		return nil, apperrors.InvalidIDTokenf("id token has %d segments, want 3", len(parts))
	}

	parser := jwt.NewParser()
	headerJSON, err := parser.DecodeSegment(parts[0])
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidIDToken, "decode id token header")
	}
	payloadJSON, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidIDToken, "decode id token payload")
	}

	var header map[string]any
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidIDToken, "parse id token header")
	}
	dec := json.NewDecoder(bytes.NewReader(payloadJSON))
	dec.UseNumber()
	var claims jwt.MapClaims
	if err := dec.Decode(&claims); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidIDToken, "parse id token payload")
	}
	if claims == nil {
		return nil, apperrors.InvalidIDToken("id token payload is not a JSON object")
	}
	return &decodedToken{header: header, claims: claims}, nil
}

// ExtractClaims decodes the payload without verifying the signature. Call it only on tokens
// that ValidateIDToken accepted.
func (c *Client) ExtractClaims(idToken string) (map[string]any, error) {
	tok, err := decodeToken(idToken)
	if err != nil {
		return nil, err
	}
	return map[string]any(tok.claims), nil
}

// ValidateIDToken verifies signature, issuer, audience, expiry and issued-at.
//
// Tokens that fail any check yield (false, nil). Structurally malformed tokens, unreachable
// or corrupt key sets, and a kid that stays unresolved after one forced refetch yield an
// InvalidIdToken error. Providers without a jwks_uri are validated in unsigned mode when enabled.
func (c *Client) ValidateIDToken(ctx context.Context, p *domainauth.Provider, idToken string) (bool, error) {
	if p == nil {
		return false, apperrors.InvalidArgument("provider is required")
	}
	tok, err := decodeToken(idToken)
	if err != nil {
		c.metrics.IDTokenValidation(metrics.ResultError)
		return false, err
	}

	issuer := p.ConfigString(domainauth.ConfigIssuer)
	if p.ConfigString(domainauth.ConfigJWKSURI) == "" {
		return c.validateUnsigned(ctx, p, issuer, tok.claims)
	}
	if p.ClientID == "" {
		return false, apperrors.Configurationf("provider %s has no client id", p.ID)
	}

	kid, _ := tok.header["kid"].(string)
	key, err := c.signingKey(ctx, p, kid)
	if err != nil {
		c.metrics.IDTokenValidation(metrics.ResultError)
		return false, err
	}

	verifier := gooidc.NewVerifier(issuer, &gooidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key}}, &gooidc.Config{
		ClientID:             p.ClientID,
		SupportedSigningAlgs: rsaSigningAlgs,
		SkipIssuerCheck:      issuer == "",
		Now:                  c.clock.Now,
	})
	verified, err := verifier.Verify(ctx, idToken)
	if err != nil {
		c.logger.InfoContext(ctx, "id token rejected", "provider_id", p.ID, "kid", kid, "error", err)
		c.metrics.IDTokenValidation(metrics.ResultInvalid)
		return false, nil
	}
	if !verified.IssuedAt.IsZero() && verified.IssuedAt.After(c.clock.Now()) {
		c.logger.InfoContext(ctx, "id token issued in the future", "provider_id", p.ID, "iat", verified.IssuedAt)
		c.metrics.IDTokenValidation(metrics.ResultInvalid)
		return false, nil
	}

	c.metrics.IDTokenValidation(metrics.ResultSuccess)
	return true, nil
}

// validateUnsigned checks only issuer and expiry. It is a degraded mode for providers that
// publish no key set and must be enabled explicitly.
func (c *Client) validateUnsigned(ctx context.Context, p *domainauth.Provider, issuer string, claims jwt.MapClaims) (bool, error) {
	if !c.allowUnsigned {
		c.metrics.IDTokenValidation(metrics.ResultError)
		return false, apperrors.Configurationf("provider %s has no jwks_uri and unsigned id tokens are disabled", p.ID)
	}
	c.logger.WarnContext(ctx, "validating id token without signature verification", "provider_id", p.ID)

	if issuer != "" {
		if iss, _ := claims.GetIssuer(); iss != issuer {
			c.metrics.IDTokenValidation(metrics.ResultInvalid)
			return false, nil
		}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || !exp.After(c.clock.Now()) {
		c.metrics.IDTokenValidation(metrics.ResultInvalid)
		return false, nil
	}

	c.metrics.IDTokenValidation(metrics.ResultUnsigned)
	return true, nil
}
