package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
)

// providerStrategy holds the provider-specific fallbacks applied after the OIDC standard claims.
type providerStrategy struct {
	subjectFallback string
	nameFallback    string
	avatarFallback  string
	// extraGroupClaims are unioned into groups without duplicates.
	extraGroupClaims []string
	// emailVerifiedIfPresent treats a returned email as verified when email_verified is absent.
	emailVerifiedIfPresent bool
}

var azureStrategy = providerStrategy{extraGroupClaims: []string{"roles"}}

// providerStrategies is keyed by provider type. Unknown types use OIDC defaults only.
var providerStrategies = map[domainauth.ProviderType]providerStrategy{
	domainauth.ProviderGitHub: {
		subjectFallback:        "id",
		nameFallback:           "login",
		avatarFallback:         "avatar_url",
		emailVerifiedIfPresent: true,
	},
	domainauth.ProviderDiscord: {
		avatarFallback:   "avatar",
		extraGroupClaims: []string{"discord_roles"},
	},
	domainauth.ProviderMicrosoft: azureStrategy,
	domainauth.ProviderAzure:     azureStrategy,
	domainauth.ProviderAzureAD:   azureStrategy,
}

// RuleApplier applies tenant claim mappings. *ClaimRuleEngine implements it.
type RuleApplier interface {
	ApplyAll(ctx context.Context, claims map[string]any, providerID string) (map[string]any, error)
}

// ClaimsNormalizerOptions groups dependencies for ClaimsNormalizer.
type ClaimsNormalizerOptions struct {
	Rules  RuleApplier  // Optional: tenant claim mappings
	Logger *slog.Logger // Optional: structured logger
}

// ClaimsNormalizer maps provider claim shapes onto NormalizedClaims.
type ClaimsNormalizer struct {
	rules  RuleApplier
	logger *slog.Logger
}

// NewClaimsNormalizer constructs a new ClaimsNormalizer.
func NewClaimsNormalizer(opts ClaimsNormalizerOptions) *ClaimsNormalizer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimsNormalizer{rules: opts.Rules, logger: logger.With("component", "claims_normalizer")}
}

// Normalize builds the canonical identity record. Tenant mappings run first and standard fields
// are read from their output; RawClaims keeps the provider payload untouched.
func (n *ClaimsNormalizer) Normalize(
	ctx context.Context,
	raw map[string]any,
	provider *domainauth.Provider,
) (*domainauth.NormalizedClaims, error) {
	if len(raw) == 0 {
		return nil, apperrors.InvalidArgumentField("claims", "raw claims cannot be empty")
	}
	if provider == nil {
		return nil, apperrors.InvalidArgument("provider is required")
	}

	claims := raw
	if n.rules != nil {
		mapped, err := n.rules.ApplyAll(ctx, raw, provider.ID)
		if err != nil {
			return nil, err
		}
		claims = mapped
	}

	strategy := providerStrategies[provider.Type.Normalize()]
	email := claimString(claims, "email")
	domain := EmailDomain(email)

	out := &domainauth.NormalizedClaims{
		Subject:        firstClaimString(claims, "sub", strategy.subjectFallback),
		Email:          email,
		EmailDomain:    domain,
		EmailOrgDomain: orgDomain(domain),
		Name:           displayName(claims, strategy),
		GivenName:      claimString(claims, "given_name"),
		FamilyName:     claimString(claims, "family_name"),
		AvatarURL:      firstClaimPtr(claims, "picture", strategy.avatarFallback),
		EmailVerified:  emailVerified(claims, strategy),
		Locale:         claimString(claims, "locale"),
		Groups:         groups(claims, strategy.extraGroupClaims),
		MappedClaims:   claims,
		RawClaims:      raw,
	}

	n.logger.DebugContext(ctx, "claims normalized",
		"provider_id", provider.ID,
		"provider_type", provider.Type,
		"has_email", out.Email != nil,
		"groups", len(out.Groups),
	)
	return out, nil
}

// EmailDomain returns the part after the first '@', or nil when there is none or it is empty.
func EmailDomain(email *string) *string {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil
	}
	at := strings.IndexByte(*email, '@')
	if at < 0 || at == len(*email)-1 {
		return nil
	}
	d := (*email)[at+1:]
	return &d
}

// orgDomain returns the registrable domain (eTLD+1) of an email domain.
func orgDomain(domain *string) *string {
	if domain == nil {
		return nil
	}
	org, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(strings.TrimSpace(*domain)))
	if err != nil {
		return nil
	}
	return &org
}

func displayName(claims map[string]any, s providerStrategy) *string {
	if name := claimString(claims, "name"); name != nil {
		return name
	}
	given, family := claimString(claims, "given_name"), claimString(claims, "family_name")
	switch {
	case given != nil && family != nil:
		full := *given + " " + *family
		return &full
	case given != nil:
		return given
	case family != nil:
		return family
	}
	if s.nameFallback != "" {
		return claimString(claims, s.nameFallback)
	}
	return nil
}

func emailVerified(claims map[string]any, s providerStrategy) *bool {
	switch v := claims["email_verified"].(type) {
	case bool:
		return &v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return &b
	}
	if s.emailVerifiedIfPresent {
		_, ok := claims["email"]
		return &ok
	}
	return nil
}

func groups(claims map[string]any, extra []string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	add := func(v any, dedupe bool) {
		for _, item := range toList(v) {
			if item == nil {
				continue
			}
			s := stringify(item)
			if _, dup := seen[s]; dup && dedupe {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	add(claims["groups"], false)
	for _, field := range extra {
		add(claims[field], true)
	}
	return out
}

func toList(v any) []any {
	switch list := v.(type) {
	case []any:
		return list
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

func claimString(claims map[string]any, key string) *string {
	if key == "" {
		return nil
	}
	v, ok := claims[key]
	if !ok || v == nil {
		return nil
	}
	s := stringify(v)
	return &s
}

func firstClaimPtr(claims map[string]any, keys ...string) *string {
	for _, k := range keys {
		if s := claimString(claims, k); s != nil {
			return s
		}
	}
	return nil
}

func firstClaimString(claims map[string]any, keys ...string) string {
	if s := firstClaimPtr(claims, keys...); s != nil {
		return *s
	}
	return ""
}

// stringify renders claim values the way they appear in the token, keeping numeric ids exact.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
