// Package auth contains domain-level types for provider verification sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"strings"
	"time"
)

// ProviderType tags the identity provider family. Claim extraction branches on it.
type ProviderType string

const (
	ProviderGoogle    ProviderType = "google"
	ProviderGitHub    ProviderType = "github"
	ProviderMicrosoft ProviderType = "microsoft"
	ProviderAzure     ProviderType = "azure"
	ProviderAzureAD   ProviderType = "azuread"
	ProviderDiscord   ProviderType = "discord"
	ProviderCustom    ProviderType = "custom"
)

// Normalize lowercases and trims the tag so lookups are case-insensitive.
func (t ProviderType) Normalize() ProviderType {
	return ProviderType(strings.ToLower(strings.TrimSpace(string(t))))
}

// Provider configuration keys read by the verification core.
const (
	ConfigAuthorizationEndpoint = "authorization_endpoint"
	ConfigTokenEndpoint         = "token_endpoint"
	ConfigJWKSURI               = "jwks_uri"
	ConfigIssuer                = "issuer"
	ConfigScopes                = "scopes"
	ConfigAdditionalAuthParams  = "additional_auth_params"
)

// Provider is a tenant-configured identity provider. The client secret is only ever held encrypted.
type Provider struct {
	ID                    string         `json:"id"                      db:"id"`
	TenantID              string         `json:"tenant_id"               db:"tenant_id"`
	Type                  ProviderType   `json:"provider_type"           db:"provider_type"`
	Name                  string         `json:"name"                    db:"name"`
	ClientID              string         `json:"client_id"               db:"client_id"`
	ClientSecretEncrypted string         `json:"-"                       db:"client_secret_encrypted"`
	Config                map[string]any `json:"config"                  db:"config"`
	IsActive              bool           `json:"is_active"               db:"is_active"`
	CreatedAt             time.Time      `json:"created_at"              db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"              db:"updated_at"`
}

// ConfigString returns a trimmed string config value, or "" when absent or not a string.
func (p *Provider) ConfigString(key string) string {
	if p == nil || p.Config == nil {
		return ""
	}
	s, _ := p.Config[key].(string)
	return strings.TrimSpace(s)
}

// Scopes returns the configured scope string. A list value is joined with spaces.
func (p *Provider) Scopes() string {
	if p == nil || p.Config == nil {
		return ""
	}
	switch v := p.Config[ConfigScopes].(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		return strings.Join(v, " ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// AdditionalAuthParams returns provider-specific authorization query parameters.
// Non-string values are ignored.
func (p *Provider) AdditionalAuthParams() map[string]string {
	if p == nil || p.Config == nil {
		return nil
	}
	out := map[string]string{}
	switch v := p.Config[ConfigAdditionalAuthParams].(type) {
	case map[string]string:
		for k, val := range v {
			out[k] = val
		}
	case map[string]any:
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

// SessionStatus is the lifecycle state of a verification session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionExpired   SessionStatus = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionFailed || s == SessionExpired
}

// VerificationSession correlates an authorization redirect with its callback.
// CodeVerifier is never transmitted to the provider's authorization endpoint.
type VerificationSession struct {
	ID             string         `json:"id"               db:"id"`
	TenantID       string         `json:"tenant_id"        db:"tenant_id"`
	ProviderID     string         `json:"provider_id"      db:"provider_id"`
	StateToken     string         `json:"state_token"      db:"state_token"`
	CodeVerifier   string         `json:"code_verifier"    db:"code_verifier"`
	Nonce          string         `json:"nonce,omitempty"  db:"nonce"`
	PlatformType   string         `json:"platform_type"    db:"platform_type"`
	PlatformUserID string         `json:"platform_user_id" db:"platform_user_id"`
	Status         SessionStatus  `json:"status"           db:"status"`
	SessionData    map[string]any `json:"session_data"     db:"session_data"`
	ExpiresAt      time.Time      `json:"expires_at"       db:"expires_at"`
	CompletedAt    *time.Time     `json:"completed_at"     db:"completed_at"`
	CreatedAt      time.Time      `json:"created_at"       db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"       db:"updated_at"`
}

// IsPending reports whether the session may still transition.
func (s *VerificationSession) IsPending() bool { return s.Status == SessionPending }

// IsExpiredAt reports whether the TTL has elapsed at now, regardless of stored status.
func (s *VerificationSession) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Transform is the ordered transform descriptor of a claim mapping.
// Steps run lowercase, uppercase, trim, regex replace, then default.
type Transform struct {
	ToLowerCase bool    `json:"toLowerCase,omitempty"`
	ToUpperCase bool    `json:"toUpperCase,omitempty"`
	Trim        bool    `json:"trim,omitempty"`
	Regex       *string `json:"regex,omitempty"`
	Replacement *string `json:"replacement,omitempty"`
	Default     any     `json:"default,omitempty"`
}

// IsZero reports whether the transform has no steps.
func (t Transform) IsZero() bool {
	return !t.ToLowerCase && !t.ToUpperCase && !t.Trim && t.Regex == nil && t.Default == nil
}

// ClaimMapping is a tenant-authored rule that copies and transforms a claim into a target field.
type ClaimMapping struct {
	ID          string     `json:"id"          db:"id"`
	ProviderID  string     `json:"provider_id" db:"provider_id"`
	Name        string     `json:"name"        db:"name"`
	Description string     `json:"description" db:"description"`
	SourcePath  string     `json:"source_path" db:"source_path"`
	TargetField string     `json:"target_field" db:"target_field"`
	Transform   Transform  `json:"transform"   db:"transform"`
	Priority    int        `json:"priority"    db:"priority"`
	IsActive    bool       `json:"is_active"   db:"is_active"`
	CreatedAt   time.Time  `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"  db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ClaimMappingRequest carries fields for creating or partially updating a mapping.
// Nil pointers leave the stored value unchanged on update.
type ClaimMappingRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	SourcePath  *string    `json:"source_path"`
	TargetField *string    `json:"target_field"`
	Transform   *Transform `json:"transform"`
	Priority    *int       `json:"priority"`
	IsActive    *bool      `json:"is_active"`
}

// NormalizedClaims is the provider-agnostic identity record produced from raw claims.
// Nil pointers mean the provider did not supply the value. MappedClaims holds the claim map
// after tenant claim mappings ran; RawClaims is the untouched provider payload.
type NormalizedClaims struct {
	Subject        string         `json:"sub"`
	Email          *string        `json:"email,omitempty"`
	EmailDomain    *string        `json:"email_domain,omitempty"`
	EmailOrgDomain *string        `json:"email_org_domain,omitempty"`
	Name           *string        `json:"name,omitempty"`
	GivenName      *string        `json:"given_name,omitempty"`
	FamilyName     *string        `json:"family_name,omitempty"`
	AvatarURL      *string        `json:"avatar_url,omitempty"`
	EmailVerified  *bool          `json:"email_verified,omitempty"`
	Locale         *string        `json:"locale,omitempty"`
	Groups         []string       `json:"groups"`
	MappedClaims   map[string]any `json:"mapped_claims,omitempty"`
	RawClaims      map[string]any `json:"raw_claims"`
}

// TokenResponse holds the tokens returned by a provider's token endpoint.
type TokenResponse struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

// DiscoveryDocument represents the subset of an OIDC discovery document the core uses.
type DiscoveryDocument struct {
	Issuer                string   `json:"issuer"`
	AuthorizationEndpoint string   `json:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"`
	UserinfoEndpoint      string   `json:"userinfo_endpoint,omitempty"`
	JwksURI               string   `json:"jwks_uri,omitempty"`
	ScopesSupported       []string `json:"scopes_supported,omitempty"`
	SigningAlgsSupported  []string `json:"id_token_signing_alg_values_supported,omitempty"`
}
