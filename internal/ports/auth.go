// Package ports defines interfaces (hexagonal ports) for the verification core.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.
package ports

import (
	"context"
	"time"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// ProviderLookup resolves tenant-scoped, active providers.
type ProviderLookup interface {
	// GetActiveProvider returns NotFound when the provider is unknown, inactive, or owned by another tenant.
	GetActiveProvider(ctx context.Context, tenantID, providerID string) (*domainauth.Provider, error)
}

// SessionRepository persists verification sessions.
// Lookups return a NotFound error for unknown keys.
type SessionRepository interface {
	Create(ctx context.Context, sess *domainauth.VerificationSession) error
	GetByState(ctx context.Context, stateToken string) (*domainauth.VerificationSession, error)

	// TransitionIfPending moves a pending session to status and returns the updated record.
	// It is a single conditional write: when the stored status is no longer pending it returns
	// InvalidState, so concurrent callers cannot both succeed.
	TransitionIfPending(ctx context.Context, id string, in TransitionInput) (*domainauth.VerificationSession, error)

	// ExpirePendingBefore marks pending sessions whose expiry is at or before now as expired.
	ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error)

	// DeleteTerminalBefore hard-deletes terminal sessions last updated before cutoff, at most limit rows.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}

// TransitionInput groups parameters for a conditional session transition.
type TransitionInput struct {
	Status      domainauth.SessionStatus
	SessionData map[string]any
	At          time.Time
}

// ClaimMappingSource supplies a provider's active claim mappings ordered by descending priority.
type ClaimMappingSource interface {
	ListActiveByProvider(ctx context.Context, providerID string) ([]domainauth.ClaimMapping, error)
}

// ClaimMappingRepository administers claim mappings.
type ClaimMappingRepository interface {
	ClaimMappingSource
	Create(ctx context.Context, providerID string, req domainauth.ClaimMappingRequest) (*domainauth.ClaimMapping, error)
	Update(ctx context.Context, id string, req domainauth.ClaimMappingRequest) (*domainauth.ClaimMapping, error)
	SoftDelete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domainauth.ClaimMapping, error)
	ListByProvider(ctx context.Context, providerID string) ([]domainauth.ClaimMapping, error)
}

// OIDCClient is the protocol surface toward identity providers.
type OIDCClient interface {
	BuildAuthorizationURL(ctx context.Context, provider *domainauth.Provider, state, codeChallenge, nonce string) (string, error)
	ExchangeCode(ctx context.Context, provider *domainauth.Provider, code, codeVerifier string) (*domainauth.TokenResponse, error)

	// ValidateIDToken reports false for tokens failing signature or claim checks.
	// Malformed tokens and unresolvable signing keys return an InvalidIdToken error.
	ValidateIDToken(ctx context.Context, provider *domainauth.Provider, idToken string) (bool, error)

	ExtractClaims(idToken string) (map[string]any, error)
}

// Decryptor reverses secret encryption.
type Decryptor interface {
	Decrypt(ciphertext string) (string, error)
}
