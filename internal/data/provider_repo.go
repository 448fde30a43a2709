package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/javaDevJT/auth-hooker/internal/data/cryptoutil"
	"github.com/javaDevJT/auth-hooker/internal/data/pgxutil"
	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

const providerColumns = `id, tenant_id, provider_type, name, client_id, client_secret_encrypted,
	config, is_active, created_at, updated_at`

var _ ports.ProviderLookup = (*ProviderRepo)(nil)

// ProviderRepo reads and registers tenant identity providers. Client secrets are encrypted
// before they reach the database and are never decrypted here.
type ProviderRepo struct {
	DB  *sql.DB
	Enc cryptoutil.Encryptor
}

// NewProviderRepo creates a new ProviderRepo.
func NewProviderRepo(db *sql.DB, enc cryptoutil.Encryptor) *ProviderRepo {
	return &ProviderRepo{DB: db, Enc: enc}
}

// CreateProviderRequest carries the fields needed to register a provider.
type CreateProviderRequest struct {
	TenantID     string
	Type         domainauth.ProviderType
	Name         string
	ClientID     string
	ClientSecret string
	Config       map[string]any
}

// Create encrypts the client secret and inserts the provider as active.
func (r *ProviderRepo) Create(ctx context.Context, req CreateProviderRequest) (*domainauth.Provider, error) {
	switch {
	case strings.TrimSpace(req.TenantID) == "":
		return nil, apperrors.InvalidArgumentField("tenant_id", "tenant ID is required")
	case strings.TrimSpace(req.Name) == "":
		return nil, apperrors.InvalidArgumentField("name", "name is required")
	case strings.TrimSpace(req.ClientID) == "":
		return nil, apperrors.InvalidArgumentField("client_id", "client ID is required")
	case req.Type.Normalize() == "":
		return nil, apperrors.InvalidArgumentField("provider_type", "provider type is required")
	}

	var secret string
	if req.ClientSecret != "" {
		if r.Enc == nil {
			return nil, apperrors.Configuration("provider repository has no encryptor")
		}
		enc, err := r.Enc.Encrypt(req.ClientSecret)
		if err != nil {
			return nil, err
		}
		secret = enc
	}
	cfg := req.Config
	if cfg == nil {
		cfg = map[string]any{}
	}

	p, err := pgxutil.QueryOne[domainauth.Provider](ctx, r.DB, `
		INSERT INTO providers (tenant_id, provider_type, name, client_id, client_secret_encrypted, config)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+providerColumns,
		strings.TrimSpace(req.TenantID), string(req.Type.Normalize()), strings.TrimSpace(req.Name),
		strings.TrimSpace(req.ClientID), secret, cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("insert provider: %w", apperrors.MapDBError(err))
	}
	return &p, nil
}

// GetActiveProvider returns the provider only when it belongs to tenantID and is active.
func (r *ProviderRepo) GetActiveProvider(ctx context.Context, tenantID, providerID string) (*domainauth.Provider, error) {
	if _, err := uuid.Parse(providerID); err != nil || strings.TrimSpace(tenantID) == "" {
		return nil, apperrors.NotFound("provider not found")
	}

	p, err := pgxutil.QueryOne[domainauth.Provider](ctx, r.DB,
		`SELECT `+providerColumns+` FROM providers WHERE id = $1 AND tenant_id = $2 AND is_active`,
		providerID, tenantID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("provider not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query provider: %w", apperrors.MapDBError(err))
	}
	return &p, nil
}

// SetActive toggles whether the provider can start or finish verifications.
func (r *ProviderRepo) SetActive(ctx context.Context, providerID string, active bool) error {
	if _, err := uuid.Parse(providerID); err != nil {
		return apperrors.NotFound("provider not found")
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE providers SET is_active = $2, updated_at = now() WHERE id = $1`, providerID, active)
	if err != nil {
		return fmt.Errorf("update provider: %w", apperrors.MapDBError(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("provider not found")
	}
	return nil
}
