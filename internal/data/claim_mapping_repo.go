package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/javaDevJT/auth-hooker/internal/data/pgxutil"
	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

const claimMappingColumns = `id, provider_id, name, description, source_path, target_field,
	transform, priority, is_active, created_at, updated_at, deleted_at`

var _ ports.ClaimMappingRepository = (*ClaimMappingRepo)(nil)

// ClaimMappingRepo stores claim mappings. Deletes are soft; deleted rows are invisible to every read.
type ClaimMappingRepo struct {
	DB *sql.DB
}

// NewClaimMappingRepo creates a new ClaimMappingRepo.
func NewClaimMappingRepo(db *sql.DB) *ClaimMappingRepo {
	return &ClaimMappingRepo{DB: db}
}

// Create inserts a mapping. Validation of paths and transforms happens in the service layer.
func (r *ClaimMappingRepo) Create(
	ctx context.Context,
	providerID string,
	req domainauth.ClaimMappingRequest,
) (*domainauth.ClaimMapping, error) {
	if _, err := uuid.Parse(providerID); err != nil {
		return nil, apperrors.NotFound("provider not found")
	}

	transform := domainauth.Transform{}
	if req.Transform != nil {
		transform = *req.Transform
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	m, err := pgxutil.QueryOne[domainauth.ClaimMapping](ctx, r.DB, `
		INSERT INTO claim_mappings (provider_id, name, description, source_path, target_field, transform, priority, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+claimMappingColumns,
		providerID, deref(req.Name), deref(req.Description), deref(req.SourcePath), deref(req.TargetField),
		transform, derefInt(req.Priority), isActive,
	)
	if err != nil {
		return nil, fmt.Errorf("insert claim mapping: %w", apperrors.MapDBError(err))
	}
	return &m, nil
}

// Update applies the non-nil fields of req.
func (r *ClaimMappingRepo) Update(
	ctx context.Context,
	id string,
	req domainauth.ClaimMappingRequest,
) (*domainauth.ClaimMapping, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("claim mapping not found")
	}

	return r.getOne(ctx, `
		UPDATE claim_mappings SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			source_path = COALESCE($4, source_path),
			target_field = COALESCE($5, target_field),
			transform = COALESCE($6::jsonb, transform),
			priority = COALESCE($7, priority),
			is_active = COALESCE($8, is_active),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+claimMappingColumns,
		id, req.Name, req.Description, req.SourcePath, req.TargetField, req.Transform, req.Priority, req.IsActive,
	)
}

// SoftDelete stamps deleted_at. Deleting twice returns NotFound.
func (r *ClaimMappingRepo) SoftDelete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NotFound("claim mapping not found")
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE claim_mappings SET deleted_at = now(), is_active = FALSE, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete claim mapping: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound("claim mapping not found")
	}
	return nil
}

// GetByID returns a live mapping.
func (r *ClaimMappingRepo) GetByID(ctx context.Context, id string) (*domainauth.ClaimMapping, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("claim mapping not found")
	}
	return r.getOne(ctx,
		`SELECT `+claimMappingColumns+` FROM claim_mappings WHERE id = $1 AND deleted_at IS NULL`, id)
}

// ListByProvider returns active and inactive live mappings, highest priority first.
func (r *ClaimMappingRepo) ListByProvider(ctx context.Context, providerID string) ([]domainauth.ClaimMapping, error) {
	return r.list(ctx, providerID, false)
}

// ListActiveByProvider returns the mappings the rule engine applies, highest priority first.
func (r *ClaimMappingRepo) ListActiveByProvider(ctx context.Context, providerID string) ([]domainauth.ClaimMapping, error) {
	return r.list(ctx, providerID, true)
}

func (r *ClaimMappingRepo) list(ctx context.Context, providerID string, activeOnly bool) ([]domainauth.ClaimMapping, error) {
	if _, err := uuid.Parse(providerID); err != nil {
		return []domainauth.ClaimMapping{}, nil
	}
	out, err := pgxutil.QueryAll[domainauth.ClaimMapping](ctx, r.DB, `
		SELECT `+claimMappingColumns+` FROM claim_mappings
		WHERE provider_id = $1 AND deleted_at IS NULL AND (is_active OR NOT $2)
		ORDER BY priority DESC, created_at ASC, id ASC`,
		providerID, activeOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("list claim mappings: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

func (r *ClaimMappingRepo) getOne(ctx context.Context, query string, args ...any) (*domainauth.ClaimMapping, error) {
	m, err := pgxutil.QueryOne[domainauth.ClaimMapping](ctx, r.DB, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("claim mapping not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query claim mapping: %w", apperrors.MapDBError(err))
	}
	return &m, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
