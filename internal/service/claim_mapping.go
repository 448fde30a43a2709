package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

// ClaimMappingServiceOptions groups dependencies for ClaimMappingService.
type ClaimMappingServiceOptions struct {
	Repo   ports.ClaimMappingRepository // Required: mapping persistence
	Logger *slog.Logger                 // Optional: structured logger
}

// ClaimMappingService administers tenant claim mappings and validates them before storage.
type ClaimMappingService struct {
	repo   ports.ClaimMappingRepository
	logger *slog.Logger
}

// NewClaimMappingService constructs a new ClaimMappingService.
func NewClaimMappingService(opts ClaimMappingServiceOptions) (*ClaimMappingService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ClaimMappingRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimMappingService{repo: opts.Repo, logger: logger.With("component", "claim_mappings")}, nil
}

// Create validates and stores a new mapping. Name, source path and target field are required.
func (s *ClaimMappingService) Create(
	ctx context.Context,
	providerID string,
	req domainauth.ClaimMappingRequest,
) (*domainauth.ClaimMapping, error) {
	if strings.TrimSpace(providerID) == "" {
		return nil, apperrors.InvalidArgumentField("provider_id", "provider ID is required")
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, apperrors.InvalidArgumentField("name", "name is required")
	}
	if req.SourcePath == nil {
		return nil, apperrors.InvalidArgumentField("source_path", "source path cannot be empty")
	}
	if req.TargetField == nil {
		return nil, apperrors.InvalidArgumentField("target_field", "target field cannot be empty")
	}
	if err := validateMappingRequest(req); err != nil {
		return nil, err
	}

	m, err := s.repo.Create(ctx, providerID, req)
	if err != nil {
		return nil, fmt.Errorf("create claim mapping: %w", err)
	}
	s.logger.InfoContext(ctx, "claim mapping created",
		"mapping_id", m.ID,
		"provider_id", providerID,
		"target_field", m.TargetField,
		"priority", m.Priority,
	)
	return m, nil
}

// Update validates and applies the non-nil fields of req.
func (s *ClaimMappingService) Update(
	ctx context.Context,
	id string,
	req domainauth.ClaimMappingRequest,
) (*domainauth.ClaimMapping, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidArgumentField("id", "mapping ID is required")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apperrors.InvalidArgumentField("name", "name cannot be blank")
	}
	if err := validateMappingRequest(req); err != nil {
		return nil, err
	}

	m, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update claim mapping: %w", err)
	}
	return m, nil
}

// Delete soft-deletes a mapping so it stops applying.
func (s *ClaimMappingService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidArgumentField("id", "mapping ID is required")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete claim mapping: %w", err)
	}
	s.logger.InfoContext(ctx, "claim mapping deleted", "mapping_id", id)
	return nil
}

// Get returns a mapping by ID.
func (s *ClaimMappingService) Get(ctx context.Context, id string) (*domainauth.ClaimMapping, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get claim mapping: %w", err)
	}
	return m, nil
}

// List returns every non-deleted mapping of a provider, active or not.
func (s *ClaimMappingService) List(ctx context.Context, providerID string) ([]domainauth.ClaimMapping, error) {
	out, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list claim mappings: %w", err)
	}
	return out, nil
}

func validateMappingRequest(req domainauth.ClaimMappingRequest) error {
	if req.SourcePath != nil {
		if err := ValidateSourcePath(*req.SourcePath); err != nil {
			return err
		}
	}
	if req.TargetField != nil {
		if err := ValidateTargetField(*req.TargetField); err != nil {
			return err
		}
	}
	if req.Transform != nil {
		if err := ValidateTransform(*req.Transform); err != nil {
			return err
		}
	}
	return nil
}
