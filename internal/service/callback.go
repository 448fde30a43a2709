package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/pkce"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

// CallbackServiceOptions groups dependencies for CallbackService.
type CallbackServiceOptions struct {
	Sessions   *VerificationSessionManager // Required: session state machine
	Providers  ports.ProviderLookup        // Required: tenant-scoped provider lookup
	OIDC       ports.OIDCClient            // Required: protocol client
	Normalizer *ClaimsNormalizer           // Required: claim normalization
	Logger     *slog.Logger                // Optional: structured logger
}

// CallbackService runs a verification from authorization redirect to completed session.
type CallbackService struct {
	sessions   *VerificationSessionManager
	providers  ports.ProviderLookup
	oidc       ports.OIDCClient
	normalizer *ClaimsNormalizer
	logger     *slog.Logger
}

// NewCallbackService constructs a new CallbackService.
func NewCallbackService(opts CallbackServiceOptions) (*CallbackService, error) {
	switch {
	case opts.Sessions == nil:
		return nil, errors.New("VerificationSessionManager is required")
	case opts.Providers == nil:
		return nil, errors.New("ProviderLookup is required")
	case opts.OIDC == nil:
		return nil, errors.New("OIDCClient is required")
	case opts.Normalizer == nil:
		return nil, errors.New("ClaimsNormalizer is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CallbackService{
		sessions:   opts.Sessions,
		providers:  opts.Providers,
		oidc:       opts.OIDC,
		normalizer: opts.Normalizer,
		logger:     logger.With("component", "callback_service"),
	}, nil
}

// BeginInput groups parameters for starting a verification.
type BeginInput struct {
	TenantID       string
	ProviderID     string
	PlatformType   string
	PlatformUserID string
}

// BeginResult carries the redirect target and the session backing it.
type BeginResult struct {
	AuthorizationURL string
	Session          *domainauth.VerificationSession
}

// Begin creates a pending session for an active provider and builds its authorization URL.
func (s *CallbackService) Begin(ctx context.Context, in BeginInput) (*BeginResult, error) {
	provider, err := s.providers.GetActiveProvider(ctx, in.TenantID, in.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("resolve provider: %w", err)
	}

	sess, err := s.sessions.CreateSession(ctx, CreateSessionInput(in))
	if err != nil {
		return nil, err
	}

	challenge, err := pkce.ChallengeFromVerifier(sess.CodeVerifier)
	if err != nil {
		return nil, err
	}
	authURL, err := s.oidc.BuildAuthorizationURL(ctx, provider, sess.StateToken, challenge, sess.Nonce)
	if err != nil {
		return nil, fmt.Errorf("build authorization url: %w", err)
	}

	return &BeginResult{AuthorizationURL: authURL, Session: sess}, nil
}

// CallbackInput carries the query parameters of the provider redirect.
type CallbackInput struct {
	State            string
	Code             string
	Error            string
	ErrorDescription string
}

// CallbackResult is a completed verification.
type CallbackResult struct {
	Session *domainauth.VerificationSession
	Claims  *domainauth.NormalizedClaims
}

// HandleCallback resolves the session by state, exchanges the code, verifies the ID token and
// completes the session with normalized claims. Upstream errors and verification failures mark
// the session failed. A failed code exchange leaves it pending. A replayed callback returns InvalidState.
func (s *CallbackService) HandleCallback(ctx context.Context, in CallbackInput) (*CallbackResult, error) {
	if strings.TrimSpace(in.State) == "" {
		return nil, apperrors.InvalidArgumentField("state", "state parameter is required")
	}

	sess, err := s.sessions.GetSessionByState(ctx, in.State)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperrors.NotFound("verification session not found or expired")
	}
	if !sess.IsPending() {
		return nil, apperrors.InvalidStatef("verification session is already %s", sess.Status)
	}

	logger := s.logger.With("session_id", sess.ID, "tenant_id", sess.TenantID, "provider_id", sess.ProviderID)

	if in.Error != "" {
		reason := in.Error
		if in.ErrorDescription != "" {
			reason += ": " + in.ErrorDescription
		}
		s.fail(ctx, logger, in.State, reason)
		return nil, apperrors.InvalidArgumentField("error", "identity provider returned "+in.Error)
	}
	if strings.TrimSpace(in.Code) == "" {
		return nil, apperrors.InvalidArgumentField("code", "authorization code is required")
	}

	provider, err := s.providers.GetActiveProvider(ctx, sess.TenantID, sess.ProviderID)
	if err != nil {
		s.fail(ctx, logger, in.State, "provider unavailable")
		return nil, fmt.Errorf("resolve provider: %w", err)
	}

	tokens, err := s.oidc.ExchangeCode(ctx, provider, in.Code, sess.CodeVerifier)
	if err != nil {
		// A rejected code may come from a duplicate callback racing the one that holds the
		// valid code, so the session stays pending.
		logger.WarnContext(ctx, "code exchange failed", "error", err)
		return nil, err
	}

	raw, err := s.verify(ctx, provider, sess, tokens.IDToken)
	if err != nil {
		s.fail(ctx, logger, in.State, string(failureReason(err)))
		return nil, err
	}

	claims, err := s.normalizer.Normalize(ctx, raw, provider)
	if err != nil {
		s.fail(ctx, logger, in.State, string(failureReason(err)))
		return nil, fmt.Errorf("normalize claims: %w", err)
	}

	completed, err := s.sessions.CompleteSession(ctx, in.State, claims)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "verification completed", "subject", claims.Subject)
	return &CallbackResult{Session: completed, Claims: claims}, nil
}

// verify returns the raw claims of a verified ID token.
func (s *CallbackService) verify(
	ctx context.Context,
	provider *domainauth.Provider,
	sess *domainauth.VerificationSession,
	idToken string,
) (map[string]any, error) {
	ok, err := s.oidc.ValidateIDToken(ctx, provider, idToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.InvalidIDToken("id token failed verification")
	}

	raw, err := s.oidc.ExtractClaims(idToken)
	if err != nil {
		return nil, err
	}

	// A token without a nonce claim is accepted.
	if nonce, present := raw["nonce"]; present && sess.Nonce != "" {
		if str, _ := nonce.(string); str != sess.Nonce {
			return nil, apperrors.InvalidIDToken("id token nonce does not match session")
		}
	}
	return raw, nil
}

func (s *CallbackService) fail(ctx context.Context, logger *slog.Logger, state, reason string) {
	if _, err := s.sessions.FailSession(ctx, state, reason); err != nil {
		logger.WarnContext(ctx, "failed to mark verification session failed", "error", err)
		return
	}
	logger.WarnContext(ctx, "verification failed", "reason", reason)
}

// failureReason reduces an error to its code so upstream messages never land in session data.
func failureReason(err error) apperrors.ErrorCode {
	if code := apperrors.GetCode(err); code != "" {
		return code
	}
	return apperrors.ErrCodeInternal
}
