package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/observability/metrics"
	"github.com/javaDevJT/auth-hooker/internal/pkce"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

const (
	// DefaultSessionTTL bounds how long a verification may take from redirect to callback.
	DefaultSessionTTL = 10 * time.Minute
	// DefaultSweepRetention is how long terminal sessions are kept before deletion.
	DefaultSweepRetention = 24 * time.Hour
	// DefaultSweepBatchSize caps rows removed per delete statement.
	DefaultSweepBatchSize = 1000
)

// Sweep step labels used in logs and metrics.
const (
	SweepStepExpirePending  = "expire_pending"
	SweepStepDeleteTerminal = "delete_terminal"
)

// VerificationSessionManagerOptions groups dependencies for VerificationSessionManager.
type VerificationSessionManagerOptions struct {
	Sessions       ports.SessionRepository // Required: session persistence
	Clock          ports.Clock             // Optional: defaults to UTC wall clock
	TTL            time.Duration           // Optional: defaults to DefaultSessionTTL
	SweepRetention time.Duration           // Optional: defaults to DefaultSweepRetention
	SweepBatchSize int                     // Optional: defaults to DefaultSweepBatchSize
	Logger         *slog.Logger            // Optional: structured logger
	Metrics        metrics.Recorder        // Optional: metrics recorder
}

// VerificationSessionManager drives the pending -> {completed, failed, expired} state machine.
// Completion relies on the repository's conditional transition, so concurrent callbacks for
// one state token yield exactly one success.
type VerificationSessionManager struct {
	sessions  ports.SessionRepository
	clock     ports.Clock
	ttl       time.Duration
	retention time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewVerificationSessionManager constructs a new VerificationSessionManager.
func NewVerificationSessionManager(opts VerificationSessionManagerOptions) (*VerificationSessionManager, error) {
	if opts.Sessions == nil {
		return nil, errors.New("SessionRepository is required")
	}

	m := &VerificationSessionManager{
		sessions:  opts.Sessions,
		clock:     opts.Clock,
		ttl:       opts.TTL,
		retention: opts.SweepRetention,
		batchSize: opts.SweepBatchSize,
		logger:    opts.Logger,
		metrics:   metrics.OrNoop(opts.Metrics),
	}
	if m.clock == nil {
		m.clock = systemClock{}
	}
	if m.ttl <= 0 {
		m.ttl = DefaultSessionTTL
	}
	if m.retention <= 0 {
		m.retention = DefaultSweepRetention
	}
	if m.batchSize <= 0 {
		m.batchSize = DefaultSweepBatchSize
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("component", "verification_sessions")
	return m, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// CreateSessionInput groups parameters for CreateSession.
type CreateSessionInput struct {
	TenantID       string
	ProviderID     string
	PlatformType   string
	PlatformUserID string
}

// CreateSession persists a new pending session with a fresh state token, PKCE verifier and nonce.
func (m *VerificationSessionManager) CreateSession(
	ctx context.Context,
	in CreateSessionInput,
) (*domainauth.VerificationSession, error) {
	if strings.TrimSpace(in.TenantID) == "" {
		return nil, apperrors.InvalidArgumentField("tenant_id", "tenant ID is required")
	}
	if strings.TrimSpace(in.ProviderID) == "" {
		return nil, apperrors.InvalidArgumentField("provider_id", "provider ID is required")
	}

	sess, err := m.newSession(in)
	if err != nil {
		m.metrics.SessionTransition(metrics.TransitionCreated, metrics.ResultError, err)
		return nil, err
	}
	if err := m.sessions.Create(ctx, sess); err != nil {
		m.metrics.SessionTransition(metrics.TransitionCreated, metrics.ResultError, err)
		return nil, fmt.Errorf("create verification session: %w", err)
	}

	m.metrics.SessionTransition(metrics.TransitionCreated, metrics.ResultSuccess, nil)
	m.logger.InfoContext(ctx, "verification session created",
		"session_id", sess.ID,
		"tenant_id", sess.TenantID,
		"provider_id", sess.ProviderID,
		"state_prefix", statePrefix(sess.StateToken),
		"expires_at", sess.ExpiresAt,
	)
	return sess, nil
}

func (m *VerificationSessionManager) newSession(in CreateSessionInput) (*domainauth.VerificationSession, error) {
	state, err := pkce.RandomToken()
	if err != nil {
		return nil, fmt.Errorf("generate state token: %w", err)
	}
	verifier, err := pkce.GenerateVerifier()
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}
	nonce, err := pkce.RandomToken()
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	now := m.clock.Now()
	return &domainauth.VerificationSession{
		ID:             uuid.NewString(),
		TenantID:       in.TenantID,
		ProviderID:     in.ProviderID,
		StateToken:     state,
		CodeVerifier:   verifier,
		Nonce:          nonce,
		PlatformType:   in.PlatformType,
		PlatformUserID: in.PlatformUserID,
		Status:         domainauth.SessionPending,
		SessionData:    map[string]any{},
		ExpiresAt:      now.Add(m.ttl),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// GetSessionByState returns the session for a state token, or nil when the token is blank,
// unknown, or past its expiry. Expired records are left for the sweep.
func (m *VerificationSessionManager) GetSessionByState(
	ctx context.Context,
	stateToken string,
) (*domainauth.VerificationSession, error) {
	if strings.TrimSpace(stateToken) == "" {
		return nil, nil
	}
	sess, err := m.sessions.GetByState(ctx, stateToken)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get verification session: %w", err)
	}
	if sess.IsExpiredAt(m.clock.Now()) {
		m.logger.DebugContext(ctx, "verification session expired on lookup",
			"session_id", sess.ID,
			"status", sess.Status,
		)
		return nil, nil
	}
	return sess, nil
}

// CompleteSession moves a live pending session to completed and stores the normalized claims
// as session data. It returns NotFound for unknown or expired tokens and InvalidState once the
// session has left pending.
func (m *VerificationSessionManager) CompleteSession(
	ctx context.Context,
	stateToken string,
	claims *domainauth.NormalizedClaims,
) (*domainauth.VerificationSession, error) {
	sessionData, err := claimsToSessionData(claims)
	if err != nil {
		return nil, err
	}
	return m.transitionLive(ctx, stateToken, domainauth.SessionCompleted, sessionData)
}

// FailSession moves a live pending session to failed, recording reason in the session data.
func (m *VerificationSessionManager) FailSession(
	ctx context.Context,
	stateToken, reason string,
) (*domainauth.VerificationSession, error) {
	return m.transitionLive(ctx, stateToken, domainauth.SessionFailed, map[string]any{"error": reason})
}

// ExpireSession is the administrative expiry. It acts on the stored record regardless of the
// lazy expiry check, so a session already past its TTL can still be expired explicitly.
func (m *VerificationSessionManager) ExpireSession(
	ctx context.Context,
	stateToken string,
) (*domainauth.VerificationSession, error) {
	if strings.TrimSpace(stateToken) == "" {
		return nil, apperrors.InvalidArgumentField("state", "state token is required")
	}
	sess, err := m.sessions.GetByState(ctx, stateToken)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("verification session not found")
		}
		return nil, fmt.Errorf("get verification session: %w", err)
	}
	return m.transition(ctx, sess, domainauth.SessionExpired, nil)
}

func (m *VerificationSessionManager) transitionLive(
	ctx context.Context,
	stateToken string,
	status domainauth.SessionStatus,
	sessionData map[string]any,
) (*domainauth.VerificationSession, error) {
	sess, err := m.GetSessionByState(ctx, stateToken)
	if err != nil {
		m.metrics.SessionTransition(transitionLabel(status), metrics.ResultError, err)
		return nil, err
	}
	if sess == nil {
		err := apperrors.NotFound("verification session not found or expired")
		m.metrics.SessionTransition(transitionLabel(status), metrics.ResultInvalid, err)
		return nil, err
	}
	return m.transition(ctx, sess, status, sessionData)
}

func (m *VerificationSessionManager) transition(
	ctx context.Context,
	sess *domainauth.VerificationSession,
	status domainauth.SessionStatus,
	sessionData map[string]any,
) (*domainauth.VerificationSession, error) {
	label := transitionLabel(status)
	if !sess.IsPending() {
		err := apperrors.InvalidStatef("verification session is already %s", sess.Status)
		m.metrics.SessionTransition(label, metrics.ResultInvalid, err)
		return nil, err
	}

	updated, err := m.sessions.TransitionIfPending(ctx, sess.ID, ports.TransitionInput{
		Status:      status,
		SessionData: sessionData,
		At:          m.clock.Now(),
	})
	if err != nil {
		result := metrics.ResultError
		if apperrors.IsInvalidState(err) {
			result = metrics.ResultInvalid
		}
		m.metrics.SessionTransition(label, result, err)
		if apperrors.IsInvalidState(err) || apperrors.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("transition verification session: %w", err)
	}

	m.metrics.SessionTransition(label, metrics.ResultSuccess, nil)
	m.logger.InfoContext(ctx, "verification session transitioned",
		"session_id", updated.ID,
		"status", updated.Status,
	)
	return updated, nil
}

func transitionLabel(status domainauth.SessionStatus) string {
	switch status {
	case domainauth.SessionCompleted:
		return metrics.TransitionCompleted
	case domainauth.SessionFailed:
		return metrics.TransitionFailed
	case domainauth.SessionExpired:
		return metrics.TransitionExpired
	default:
		return string(status)
	}
}

// claimsToSessionData flattens normalized claims into the JSON object shape stored with the session.
func claimsToSessionData(claims *domainauth.NormalizedClaims) (map[string]any, error) {
	if claims == nil {
		return nil, apperrors.InvalidArgumentField("claims", "normalized claims are required")
	}
	b, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("encode normalized claims: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode normalized claims: %w", err)
	}
	return out, nil
}

// statePrefix returns a log-safe prefix of a state token.
func statePrefix(state string) string {
	if len(state) <= 6 {
		return state
	}
	return state[:6]
}

// SweepResult reports what one cleanup pass did.
type SweepResult struct {
	Expired int64
	Deleted int64
	Elapsed time.Duration
}

// CleanupExpiredSessions flips pending sessions past their expiry to expired and deletes terminal
// sessions older than the retention window in batches. Both steps run even if one fails.
func (m *VerificationSessionManager) CleanupExpiredSessions(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	var (
		res  SweepResult
		errs []error
	)

	steps := []struct {
		name  string
		fn    func(context.Context) (int64, error)
		count *int64
	}{
		{SweepStepExpirePending, m.expirePending, &res.Expired},
		{SweepStepDeleteTerminal, m.deleteTerminal, &res.Deleted},
	}

	for _, step := range steps {
		stepStart := time.Now()
		n, err := step.fn(ctx)
		*step.count = n

		result := metrics.ResultSuccess
		switch {
		case err != nil:
			result = metrics.ResultError
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		case n == 0:
			result = metrics.ResultNoop
		}
		m.metrics.SweepStep(step.name, result, n, time.Since(stepStart))
	}

	res.Elapsed = time.Since(start)
	if res.Expired > 0 || res.Deleted > 0 {
		m.logger.InfoContext(ctx, "verification sessions swept",
			"expired", res.Expired,
			"deleted", res.Deleted,
			"retention", m.retention,
		)
	}
	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}

func (m *VerificationSessionManager) expirePending(ctx context.Context) (int64, error) {
	return m.sessions.ExpirePendingBefore(ctx, m.clock.Now())
}

// deleteTerminal loops until a batch comes back short.
func (m *VerificationSessionManager) deleteTerminal(ctx context.Context) (int64, error) {
	cutoff := m.clock.Now().Add(-m.retention)
	var total int64
	for {
		n, err := m.sessions.DeleteTerminalBefore(ctx, cutoff, m.batchSize)
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(m.batchSize) {
			return total, nil
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}
}
