package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/javaDevJT/auth-hooker/internal/data/pgxutil"
	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

// Advisory lock namespace for sweep operations, taken with pg_try_advisory_xact_lock(major, minor)
// so concurrent sweepers skip rather than contend.
const (
	advisoryLockSweepMajor         = 2000
	advisoryLockSweepExpirePending = 1
	advisoryLockSweepDeleteOld     = 2
)

const sessionColumns = `id, tenant_id, provider_id, state_token, code_verifier, nonce,
	platform_type, platform_user_id, status, session_data, expires_at, completed_at,
	created_at, updated_at`

var _ ports.SessionRepository = (*SessionRepo)(nil)

// SessionRepo persists verification sessions in Postgres.
type SessionRepo struct {
	DB *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db}
}

// Create inserts a new session. A duplicate state token maps to Conflict.
func (r *SessionRepo) Create(ctx context.Context, sess *domainauth.VerificationSession) error {
	if sess == nil || sess.ID == "" {
		return apperrors.InvalidArgument("session ID cannot be empty")
	}
	data := sess.SessionData
	if data == nil {
		data = map[string]any{}
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO verification_sessions (
			id, tenant_id, provider_id, state_token, code_verifier, nonce,
			platform_type, platform_user_id, status, session_data, expires_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		sess.ID, sess.TenantID, sess.ProviderID, sess.StateToken, sess.CodeVerifier, sess.Nonce,
		sess.PlatformType, sess.PlatformUserID, string(sess.Status), data, sess.ExpiresAt.UTC(),
		sess.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert verification session: %w", apperrors.MapDBError(err))
	}
	return nil
}

// GetByState returns the session for a state token, or NotFound.
func (r *SessionRepo) GetByState(ctx context.Context, stateToken string) (*domainauth.VerificationSession, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM verification_sessions WHERE state_token = $1`, stateToken)
}

// TransitionIfPending updates the row only while its status is still pending, so at most one
// concurrent caller gets a row back.
func (r *SessionRepo) TransitionIfPending(
	ctx context.Context,
	id string,
	in ports.TransitionInput,
) (*domainauth.VerificationSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("verification session not found")
	}

	var data any
	if in.SessionData != nil {
		data = in.SessionData
	}

	sess, err := r.getOne(ctx, `
		UPDATE verification_sessions
		SET status = $2,
			session_data = COALESCE($3::jsonb, session_data),
			completed_at = CASE WHEN $2 = 'completed' THEN $4 ELSE completed_at END,
			updated_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING `+sessionColumns,
		id, string(in.Status), data, in.At.UTC(),
	)
	if err == nil {
		return sess, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	// No row updated: distinguish a missing session from one that already left pending.
	var status string
	scanErr := r.DB.QueryRowContext(ctx, `SELECT status FROM verification_sessions WHERE id = $1`, id).Scan(&status)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return nil, apperrors.NotFound("verification session not found")
	}
	if scanErr != nil {
		return nil, fmt.Errorf("load verification session status: %w", apperrors.MapDBError(scanErr))
	}
	return nil, apperrors.InvalidStatef("verification session is %s", status)
}

// ExpirePendingBefore marks pending sessions with expires_at <= now as expired.
// Returns 0 without touching rows when another sweeper holds the lock.
func (r *SessionRepo) ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error) {
	return r.sweep(ctx, advisoryLockSweepExpirePending, `
		UPDATE verification_sessions
		SET status = 'expired', updated_at = $1
		WHERE status = 'pending' AND expires_at <= $1`,
		now.UTC(),
	)
}

// DeleteTerminalBefore removes up to limit terminal sessions last updated before cutoff.
func (r *SessionRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	return r.sweep(ctx, advisoryLockSweepDeleteOld, `
		DELETE FROM verification_sessions
		WHERE id IN (
			SELECT id FROM verification_sessions
			WHERE status <> 'pending' AND updated_at < $1
			ORDER BY updated_at
			LIMIT $2
		)`,
		cutoff.UTC(), limit,
	)
}

func (r *SessionRepo) sweep(ctx context.Context, lockMinor int, query string, args ...any) (int64, error) {
	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var locked bool
			if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1, $2)", advisoryLockSweepMajor, lockMinor).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock: %w", err)
			}
			if !locked {
				return nil
			}

			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}
			ra, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			rowsAffected = ra
			return nil
		},
	})
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return rowsAffected, nil
}

func (r *SessionRepo) getOne(ctx context.Context, query string, args ...any) (*domainauth.VerificationSession, error) {
	s, err := pgxutil.QueryOne[domainauth.VerificationSession](ctx, r.DB, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("verification session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("query verification session: %w", apperrors.MapDBError(err))
	}
	return &s, nil
}
