package data

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/ports"
	"github.com/javaDevJT/auth-hooker/internal/testutil"
)

var sessionBaseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(p *domainauth.Provider, createdAt time.Time) *domainauth.VerificationSession {
	return &domainauth.VerificationSession{
		ID:             uuid.NewString(),
		TenantID:       p.TenantID,
		ProviderID:     p.ID,
		StateToken:     "state-" + uuid.NewString(),
		CodeVerifier:   "verifier-" + uuid.NewString(),
		Nonce:          "nonce-1",
		PlatformType:   "discord",
		PlatformUserID: "user-42",
		Status:         domainauth.SessionPending,
		ExpiresAt:      createdAt.Add(10 * time.Minute),
		CreatedAt:      createdAt,
	}
}

func TestSessionRepo_CreateAndGetByState(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSessionRepo(db)
		sess := newTestSession(seedProvider(t, db, "tenant-1"), sessionBaseTime)
		require.NoError(t, repo.Create(ctx, sess))

		got, err := repo.GetByState(ctx, sess.StateToken)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		assert.Equal(t, sess.CodeVerifier, got.CodeVerifier)
		assert.Equal(t, domainauth.SessionPending, got.Status)
		assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))
		assert.Empty(t, got.SessionData)
		assert.Nil(t, got.CompletedAt)

		_, err = repo.GetByState(ctx, "missing")
		assert.True(t, apperrors.IsNotFound(err))

		dup := newTestSession(seedProvider(t, db, "tenant-1"), sessionBaseTime)
		dup.StateToken = sess.StateToken
		assert.True(t, apperrors.IsConflict(repo.Create(ctx, dup)))
	})
}

func TestSessionRepo_TransitionIfPending(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSessionRepo(db)
		sess := newTestSession(seedProvider(t, db, "tenant-1"), sessionBaseTime)
		require.NoError(t, repo.Create(ctx, sess))

		at := sessionBaseTime.Add(time.Minute)
		got, err := repo.TransitionIfPending(ctx, sess.ID, ports.TransitionInput{
			Status:      domainauth.SessionCompleted,
			SessionData: map[string]any{"sub": "abc"},
			At:          at,
		})
		require.NoError(t, err)
		assert.Equal(t, domainauth.SessionCompleted, got.Status)
		assert.Equal(t, "abc", got.SessionData["sub"])
		require.NotNil(t, got.CompletedAt)
		assert.True(t, at.Equal(*got.CompletedAt))

		_, err = repo.TransitionIfPending(ctx, sess.ID, ports.TransitionInput{Status: domainauth.SessionFailed, At: at})
		assert.True(t, apperrors.IsInvalidState(err), "got %v", err)

		_, err = repo.TransitionIfPending(ctx, uuid.NewString(), ports.TransitionInput{Status: domainauth.SessionFailed, At: at})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestSessionRepo_TransitionIfPending_SingleWinner(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSessionRepo(db)
		sess := newTestSession(seedProvider(t, db, "tenant-1"), sessionBaseTime)
		require.NoError(t, repo.Create(ctx, sess))

		const racers = 8
		var wg sync.WaitGroup
		errs := make([]error, racers)
		for i := range racers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = repo.TransitionIfPending(ctx, sess.ID, ports.TransitionInput{
					Status: domainauth.SessionCompleted,
					At:     sessionBaseTime,
				})
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.True(t, apperrors.IsInvalidState(err), "got %v", err)
		}
		assert.Equal(t, 1, wins)
	})
}

func TestSessionRepo_Sweep(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSessionRepo(db)
		p := seedProvider(t, db, "tenant-1")

		stale := newTestSession(p, sessionBaseTime.Add(-time.Hour))
		fresh := newTestSession(p, sessionBaseTime)
		done := newTestSession(p, sessionBaseTime.Add(-72*time.Hour))
		for _, s := range []*domainauth.VerificationSession{stale, fresh, done} {
			require.NoError(t, repo.Create(ctx, s))
		}
		_, err := repo.TransitionIfPending(ctx, done.ID, ports.TransitionInput{
			Status: domainauth.SessionFailed,
			At:     sessionBaseTime.Add(-48 * time.Hour),
		})
		require.NoError(t, err)

		n, err := repo.ExpirePendingBefore(ctx, sessionBaseTime)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := repo.GetByState(ctx, stale.StateToken)
		require.NoError(t, err)
		assert.Equal(t, domainauth.SessionExpired, got.Status)

		got, err = repo.GetByState(ctx, fresh.StateToken)
		require.NoError(t, err)
		assert.Equal(t, domainauth.SessionPending, got.Status)

		n, err = repo.DeleteTerminalBefore(ctx, sessionBaseTime.Add(-24*time.Hour), 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = repo.GetByState(ctx, done.StateToken)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
