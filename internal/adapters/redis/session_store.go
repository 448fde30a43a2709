// Package redis provides a Redis-backed verification session repository.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "verification_session:"

// maxWatchRetries bounds optimistic-lock retries for a single transition.
const maxWatchRetries = 5

var _ ports.SessionRepository = (*SessionStore)(nil)

// getter is satisfied by both the client and a WATCH transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SessionStore keeps verification sessions in Redis.
//
// Key layout under prefix:
//
//	id:<id>        session JSON
//	state:<token>  session id
//	pending        zset of pending ids scored by expires_at (unix ms)
//	terminal       zset of terminal ids scored by updated_at (unix ms)
//
// Keys carry a TTL of the session lifetime plus Retention so abandoned
// sessions disappear even when no sweeper runs.
type SessionStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Prefix    string
	Retention time.Duration
}

// NewSessionStore creates a Redis-based session store.
func NewSessionStore(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Retention <= 0 {
		opts.Retention = 24 * time.Hour
	}
	return &SessionStore{client: client, prefix: opts.Prefix, retention: opts.Retention}
}

func (s *SessionStore) idKey(id string) string       { return s.prefix + "id:" + id }
func (s *SessionStore) stateKey(token string) string { return s.prefix + "state:" + token }
func (s *SessionStore) pendingKey() string           { return s.prefix + "pending" }
func (s *SessionStore) terminalKey() string          { return s.prefix + "terminal" }

func (s *SessionStore) keyTTL(sess *domainauth.VerificationSession) time.Duration {
	lifetime := sess.ExpiresAt.Sub(sess.CreatedAt)
	if lifetime < 0 {
		lifetime = 0
	}
	return lifetime + s.retention
}

// Create stores a new session. A reused state token returns Conflict.
func (s *SessionStore) Create(ctx context.Context, sess *domainauth.VerificationSession) error {
	if sess == nil || sess.ID == "" {
		return apperrors.InvalidArgument("session ID cannot be empty")
	}
	if sess.StateToken == "" {
		return apperrors.InvalidArgumentField("state_token", "state token cannot be empty")
	}

	stored := *sess
	if stored.SessionData == nil {
		stored.SessionData = map[string]any{}
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := s.keyTTL(&stored)
	ok, err := s.client.SetNX(ctx, s.stateKey(stored.StateToken), stored.ID, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return &apperrors.AppError{Code: apperrors.ErrCodeConflict, Message: "state token already exists", Field: "state_token"}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.idKey(stored.ID), data, ttl)
		pipe.ZAdd(ctx, s.pendingKey(), redis.Z{Score: unixMillis(stored.ExpiresAt), Member: stored.ID})
		return nil
	})
	if err != nil {
		// Release the state token reserved by SetNX.
		if delErr := s.client.Del(context.WithoutCancel(ctx), s.stateKey(stored.StateToken)).Err(); delErr != nil {
			err = errors.Join(err, fmt.Errorf("release state token: %w", delErr))
		}
		return fmt.Errorf("redis store session: %w", err)
	}
	return nil
}

// GetByState resolves the state token index and loads the session.
func (s *SessionStore) GetByState(ctx context.Context, stateToken string) (*domainauth.VerificationSession, error) {
	if stateToken == "" {
		return nil, apperrors.NotFound("verification session not found")
	}
	id, err := s.client.Get(ctx, s.stateKey(stateToken)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NotFound("verification session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return s.load(ctx, s.client, id)
}

// TransitionIfPending applies the transition under WATCH so only one concurrent caller commits.
func (s *SessionStore) TransitionIfPending(
	ctx context.Context,
	id string,
	in ports.TransitionInput,
) (*domainauth.VerificationSession, error) {
	key := s.idKey(id)
	var out *domainauth.VerificationSession

	txf := func(tx *redis.Tx) error {
		sess, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if !sess.IsPending() {
			return apperrors.InvalidStatef("verification session is %s", sess.Status)
		}

		sess.Status = in.Status
		if in.SessionData != nil {
			sess.SessionData = in.SessionData
		}
		at := in.At.UTC()
		if in.Status == domainauth.SessionCompleted {
			sess.CompletedAt = &at
		}
		sess.UpdatedAt = at

		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, data, redis.SetArgs{KeepTTL: true})
			pipe.ZRem(ctx, s.pendingKey(), id)
			pipe.ZAdd(ctx, s.terminalKey(), redis.Z{Score: unixMillis(at), Member: id})
			return nil
		})
		if err != nil {
			return err
		}
		out = sess
		return nil
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, apperrors.InvalidState("verification session changed concurrently")
}

// ExpirePendingBefore transitions pending sessions whose expiry is at or before now.
func (s *SessionStore) ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.pendingKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zrangebyscore: %w", err)
	}

	var n int64
	for _, id := range ids {
		_, err := s.TransitionIfPending(ctx, id, ports.TransitionInput{Status: domainauth.SessionExpired, At: now})
		switch {
		case err == nil:
			n++
		case apperrors.IsNotFound(err):
			// evicted by TTL; drop the dangling index entry
			if zerr := s.client.ZRem(ctx, s.pendingKey(), id).Err(); zerr != nil {
				return n, fmt.Errorf("redis zrem: %w", zerr)
			}
		case apperrors.IsInvalidState(err):
			// completed or failed between the range read and the transition
		default:
			return n, err
		}
	}
	return n, nil
}

// DeleteTerminalBefore removes up to limit terminal sessions last updated strictly before cutoff.
func (s *SessionStore) DeleteTerminalBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.terminalKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zrangebyscore: %w", err)
	}

	var n int64
	for _, id := range ids {
		sess, err := s.load(ctx, s.client, id)
		if err != nil && !apperrors.IsNotFound(err) {
			return n, err
		}
		_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZRem(ctx, s.terminalKey(), id)
			if sess != nil {
				pipe.Del(ctx, s.idKey(id), s.stateKey(sess.StateToken))
			}
			return nil
		})
		if err != nil {
			return n, fmt.Errorf("redis delete session: %w", err)
		}
		if sess != nil {
			n++
		}
	}
	return n, nil
}

func (s *SessionStore) load(ctx context.Context, c getter, id string) (*domainauth.VerificationSession, error) {
	raw, err := c.Get(ctx, s.idKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NotFound("verification session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var sess domainauth.VerificationSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func unixMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}
