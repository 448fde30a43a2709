// Package auth contains simple hand-written test doubles for the verification ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionRepository  = (*MemorySessionRepository)(nil)
	_ ports.ProviderLookup     = (*StaticProviderLookup)(nil)
	_ ports.ClaimMappingSource = (*StaticMappingSource)(nil)
)

// MemorySessionRepository is an in-memory session repository for unit tests.
// Transitions are conditional on the pending status under a single lock, like the SQL store.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domainauth.VerificationSession
}

// NewMemorySessionRepository creates a new in-memory session repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]domainauth.VerificationSession)}
}

func (m *MemorySessionRepository) Create(_ context.Context, sess *domainauth.VerificationSession) error {
	if sess == nil || sess.ID == "" {
		return apperrors.InvalidArgument("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.StateToken == sess.StateToken {
			return apperrors.Conflict("state token already exists")
		}
	}
	m.sessions[sess.ID] = *sess
	return nil
}

func (m *MemorySessionRepository) GetByState(_ context.Context, stateToken string) (*domainauth.VerificationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.StateToken == stateToken {
			out := s
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("verification session not found")
}

func (m *MemorySessionRepository) TransitionIfPending(
	_ context.Context,
	id string,
	in ports.TransitionInput,
) (*domainauth.VerificationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("verification session not found")
	}
	if s.Status != domainauth.SessionPending {
		return nil, apperrors.InvalidStatef("verification session is %s", s.Status)
	}
	s.Status = in.Status
	if in.SessionData != nil {
		s.SessionData = in.SessionData
	}
	if in.Status == domainauth.SessionCompleted {
		at := in.At
		s.CompletedAt = &at
	}
	s.UpdatedAt = in.At
	m.sessions[id] = s
	out := s
	return &out, nil
}

func (m *MemorySessionRepository) ExpirePendingBefore(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.Status == domainauth.SessionPending && !s.ExpiresAt.After(now) {
			s.Status = domainauth.SessionExpired
			s.UpdatedAt = now
			m.sessions[id] = s
			n++
		}
	}
	return n, nil
}

func (m *MemorySessionRepository) DeleteTerminalBefore(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if limit > 0 && n >= int64(limit) {
			break
		}
		if s.Status.IsTerminal() && s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Put stores a session as-is, bypassing Create checks.
func (m *MemorySessionRepository) Put(sess domainauth.VerificationSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
}

// Get returns a stored session by ID.
func (m *MemorySessionRepository) Get(id string) (domainauth.VerificationSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len reports the number of stored sessions.
func (m *MemorySessionRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StaticProviderLookup serves providers from a fixed list.
type StaticProviderLookup struct {
	Providers []domainauth.Provider
}

func (s *StaticProviderLookup) GetActiveProvider(_ context.Context, tenantID, providerID string) (*domainauth.Provider, error) {
	for _, p := range s.Providers {
		if p.ID == providerID && p.TenantID == tenantID && p.IsActive {
			out := p
			return &out, nil
		}
	}
	return nil, apperrors.NotFoundf("provider %s not found", providerID)
}

// StaticMappingSource serves active mappings from a fixed list, ordered by priority.
type StaticMappingSource struct {
	Mappings []domainauth.ClaimMapping
	Err      error
}

func (s *StaticMappingSource) ListActiveByProvider(_ context.Context, providerID string) ([]domainauth.ClaimMapping, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []domainauth.ClaimMapping
	for _, m := range s.Mappings {
		if m.ProviderID == providerID && m.IsActive && m.DeletedAt == nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}
