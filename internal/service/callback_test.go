package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/mocks"
	"github.com/javaDevJT/auth-hooker/internal/pkce"
)

type callbackFixture struct {
	svc       *CallbackService
	sessions  *sessionFixture
	providers *mocks.MockProviderLookup
	oidc      *mocks.MockOIDCClient
	provider  *domainauth.Provider
}

func newCallbackFixture(t *testing.T) *callbackFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &callbackFixture{
		sessions:  newSessionFixture(t),
		providers: mocks.NewMockProviderLookup(ctrl),
		oidc:      mocks.NewMockOIDCClient(ctrl),
		provider: &domainauth.Provider{
			ID:       "provider-1",
			TenantID: "tenant-1",
			Type:     domainauth.ProviderGoogle,
			ClientID: "client",
			IsActive: true,
		},
	}
	svc, err := NewCallbackService(CallbackServiceOptions{
		Sessions:   f.sessions.mgr,
		Providers:  f.providers,
		OIDC:       f.oidc,
		Normalizer: NewClaimsNormalizer(ClaimsNormalizerOptions{}),
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *callbackFixture) expectProvider() {
	f.providers.EXPECT().GetActiveProvider(gomock.Any(), "tenant-1", "provider-1").Return(f.provider, nil)
}

func (f *callbackFixture) expectVerifiedToken(claims map[string]any) {
	f.oidc.EXPECT().ExchangeCode(gomock.Any(), f.provider, "auth-code", gomock.Any()).
		Return(&domainauth.TokenResponse{IDToken: "id.token.sig"}, nil)
	f.oidc.EXPECT().ValidateIDToken(gomock.Any(), f.provider, "id.token.sig").Return(true, nil)
	f.oidc.EXPECT().ExtractClaims("id.token.sig").Return(claims, nil)
}

func (f *callbackFixture) status(t *testing.T, id string) domainauth.SessionStatus {
	t.Helper()
	sess, ok := f.sessions.repo.Get(id)
	require.True(t, ok)
	return sess.Status
}

func TestNewCallbackService_RequiresDependencies(t *testing.T) {
	_, err := NewCallbackService(CallbackServiceOptions{})
	require.Error(t, err)
}

func TestCallbackService_Begin(t *testing.T) {
	f := newCallbackFixture(t)
	f.expectProvider()

	var gotChallenge, gotState, gotNonce string
	f.oidc.EXPECT().
		BuildAuthorizationURL(gomock.Any(), f.provider, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domainauth.Provider, state, challenge, nonce string) (string, error) {
			gotState, gotChallenge, gotNonce = state, challenge, nonce
			return "https://idp.example.com/authorize?state=" + state, nil
		})

	res, err := f.svc.Begin(context.Background(), BeginInput{
		TenantID:       "tenant-1",
		ProviderID:     "provider-1",
		PlatformType:   "discord",
		PlatformUserID: "user-42",
	})
	require.NoError(t, err)

	assert.Equal(t, res.Session.StateToken, gotState)
	assert.Equal(t, res.Session.Nonce, gotNonce)
	assert.True(t, pkce.Verify(res.Session.CodeVerifier, gotChallenge))
	assert.NotContains(t, res.AuthorizationURL, res.Session.CodeVerifier)
	assert.Equal(t, domainauth.SessionPending, res.Session.Status)
}

func TestCallbackService_Begin_UnknownProvider(t *testing.T) {
	f := newCallbackFixture(t)
	f.providers.EXPECT().GetActiveProvider(gomock.Any(), "tenant-1", "missing").
		Return(nil, apperrors.NotFound("provider not found"))

	_, err := f.svc.Begin(context.Background(), BeginInput{TenantID: "tenant-1", ProviderID: "missing"})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Zero(t, f.sessions.repo.Len())
}

func TestCallbackService_HandleCallback_Success(t *testing.T) {
	f := newCallbackFixture(t)
	sess := f.sessions.create(t)
	f.expectProvider()
	f.expectVerifiedToken(map[string]any{
		"sub":   "user-123",
		"email": "user@example.com",
		"name":  "Test User",
		"nonce": sess.Nonce,
	})

	res, err := f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "auth-code"})
	require.NoError(t, err)

	assert.Equal(t, domainauth.SessionCompleted, res.Session.Status)
	assert.Equal(t, "user-123", res.Claims.Subject)
	assert.Equal(t, "example.com", *res.Claims.EmailDomain)
	assert.Equal(t, "user-123", res.Session.SessionData["sub"])
	assert.Equal(t, domainauth.SessionCompleted, f.status(t, sess.ID))
}

func TestCallbackService_HandleCallback_ExchangeUsesSessionVerifier(t *testing.T) {
	f := newCallbackFixture(t)
	sess := f.sessions.create(t)
	f.expectProvider()
	f.oidc.EXPECT().ExchangeCode(gomock.Any(), f.provider, "auth-code", sess.CodeVerifier).
		Return(nil, apperrors.TokenExchangeFailed("token endpoint returned 400"))

	_, err := f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "auth-code"})
	assert.True(t, apperrors.IsTokenExchangeFailed(err))
	assert.Equal(t, domainauth.SessionPending, f.status(t, sess.ID))
}

func TestCallbackService_HandleCallback_DuplicateDoesNotFailInFlightCallback(t *testing.T) {
	f := newCallbackFixture(t)
	sess := f.sessions.create(t)
	f.providers.EXPECT().GetActiveProvider(gomock.Any(), "tenant-1", "provider-1").Return(f.provider, nil).Times(2)

	exchanging := make(chan struct{})
	release := make(chan struct{})
	f.oidc.EXPECT().ExchangeCode(gomock.Any(), f.provider, "auth-code", sess.CodeVerifier).
		DoAndReturn(func(context.Context, *domainauth.Provider, string, string) (*domainauth.TokenResponse, error) {
			close(exchanging)
			<-release
			return &domainauth.TokenResponse{IDToken: "id.token.sig"}, nil
		})
	f.oidc.EXPECT().ExchangeCode(gomock.Any(), f.provider, "dup-code", sess.CodeVerifier).
		Return(nil, apperrors.TokenExchangeFailed("invalid_grant: code already used"))
	f.oidc.EXPECT().ValidateIDToken(gomock.Any(), f.provider, "id.token.sig").Return(true, nil)
	f.oidc.EXPECT().ExtractClaims("id.token.sig").Return(map[string]any{"sub": "user-123", "nonce": sess.Nonce}, nil)

	type outcome struct {
		res *CallbackResult
		err error
	}
	legit := make(chan outcome, 1)
	go func() {
		res, err := f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "auth-code"})
		legit <- outcome{res, err}
	}()

	select {
	case <-exchanging:
	case <-time.After(5 * time.Second):
		t.Fatal("first callback never reached the code exchange")
	}

	_, dupErr := f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "dup-code"})
	assert.True(t, apperrors.IsTokenExchangeFailed(dupErr))
	assert.Equal(t, domainauth.SessionPending, f.status(t, sess.ID))

	close(release)
	got := <-legit
	require.NoError(t, got.err)
	assert.Equal(t, domainauth.SessionCompleted, got.res.Session.Status)
	assert.Equal(t, domainauth.SessionCompleted, f.status(t, sess.ID))
}

func TestCallbackService_HandleCallback_ReplayRejected(t *testing.T) {
	f := newCallbackFixture(t)
	sess := f.sessions.create(t)
	f.expectProvider()
	f.expectVerifiedToken(map[string]any{"sub": "user-123"})

	_, err := f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "auth-code"})
	require.NoError(t, err)

	_, err = f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "auth-code"})
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestCallbackService_HandleCallback_ProviderError(t *testing.T) {
	f := newCallbackFixture(t)
	sess := f.sessions.create(t)

	_, err := f.svc.HandleCallback(context.Background(), CallbackInput{
		State:            sess.StateToken,
		Error:            "access_denied",
		ErrorDescription: "user cancelled",
	})
	require.True(t, apperrors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "access_denied")

	stored, _ := f.sessions.repo.Get(sess.ID)
	assert.Equal(t, domainauth.SessionFailed, stored.Status)
	assert.Equal(t, "access_denied: user cancelled", stored.SessionData["error"])
}

func TestCallbackService_HandleCallback_InvalidToken(t *testing.T) {
	f := newCallbackFixture(t)
	sess := f.sessions.create(t)
	f.expectProvider()
	f.oidc.EXPECT().ExchangeCode(gomock.Any(), f.provider, "auth-code", gomock.Any()).
		Return(&domainauth.TokenResponse{IDToken: "id.token.sig"}, nil)
	f.oidc.EXPECT().ValidateIDToken(gomock.Any(), f.provider, "id.token.sig").Return(false, nil)

	_, err := f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "auth-code"})
	assert.True(t, apperrors.IsInvalidIDToken(err))
	assert.Equal(t, domainauth.SessionFailed, f.status(t, sess.ID))
}

func TestCallbackService_HandleCallback_NonceMismatch(t *testing.T) {
	f := newCallbackFixture(t)
	sess := f.sessions.create(t)
	f.expectProvider()
	f.expectVerifiedToken(map[string]any{"sub": "user-123", "nonce": "someone-elses"})

	_, err := f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "auth-code"})
	assert.True(t, apperrors.IsInvalidIDToken(err))
	assert.Equal(t, domainauth.SessionFailed, f.status(t, sess.ID))
}

func TestCallbackService_HandleCallback_LookupFailures(t *testing.T) {
	f := newCallbackFixture(t)

	_, err := f.svc.HandleCallback(context.Background(), CallbackInput{Code: "auth-code"})
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = f.svc.HandleCallback(context.Background(), CallbackInput{State: "unknown", Code: "auth-code"})
	assert.True(t, apperrors.IsNotFound(err))

	sess := f.sessions.create(t)
	_, err = f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken})
	assert.True(t, apperrors.IsInvalidArgument(err))
	assert.Equal(t, domainauth.SessionPending, f.status(t, sess.ID))

	f.sessions.clock.AddTime(11 * time.Minute)
	_, err = f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "auth-code"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCallbackService_HandleCallback_InactiveProvider(t *testing.T) {
	f := newCallbackFixture(t)
	sess := f.sessions.create(t)
	f.providers.EXPECT().GetActiveProvider(gomock.Any(), "tenant-1", "provider-1").
		Return(nil, apperrors.NotFound("provider not found"))

	_, err := f.svc.HandleCallback(context.Background(), CallbackInput{State: sess.StateToken, Code: "auth-code"})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, domainauth.SessionFailed, f.status(t, sess.ID))
}
