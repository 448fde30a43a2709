// Package mocks provides mock implementations of the verification core ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the interfaces in
// internal/ports. The mocks are generated using go:generate directives and provide a fluent API for
// setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockSessionRepository(ctrl)
//	repo.EXPECT().GetByState(gomock.Any(), "state").Return(sess, nil)
package mocks

// SessionRepository: Create, GetByState, TransitionIfPending, ExpirePendingBefore, DeleteTerminalBefore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_repository_mock.go github.com/javaDevJT/auth-hooker/internal/ports SessionRepository

// ProviderLookup: GetActiveProvider
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=provider_lookup_mock.go github.com/javaDevJT/auth-hooker/internal/ports ProviderLookup

// ClaimMappingSource: ListActiveByProvider
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=claim_mapping_source_mock.go github.com/javaDevJT/auth-hooker/internal/ports ClaimMappingSource

// ClaimMappingRepository: Create, Update, SoftDelete, GetByID, ListByProvider, ListActiveByProvider
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=claim_mapping_repository_mock.go github.com/javaDevJT/auth-hooker/internal/ports ClaimMappingRepository

// OIDCClient: BuildAuthorizationURL, ExchangeCode, ValidateIDToken, ExtractClaims
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=oidc_client_mock.go github.com/javaDevJT/auth-hooker/internal/ports OIDCClient
