package data

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javaDevJT/auth-hooker/internal/data/cryptoutil"
	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/testutil"
)

func testEncryptor(t *testing.T) *cryptoutil.AESGCMEncryptor {
	t.Helper()
	sum := sha256.Sum256([]byte("authhooker-test-key"))
	enc, err := cryptoutil.NewAESGCMEncryptor(sum[:])
	require.NoError(t, err)
	return enc
}

// seedProvider registers an active Discord provider for tenant.
func seedProvider(t *testing.T, db *sql.DB, tenant string) *domainauth.Provider {
	t.Helper()
	p, err := NewProviderRepo(db, testEncryptor(t)).Create(context.Background(), CreateProviderRequest{
		TenantID:     tenant,
		Type:         domainauth.ProviderDiscord,
		Name:         "discord-" + uuid.NewString()[:8],
		ClientID:     "client-123",
		ClientSecret: "shh",
		Config: map[string]any{
			domainauth.ConfigAuthorizationEndpoint: "https://discord.com/oauth2/authorize",
			domainauth.ConfigTokenEndpoint:         "https://discord.com/api/oauth2/token",
		},
	})
	require.NoError(t, err)
	return p
}

func TestProviderRepo_Create_EncryptsSecret(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		p := seedProvider(t, db, "tenant-1")

		assert.Equal(t, domainauth.ProviderDiscord, p.Type)
		assert.True(t, p.IsActive)
		assert.NotEqual(t, "shh", p.ClientSecretEncrypted)

		plain, err := testEncryptor(t).Decrypt(p.ClientSecretEncrypted)
		require.NoError(t, err)
		assert.Equal(t, "shh", plain)
		assert.Equal(t, "https://discord.com/api/oauth2/token", p.ConfigString(domainauth.ConfigTokenEndpoint))
	})
}

func TestProviderRepo_Create_Validation(t *testing.T) {
	repo := NewProviderRepo(nil, nil)
	_, err := repo.Create(context.Background(), CreateProviderRequest{Name: "x", ClientID: "c", Type: "google"})
	assert.Equal(t, "tenant_id", apperrors.GetField(err))

	_, err = repo.Create(context.Background(), CreateProviderRequest{TenantID: "t", Name: "x", ClientID: "c"})
	assert.Equal(t, "provider_type", apperrors.GetField(err))

	_, err = repo.Create(context.Background(), CreateProviderRequest{
		TenantID: "t", Name: "x", ClientID: "c", Type: "google", ClientSecret: "s",
	})
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestProviderRepo_Create_DuplicateNameConflicts(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewProviderRepo(db, testEncryptor(t))
		req := CreateProviderRequest{TenantID: "tenant-1", Type: "google", Name: "google", ClientID: "c"}
		_, err := repo.Create(context.Background(), req)
		require.NoError(t, err)

		_, err = repo.Create(context.Background(), req)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestProviderRepo_GetActiveProvider(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewProviderRepo(db, testEncryptor(t))
		p := seedProvider(t, db, "tenant-1")

		got, err := repo.GetActiveProvider(ctx, "tenant-1", p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)

		tests := []struct {
			name     string
			tenant   string
			provider string
		}{
			{"other tenant", "tenant-2", p.ID},
			{"unknown id", "tenant-1", uuid.NewString()},
			{"malformed id", "tenant-1", "not-a-uuid"},
			{"blank tenant", "", p.ID},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := repo.GetActiveProvider(ctx, tt.tenant, tt.provider)
				assert.True(t, apperrors.IsNotFound(err), "got %v", err)
			})
		}

		require.NoError(t, repo.SetActive(ctx, p.ID, false))
		_, err = repo.GetActiveProvider(ctx, "tenant-1", p.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
