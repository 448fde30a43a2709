package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
)

func testProvider(typ domainauth.ProviderType) *domainauth.Provider {
	return &domainauth.Provider{ID: "p1", TenantID: "t1", Type: typ, ClientID: "client", IsActive: true}
}

func TestClaimsNormalizer_StandardClaims(t *testing.T) {
	n := NewClaimsNormalizer(ClaimsNormalizerOptions{})
	raw := map[string]any{
		"sub":            "user-123",
		"email":          "John.Doe@mail.example.co.uk",
		"email_verified": true,
		"given_name":     "John",
		"family_name":    "Doe",
		"picture":        "https://img.example.com/john.png",
		"locale":         "en-GB",
		"groups":         []any{"admins", "devs"},
	}

	got, err := n.Normalize(context.Background(), raw, testProvider(domainauth.ProviderGoogle))
	require.NoError(t, err)

	assert.Equal(t, "user-123", got.Subject)
	require.NotNil(t, got.Email)
	assert.Equal(t, "John.Doe@mail.example.co.uk", *got.Email)
	require.NotNil(t, got.EmailDomain)
	assert.Equal(t, "mail.example.co.uk", *got.EmailDomain)
	require.NotNil(t, got.EmailOrgDomain)
	assert.Equal(t, "example.co.uk", *got.EmailOrgDomain)
	require.NotNil(t, got.Name)
	assert.Equal(t, "John Doe", *got.Name)
	assert.Equal(t, "https://img.example.com/john.png", *got.AvatarURL)
	require.NotNil(t, got.EmailVerified)
	assert.True(t, *got.EmailVerified)
	assert.Equal(t, "en-GB", *got.Locale)
	assert.Equal(t, []string{"admins", "devs"}, got.Groups)
	assert.Equal(t, raw, got.RawClaims)
	assert.Equal(t, raw, got.MappedClaims)
}

func TestClaimsNormalizer_NameFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		provider domainauth.ProviderType
		claims   map[string]any
		want     *string
	}{
		{"name wins", domainauth.ProviderGoogle, map[string]any{"name": "Display", "given_name": "G"}, strPtr("Display")},
		{"given only", domainauth.ProviderGoogle, map[string]any{"given_name": "G"}, strPtr("G")},
		{"family only", domainauth.ProviderGoogle, map[string]any{"family_name": "F"}, strPtr("F")},
		{"github login", domainauth.ProviderGitHub, map[string]any{"login": "octocat"}, strPtr("octocat")},
		{"login ignored outside github", domainauth.ProviderGoogle, map[string]any{"login": "octocat"}, nil},
		{"nothing", domainauth.ProviderCustom, map[string]any{}, nil},
	}

	n := NewClaimsNormalizer(ClaimsNormalizerOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := map[string]any{"sub": "s"}
			for k, v := range tt.claims {
				claims[k] = v
			}
			got, err := n.Normalize(context.Background(), claims, testProvider(tt.provider))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestClaimsNormalizer_GitHub(t *testing.T) {
	n := NewClaimsNormalizer(ClaimsNormalizerOptions{})

	got, err := n.Normalize(context.Background(), map[string]any{
		"id":         json.Number("583231"),
		"login":      "octocat",
		"email":      "octocat@github.com",
		"avatar_url": "https://avatars.githubusercontent.com/u/583231",
	}, testProvider(domainauth.ProviderGitHub))
	require.NoError(t, err)

	assert.Equal(t, "583231", got.Subject)
	assert.Equal(t, "octocat", *got.Name)
	assert.Equal(t, "https://avatars.githubusercontent.com/u/583231", *got.AvatarURL)
	require.NotNil(t, got.EmailVerified)
	assert.True(t, *got.EmailVerified)

	got, err = n.Normalize(context.Background(), map[string]any{"id": float64(42)}, testProvider("GitHub"))
	require.NoError(t, err)
	assert.Equal(t, "42", got.Subject)
	require.NotNil(t, got.EmailVerified)
	assert.False(t, *got.EmailVerified)
}

func TestClaimsNormalizer_EmailVerified(t *testing.T) {
	n := NewClaimsNormalizer(ClaimsNormalizerOptions{})

	got, err := n.Normalize(context.Background(), map[string]any{"sub": "s", "email_verified": "true"}, testProvider(domainauth.ProviderCustom))
	require.NoError(t, err)
	require.NotNil(t, got.EmailVerified)
	assert.True(t, *got.EmailVerified)

	got, err = n.Normalize(context.Background(), map[string]any{"sub": "s", "email": "a@b.com"}, testProvider(domainauth.ProviderGoogle))
	require.NoError(t, err)
	assert.Nil(t, got.EmailVerified)
}

func TestClaimsNormalizer_GroupUnion(t *testing.T) {
	tests := []struct {
		name     string
		provider domainauth.ProviderType
		claims   map[string]any
		want     []string
	}{
		{
			name:     "azure roles unioned",
			provider: domainauth.ProviderAzureAD,
			claims:   map[string]any{"groups": []any{"g1", "shared"}, "roles": []any{"shared", "r1"}},
			want:     []string{"g1", "shared", "r1"},
		},
		{
			name:     "microsoft roles without groups",
			provider: domainauth.ProviderMicrosoft,
			claims:   map[string]any{"roles": []string{"Reader"}},
			want:     []string{"Reader"},
		},
		{
			name:     "discord roles",
			provider: domainauth.ProviderDiscord,
			claims:   map[string]any{"discord_roles": []any{json.Number("1001"), "mod"}},
			want:     []string{"1001", "mod"},
		},
		{
			name:     "roles ignored for google",
			provider: domainauth.ProviderGoogle,
			claims:   map[string]any{"roles": []any{"r1"}},
			want:     []string{},
		},
		{
			name:     "non list groups ignored",
			provider: domainauth.ProviderCustom,
			claims:   map[string]any{"groups": "admins"},
			want:     []string{},
		},
	}

	n := NewClaimsNormalizer(ClaimsNormalizerOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := map[string]any{"sub": "s"}
			for k, v := range tt.claims {
				claims[k] = v
			}
			got, err := n.Normalize(context.Background(), claims, testProvider(tt.provider))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Groups)
		})
	}
}

func TestClaimsNormalizer_DiscordAvatar(t *testing.T) {
	n := NewClaimsNormalizer(ClaimsNormalizerOptions{})
	got, err := n.Normalize(context.Background(), map[string]any{"sub": "s", "avatar": "abc123"}, testProvider(domainauth.ProviderDiscord))
	require.NoError(t, err)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, "abc123", *got.AvatarURL)
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email *string
		want  *string
	}{
		{strPtr("a@example.com"), strPtr("example.com")},
		{strPtr("a@b@example.com"), strPtr("b@example.com")},
		{strPtr("no-at-sign"), nil},
		{strPtr("trailing@"), nil},
		{strPtr("  "), nil},
		{nil, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EmailDomain(tt.email))
	}
}

func TestClaimsNormalizer_AppliesRules(t *testing.T) {
	engine := newRuleEngine(t,
		mapping("m1", "upn", "email", 10, domainauth.Transform{ToLowerCase: true}),
		mapping("m2", "$.org.team", "custom.team", 5, domainauth.Transform{}),
	)
	n := NewClaimsNormalizer(ClaimsNormalizerOptions{Rules: engine})

	raw := map[string]any{
		"sub": "s",
		"upn": "Jane@Contoso.COM",
		"org": map[string]any{"team": "blue"},
	}
	got, err := n.Normalize(context.Background(), raw, testProvider(domainauth.ProviderAzure))
	require.NoError(t, err)

	require.NotNil(t, got.Email)
	assert.Equal(t, "jane@contoso.com", *got.Email)
	assert.Equal(t, "contoso.com", *got.EmailDomain)
	assert.Equal(t, map[string]any{"team": "blue"}, got.MappedClaims["custom"])
	assert.NotContains(t, got.RawClaims, "email")
	assert.NotContains(t, got.RawClaims, "custom")
}

type failingRules struct{ err error }

func (f failingRules) ApplyAll(context.Context, map[string]any, string) (map[string]any, error) {
	return nil, f.err
}

func TestClaimsNormalizer_Errors(t *testing.T) {
	n := NewClaimsNormalizer(ClaimsNormalizerOptions{})

	_, err := n.Normalize(context.Background(), nil, testProvider(domainauth.ProviderGoogle))
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = n.Normalize(context.Background(), map[string]any{"sub": "s"}, nil)
	assert.True(t, apperrors.IsInvalidArgument(err))

	boom := errors.New("mappings unavailable")
	n = NewClaimsNormalizer(ClaimsNormalizerOptions{Rules: failingRules{err: boom}})
	_, err = n.Normalize(context.Background(), map[string]any{"sub": "s"}, testProvider(domainauth.ProviderGoogle))
	assert.ErrorIs(t, err, boom)
}
