package pkce

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestGenerateVerifier(t *testing.T) {
	t.Parallel()

	v, err := GenerateVerifier()
	require.NoError(t, err)
	assert.Len(t, v, 43)
	assert.Regexp(t, urlSafe, v)
}

func TestGenerateVerifier_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		v, err := GenerateVerifier()
		require.NoError(t, err)
		_, dup := seen[v]
		require.False(t, dup, "collision after %d verifiers", i)
		seen[v] = struct{}{}
	}
}

func TestChallengeFromVerifier(t *testing.T) {
	t.Parallel()

	// RFC 7636 appendix B.
	got, err := ChallengeFromVerifier("dBjftJeZ4CVP-mJ92K27uhbUJU1p1r_wW1gFWFOEjXk")
	require.NoError(t, err)
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", got)
	assert.Len(t, got, 43)

	again, err := ChallengeFromVerifier("dBjftJeZ4CVP-mJ92K27uhbUJU1p1r_wW1gFWFOEjXk")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestChallengeFromVerifier_Blank(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   "} {
		_, err := ChallengeFromVerifier(in)
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidArgument(err))
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	v, err := GenerateVerifier()
	require.NoError(t, err)
	c, err := ChallengeFromVerifier(v)
	require.NoError(t, err)
	other, err := ChallengeFromVerifier("another-verifier-value-that-is-long-enough-xx")
	require.NoError(t, err)

	tests := []struct {
		name      string
		verifier  string
		challenge string
		want      bool
	}{
		{"matching pair", v, c, true},
		{"wrong verifier", v + "x", c, false},
		{"challenge of another verifier", v, other, false},
		{"blank verifier", "", c, false},
		{"blank challenge", v, "", false},
		{"whitespace challenge", v, "  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Verify(tt.verifier, tt.challenge))
		})
	}
}

func TestRandomToken(t *testing.T) {
	t.Parallel()

	a, err := RandomToken()
	require.NoError(t, err)
	b, err := RandomToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, urlSafe, a)
}
