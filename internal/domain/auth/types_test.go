package auth

import (
	"testing"
	"time"
)

func TestSessionStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status SessionStatus
		want   bool
	}{
		{SessionPending, false},
		{SessionCompleted, true},
		{SessionFailed, true},
		{SessionExpired, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestVerificationSession_IsExpiredAt(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := VerificationSession{Status: SessionPending, ExpiresAt: now.Add(10 * time.Minute)}

	if s.IsExpiredAt(now) {
		t.Fatalf("fresh session reported expired")
	}
	if !s.IsExpiredAt(now.Add(10 * time.Minute)) {
		t.Fatalf("session at expiry instant should be expired")
	}
	if !s.IsPending() {
		t.Fatalf("expected pending")
	}
}

func TestProvider_Scopes(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
		want string
	}{
		{"nil config", nil, ""},
		{"string", map[string]any{ConfigScopes: " openid email "}, "openid email"},
		{"string slice", map[string]any{ConfigScopes: []string{"openid", "profile"}}, "openid profile"},
		{"any slice", map[string]any{ConfigScopes: []any{"openid", 3, "groups"}}, "openid groups"},
		{"wrong type", map[string]any{ConfigScopes: 42}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Provider{Config: tt.cfg}
			if got := p.Scopes(); got != tt.want {
				t.Errorf("Scopes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProvider_AdditionalAuthParams(t *testing.T) {
	p := &Provider{Config: map[string]any{
		ConfigAdditionalAuthParams: map[string]any{"prompt": "consent", "max_age": 30},
	}}
	got := p.AdditionalAuthParams()
	if len(got) != 1 || got["prompt"] != "consent" {
		t.Fatalf("AdditionalAuthParams() = %v", got)
	}
	if (&Provider{}).AdditionalAuthParams() != nil {
		t.Fatalf("expected nil for empty config")
	}
}

func TestProvider_ConfigString(t *testing.T) {
	p := &Provider{Config: map[string]any{ConfigIssuer: " https://issuer ", ConfigJWKSURI: 7}}
	if got := p.ConfigString(ConfigIssuer); got != "https://issuer" {
		t.Errorf("ConfigString(issuer) = %q", got)
	}
	if got := p.ConfigString(ConfigJWKSURI); got != "" {
		t.Errorf("ConfigString(jwks_uri) = %q, want empty", got)
	}
	var nilProvider *Provider
	if got := nilProvider.ConfigString(ConfigIssuer); got != "" {
		t.Errorf("nil provider ConfigString = %q", got)
	}
}

func TestProviderType_Normalize(t *testing.T) {
	if got := ProviderType(" GitHub ").Normalize(); got != ProviderGitHub {
		t.Errorf("Normalize() = %q", got)
	}
}

func TestTransform_IsZero(t *testing.T) {
	if !(Transform{}).IsZero() {
		t.Fatal("empty transform should be zero")
	}
	if (Transform{Trim: true}).IsZero() {
		t.Fatal("trim transform should not be zero")
	}
}
