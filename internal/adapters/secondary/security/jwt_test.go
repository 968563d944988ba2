package security

import (
	"testing"
	"time"

	"github.com/jupiterclapton/inkwell/internal/core/ports"
)

func newTestProvider(t *testing.T) *JWTProvider {
	t.Helper()
	p, err := NewJWTProvider([]byte("access-secret"), []byte("refresh-secret"))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	return p
}

func TestNewJWTProviderRequiresSecrets(t *testing.T) {
	if _, err := NewJWTProvider(nil, []byte("r")); err == nil {
		t.Error("missing access secret accepted")
	}
	if _, err := NewJWTProvider([]byte("a"), nil); err == nil {
		t.Error("missing refresh secret accepted")
	}
}

func TestIssueAndVerifyPair(t *testing.T) {
	p := newTestProvider(t)

	access, refresh, err := p.IssuePair("user-42", "u@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if access == refresh {
		t.Fatal("access and refresh tokens are identical")
	}

	for _, tc := range []struct {
		kind  ports.TokenKind
		token string
	}{
		{ports.AccessToken, access},
		{ports.RefreshToken, refresh},
	} {
		claims, err := p.Verify(tc.token, tc.kind)
		if err != nil {
			t.Fatalf("verify %s: %v", tc.kind, err)
		}
		if claims.UserID != "user-42" || claims.Email != "u@example.com" {
			t.Errorf("claims mismatch: %+v", claims)
		}
	}
}

// Les deux tokens sont signés avec des secrets distincts : vérifier un token
// avec le kind de l'autre doit échouer.
func TestVerifyRejectsCrossKind(t *testing.T) {
	p := newTestProvider(t)
	access, refresh, err := p.IssuePair("user-42", "u@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := p.Verify(access, ports.RefreshToken); err == nil {
		t.Error("access token verified as refresh")
	}
	if _, err := p.Verify(refresh, ports.AccessToken); err == nil {
		t.Error("refresh token verified as access")
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	p := newTestProvider(t)
	other, err := NewJWTProvider([]byte("other-access"), []byte("other-refresh"))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}

	access, _, err := other.IssuePair("user-42", "u@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := p.Verify(access, ports.AccessToken); err == nil {
		t.Error("token signed with a foreign secret accepted")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	// Construction directe pour forcer une expiration déjà passée.
	p := &JWTProvider{
		accessSecret:  []byte("access-secret"),
		refreshSecret: []byte("refresh-secret"),
		accessExpiry:  -time.Minute,
		refreshExpiry: time.Hour,
		issuer:        "inkwell-identity",
	}

	access, _, err := p.IssuePair("user-42", "u@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := p.Verify(access, ports.AccessToken); err == nil {
		t.Error("expired token accepted")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	p := newTestProvider(t)
	for _, bad := range []string{"", "abc", "aaa.bbb.ccc"} {
		if _, err := p.Verify(bad, ports.AccessToken); err == nil {
			t.Errorf("garbage token accepted: %q", bad)
		}
	}
}

func TestAccessExpiryIsShort(t *testing.T) {
	p := newTestProvider(t)
	if got := p.AccessExpiry(); got != 15*time.Minute {
		t.Errorf("access expiry = %v, want 15m", got)
	}
}
