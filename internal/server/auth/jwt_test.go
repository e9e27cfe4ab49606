package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	userID := "user-123"

	tok, err := GenerateToken(userID, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	gotUserID, err := GetUserIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("GetUserIDFromToken error: %v", err)
	}
	if gotUserID != userID {
		t.Fatalf("userID mismatch: got %q want %q", gotUserID, userID)
	}
}

func TestGenerateAdminToken(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateAdminToken("ops", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if !claims.Admin || claims.UserID != "ops" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	tok, _ = GenerateToken("u", secret, time.Hour)
	claims, _ = ParseToken(tok, secret)
	if claims.Admin {
		t.Fatal("plain token must not carry admin")
	}
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("u1", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, secret)
	if err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, []byte("wrong-secret"))
	if err != common.ErrInvalidToken {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestGetUserIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetUserIDFromToken("not.a.jwt", []byte("k"))
	if err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u",
	})
	s, err := tok.SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(s, secret); err != common.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_RequiresUserID(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, _ := GenerateToken("", secret, time.Hour)
	if _, err := ParseToken(tok, secret); err != common.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRequesterFromRequest(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, _ := GenerateToken("alice", secret, time.Hour)

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"none", func(r *http.Request) {}, ""},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, "alice"},
		{"bearer lower case", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+tok) }, "alice"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: tok}) }, "alice"},
		{"bad bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") }, ""},
		{"basic auth ignored", func(r *http.Request) { r.SetBasicAuth("alice", "pw") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			got := RequesterFromRequest(r, secret)
			if got.PrincipalID != tt.want {
				t.Fatalf("PrincipalID=%q, want %q", got.PrincipalID, tt.want)
			}
		})
	}
}
