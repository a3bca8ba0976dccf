package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParseAccessToken(t *testing.T) {
	token, exp, err := IssueAccessToken("64f000000000000000000001", "member", "secret", time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry already passed: %v", exp)
	}
	claims, err := ParseAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != "64f000000000000000000001" {
		t.Fatalf("uid = %q", claims.UserID)
	}
	if claims.Role != "member" {
		t.Fatalf("role = %q", claims.Role)
	}
	if claims.Issuer != "kinhub" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := IssueAccessToken("u1", "member", "secret-a", time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(token, "secret-b"); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	token, _, err := IssueAccessToken("u1", "member", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(token, "secret"); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ParseAccessToken("not-a-jwt", "secret"); err == nil {
		t.Fatal("garbage accepted")
	}
}

func signTestToken(t *testing.T, tokenType, secret string) string {
	t.Helper()
	claims := Claims{
		UserID:    "u1",
		Role:      "member",
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "kinhub",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

// A refresh token must never work as a bearer token, even before rotation
// revokes it.
func TestParseAccessRejectsRefreshToken(t *testing.T) {
	refresh := signTestToken(t, TokenTypeRefresh, "secret")
	if _, err := ParseAccessToken(refresh, "secret"); err == nil {
		t.Fatal("refresh token accepted as access token")
	}
}

func TestParseRefreshRejectsAccessToken(t *testing.T) {
	access, _, err := IssueAccessToken("u1", "member", "secret", time.Minute)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := ParseRefreshToken(access, "secret"); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
	refresh := signTestToken(t, TokenTypeRefresh, "secret")
	if _, err := ParseRefreshToken(refresh, "secret"); err != nil {
		t.Fatalf("refresh token rejected: %v", err)
	}
}

// Tokens minted before the typ claim existed carry no type and must not
// pass either parser.
func TestParseRejectsUntypedToken(t *testing.T) {
	legacy := signTestToken(t, "", "secret")
	if _, err := ParseAccessToken(legacy, "secret"); err == nil {
		t.Fatal("untyped token accepted as access token")
	}
	if _, err := ParseRefreshToken(legacy, "secret"); err == nil {
		t.Fatal("untyped token accepted as refresh token")
	}
}
