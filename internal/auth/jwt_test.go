package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)
	token, err := manager.Issue("ops-laptop", RoleOperator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "ops-laptop" || claims.Role != RoleOperator || claims.Issuer != issuer {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := manager.Parse(token + "tampered"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
	if _, err := NewTokenManager("other", time.Hour).Parse(token); err == nil {
		t.Fatalf("expected parse error for a different secret")
	}
}

func TestTokenManager_Expired(t *testing.T) {
	manager := NewTokenManager("secret", time.Minute)
	token, err := manager.Issue("ops", RoleViewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	manager.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := manager.Parse(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestTokenManager_RejectsForeignIssuer(t *testing.T) {
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             RoleOperator,
	}).SignedString([]byte("secret"))

	if _, err := NewTokenManager("secret", time.Hour).Parse(token); err == nil {
		t.Fatalf("expected issuer mismatch to be rejected")
	}
}

func TestTokenManager_Validation(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour).Issue("ops", RoleViewer); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
	if _, err := NewTokenManager("secret", time.Hour).Issue("ops", "admin"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestAllows(t *testing.T) {
	if !Allows(RoleOperator, RoleViewer) || !Allows(RoleViewer, RoleViewer) {
		t.Fatalf("expected read access")
	}
	if Allows(RoleViewer, RoleOperator) || Allows("", RoleViewer) {
		t.Fatalf("expected access denied")
	}
}
