package service

import (
	"errors"
	"testing"
	"time"
)

func TestAdminTokenIssueAndParse(t *testing.T) {
	svc := NewAdminTokenService("test-secret", "gaith-auth")
	token, expiresAt, err := svc.Issue(AdminClaims{AdminID: 7, Username: "ops", Roles: []string{"pricing_manager"}}, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != 7 || claims.Username != "ops" || claims.Subject != "ops" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "pricing_manager" {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}
}

func TestAdminTokenRejectsForeignIssuerAndSecret(t *testing.T) {
	issuer := NewAdminTokenService("test-secret", "other-issuer")
	token, _, err := issuer.Issue(AdminClaims{AdminID: 1, Username: "ops"}, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	if _, err := NewAdminTokenService("test-secret", "gaith-auth").Parse(token); !errors.Is(err, ErrAdminTokenInvalid) {
		t.Fatalf("expected issuer mismatch to fail, got %v", err)
	}
	if _, err := NewAdminTokenService("another-secret", "").Parse(token); !errors.Is(err, ErrAdminTokenInvalid) {
		t.Fatalf("expected signature mismatch to fail, got %v", err)
	}
	if _, err := NewAdminTokenService("", "").Parse(token); !errors.Is(err, ErrAdminTokenInvalid) {
		t.Fatalf("expected unconfigured service to fail, got %v", err)
	}
}

func TestAdminTokenRejectsMissingAdminID(t *testing.T) {
	svc := NewAdminTokenService("test-secret", "")
	token, _, err := svc.Issue(AdminClaims{Username: "ghost"}, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if _, err := svc.Parse(token); !errors.Is(err, ErrAdminTokenInvalid) {
		t.Fatalf("expected missing admin id to fail, got %v", err)
	}
}
