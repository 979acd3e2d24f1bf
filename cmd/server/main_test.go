package main

import (
	"strings"
	"testing"

	"github.com/gaithtours/margin-engine/internal/config"
)

func TestIsWeakSecret(t *testing.T) {
	cases := map[string]bool{
		"short":                                     true,
		"change-me-in-production-please-0123456789": true,
		"Your-Secret-Key-000000000000000000000000":  true,
		"k8Vq2xN4pL7rT1yW9bZ3cF6hJ0mQ5sD8gA2eU4iO":  false,
	}
	for secret, want := range cases {
		if got := isWeakSecret(secret); got != want {
			t.Fatalf("isWeakSecret(%q) want %v got %v", secret, want, got)
		}
	}
}

func TestCheckSecrets(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "change-me"

	if err := checkSecrets(cfg, false); err != nil {
		t.Fatalf("debug mode should only warn, got %v", err)
	}
	err := checkSecrets(cfg, true)
	if err == nil || !strings.Contains(err.Error(), "jwt.secret") || !strings.Contains(err.Error(), "service_auth.tokens") {
		t.Fatalf("release mode should reject both problems, got %v", err)
	}

	cfg.JWT.SecretKey = "k8Vq2xN4pL7rT1yW9bZ3cF6hJ0mQ5sD8gA2eU4iO"
	cfg.ServiceAuth.Tokens = []string{"booking-token"}
	if err := checkSecrets(cfg, true); err != nil {
		t.Fatalf("strong config should pass, got %v", err)
	}
}
