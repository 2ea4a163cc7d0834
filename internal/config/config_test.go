package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/ludo?sslmode=disable")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required variables")
	}
}

func TestLoad_MissingSecretOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ludo")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error: JWT_SECRET must have no fallback default")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, 7*24*time.Hour)
	}
	if cfg.ResetTokenTTL != 24*time.Hour {
		t.Errorf("ResetTokenTTL = %v, want %v", cfg.ResetTokenTTL, 24*time.Hour)
	}
	if cfg.JWTIssuer != "ludo-api" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "ludo-api")
	}
	if cfg.JWTAudience != "ludo-web" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "ludo-web")
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitAuth != 10 {
		t.Errorf("RateLimitAuth = %d, want 10", cfg.RateLimitAuth)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("JWT_ISSUER", "custom-issuer")
	t.Setenv("RATE_LIMIT_AUTH", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.RateLimitAuth != 5 {
		t.Errorf("RateLimitAuth = %d, want 5", cfg.RateLimitAuth)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want default", cfg.TokenTTL)
	}
}
