package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SESSION_STORE", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SessionStore != "memory" {
		t.Fatalf("expected memory session store, got %s", cfg.SessionStore)
	}
	if cfg.DefaultRate != 3.8 {
		t.Fatalf("expected default rate 3.8, got %v", cfg.DefaultRate)
	}
	if cfg.MinLifetimeSavings != 10000 {
		t.Fatalf("expected default lifetime savings floor, got %v", cfg.MinLifetimeSavings)
	}
	if cfg.SubmitDisqualifiedLeads {
		t.Fatalf("expected disqualified lead submission disabled by default")
	}
	if cfg.PortalMaxRetries != 3 {
		t.Fatalf("expected 3 portal retries, got %d", cfg.PortalMaxRetries)
	}
	if cfg.OutboundTimeout != 8*time.Second {
		t.Fatalf("expected default outbound timeout, got %s", cfg.OutboundTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("DEFAULT_RATE", "3.55")
	t.Setenv("REFERRAL_REQUIRED", "true")
	t.Setenv("REFERRAL_PREFIX", "QX")
	t.Setenv("PORTAL_TIMEOUT", "5s")
	t.Setenv("LEADS_API_KEY", "  key-with-spaces  ")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.SessionStore != "redis" {
		t.Fatalf("expected normalized session store, got %s", cfg.SessionStore)
	}
	if cfg.DefaultRate != 3.55 {
		t.Fatalf("expected rate override, got %v", cfg.DefaultRate)
	}
	if !cfg.ReferralRequired {
		t.Fatalf("expected referral required override")
	}
	if cfg.ReferralPrefix != "QX" {
		t.Fatalf("expected referral prefix override, got %s", cfg.ReferralPrefix)
	}
	if cfg.PortalTimeout != 5*time.Second {
		t.Fatalf("expected portal timeout override, got %s", cfg.PortalTimeout)
	}
	if cfg.PortalAPIKey != "key-with-spaces" {
		t.Fatalf("expected trimmed portal key, got %q", cfg.PortalAPIKey)
	}
}
