package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.Store != StoreMongo {
		t.Errorf("expected mongo store, got %q", cfg.Store)
	}
	if cfg.Ratings.AllowSelf || cfg.Ratings.RequireTradePartner {
		t.Error("expected rating switches off by default")
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a development secret to be filled in")
	}
}

func TestLoad_SecretRequiredOutsideDevelopment(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV": "production",
	}))
	if err == nil {
		t.Fatal("expected error when JWT_SECRET is missing in production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                           "production",
		"JWT_SECRET":                    "s3cret",
		"STORE":                         "memory",
		"SESSION_TTL":                   "2h",
		"RATINGS_ALLOW_SELF":            "true",
		"RATINGS_REQUIRE_TRADE_PARTNER": "true",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store != StoreMemory || cfg.SessionTTL != 2*time.Hour {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.Ratings.AllowSelf || !cfg.Ratings.RequireTradePartner {
		t.Error("expected rating switches on")
	}
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORE": "postgres",
	}))
	if err == nil {
		t.Fatal("expected error for unknown store")
	}
}
