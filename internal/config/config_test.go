package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validConfig() *Config {
	return &Config{
		PayoutRate:   decimal.RequireFromString("0.25"),
		TokenQuery:   "ARCHONM",
		TokenName:    "ARCHON",
		Blacklist:    map[string]struct{}{},
		ActiveKey:    "active-key",
		PostingKey:   "posting-key",
		SendInterval: time.Second,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
}

func TestValidate_MissingSecretsAreFatal(t *testing.T) {
	cfg := validConfig()
	cfg.ActiveKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing active key")
	}

	cfg = validConfig()
	cfg.PostingKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for missing posting key")
	}
}

func TestValidate_RejectsNonPositiveRate(t *testing.T) {
	cfg := validConfig()
	cfg.PayoutRate = decimal.Zero
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero payout rate")
	}

	cfg.PayoutRate = decimal.RequireFromString("-0.1")
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for negative payout rate")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACTIVE_KEY", "a")
	t.Setenv("POSTING_KEY", "p")

	cfg := Load()

	if cfg.PayoutRate.String() != "0.25" {
		t.Errorf("PayoutRate: got %s, want 0.25", cfg.PayoutRate)
	}
	if cfg.TokenQuery != "ARCHONM" || cfg.TokenName != "ARCHON" {
		t.Errorf("Token defaults: got %s/%s", cfg.TokenQuery, cfg.TokenName)
	}
	if !cfg.Blacklisted("ufm.pay") || !cfg.Blacklisted("upfundme") {
		t.Error("Default blacklist missing expected accounts")
	}
	if cfg.Blacklisted("alice") {
		t.Error("alice should not be blacklisted")
	}
	if cfg.SendInterval != time.Second {
		t.Errorf("SendInterval: got %s, want 1s", cfg.SendInterval)
	}
	if cfg.DryRun {
		t.Error("DryRun should default to false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ACTIVE_KEY", "a")
	t.Setenv("POSTING_KEY", "p")
	t.Setenv("PAYOUT_RATE", "0.5")
	t.Setenv("TOKEN_QUERY", "FOO")
	t.Setenv("BLACKLISTED_ACCOUNTS", "x, y")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("SEND_INTERVAL", "250ms")

	cfg := Load()

	if cfg.PayoutRate.String() != "0.5" {
		t.Errorf("PayoutRate: got %s, want 0.5", cfg.PayoutRate)
	}
	if cfg.TokenQuery != "FOO" {
		t.Errorf("TokenQuery: got %s, want FOO", cfg.TokenQuery)
	}
	if !cfg.Blacklisted("x") || !cfg.Blacklisted("y") {
		t.Error("Blacklist override not applied")
	}
	if !cfg.DryRun {
		t.Error("DRY_RUN=true not applied")
	}
	if cfg.SendInterval != 250*time.Millisecond {
		t.Errorf("SendInterval: got %s, want 250ms", cfg.SendInterval)
	}
}

func TestLoad_MalformedRateFailsValidation(t *testing.T) {
	t.Setenv("ACTIVE_KEY", "a")
	t.Setenv("POSTING_KEY", "p")
	t.Setenv("PAYOUT_RATE", "garbage")

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("Expected malformed rate to fail validation")
	}
}

func TestParseBool(t *testing.T) {
	for _, truthy := range []string{"true", "TRUE", "1", "yes"} {
		if !parseBool(truthy) {
			t.Errorf("parseBool(%q) = false, want true", truthy)
		}
	}
	for _, falsy := range []string{"", "false", "0", "no", "maybe"} {
		if parseBool(falsy) {
			t.Errorf("parseBool(%q) = true, want false", falsy)
		}
	}
}
