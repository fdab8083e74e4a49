// Package config resolves run configuration from the environment.
// A Config is built once per run and treated as read-only afterwards.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Default configuration values.
const (
	DefaultPayoutRate     = "0.250"
	DefaultTokenQuery     = "ARCHONM"
	DefaultTokenName      = "ARCHON"
	DefaultBlacklist      = "ufm.pay,upfundme"
	DefaultLedgerEndpoint = "http://127.0.0.1:8899"
	DefaultSendInterval   = 1 * time.Second
	DefaultOutputDir      = "output"
	DefaultLogLevel       = "info"
	DefaultMetricsAddr    = ":9090"
	DefaultRunInterval    = 24 * time.Hour
)

// Config holds all resolved settings for a payout run.
type Config struct {
	// Payout parameters
	PayoutRate decimal.Decimal
	TokenQuery string
	TokenName  string
	Blacklist  map[string]struct{}
	DryRun     bool

	// Signing credentials (mandatory, validated before any holder is processed)
	ActiveKey  string
	PostingKey string

	// Ledger endpoint; ws:// or wss:// schemes select the WebSocket
	// transport, everything else uses HTTP JSON-RPC.
	LedgerEndpoint string

	// Dispatch pacing
	SendInterval time.Duration

	// Storage (optional; memory stores are used when unset)
	PostgresDSN   string
	ClickhouseDSN string

	// Output
	OutputDir   string
	LogLevel    string
	MetricsAddr string
	RunInterval time.Duration
}

// Load builds a Config from environment variables, reading a .env file
// first if one exists. It does not validate; call Validate afterwards.
func Load() *Config {
	loadEnvFile(".env")

	cfg := &Config{
		PayoutRate:     mustDecimal(envOr("PAYOUT_RATE", DefaultPayoutRate)),
		TokenQuery:     envOr("TOKEN_QUERY", DefaultTokenQuery),
		TokenName:      envOr("TOKEN_NAME", DefaultTokenName),
		Blacklist:      parseBlacklist(envOr("BLACKLISTED_ACCOUNTS", DefaultBlacklist)),
		DryRun:         parseBool(os.Getenv("DRY_RUN")),
		ActiveKey:      os.Getenv("ACTIVE_KEY"),
		PostingKey:     os.Getenv("POSTING_KEY"),
		LedgerEndpoint: envOr("LEDGER_ENDPOINT", DefaultLedgerEndpoint),
		SendInterval:   parseDuration(os.Getenv("SEND_INTERVAL"), DefaultSendInterval),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN:  os.Getenv("CLICKHOUSE_DSN"),
		OutputDir:      envOr("OUTPUT_DIR", DefaultOutputDir),
		LogLevel:       envOr("LOG_LEVEL", DefaultLogLevel),
		MetricsAddr:    envOr("METRICS_ADDR", DefaultMetricsAddr),
		RunInterval:    parseDuration(os.Getenv("RUN_INTERVAL"), DefaultRunInterval),
	}

	return cfg
}

// Validate checks the invariants that must hold before a run starts.
// A failure here is fatal: no holder may be processed on a bad Config.
func (c *Config) Validate() error {
	if c.ActiveKey == "" {
		return fmt.Errorf("ACTIVE_KEY is required")
	}
	if c.PostingKey == "" {
		return fmt.Errorf("POSTING_KEY is required")
	}
	if !c.PayoutRate.IsPositive() {
		return fmt.Errorf("payout rate must be positive, got %s", c.PayoutRate)
	}
	if c.TokenQuery == "" {
		return fmt.Errorf("token query symbol is required")
	}
	if c.TokenName == "" {
		return fmt.Errorf("token display name is required")
	}
	if c.SendInterval < 0 {
		return fmt.Errorf("send interval must not be negative, got %s", c.SendInterval)
	}
	return nil
}

// Blacklisted reports whether the account is excluded from payouts.
func (c *Config) Blacklisted(account string) bool {
	_, ok := c.Blacklist[account]
	return ok
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBlacklist(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func parseDuration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

// mustDecimal falls back to zero on malformed input; Validate rejects
// non-positive rates, so a bad PAYOUT_RATE still aborts the run.
func mustDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// loadEnvFile loads environment variables from a file if it exists.
// Existing environment variables are not overridden.
func loadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return // file doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
}
