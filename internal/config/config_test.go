package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
	if cfg.Thresholds.RSIPeriod != 14 {
		t.Errorf("expected RSI period 14, got %d", cfg.Thresholds.RSIPeriod)
	}
	if cfg.Thresholds.RSIOverbought != 60 || cfg.Thresholds.RSIOversold != 40 {
		t.Errorf("expected momentum bounds 60/40, got %g/%g",
			cfg.Thresholds.RSIOverbought, cfg.Thresholds.RSIOversold)
	}
	if cfg.Thresholds.ConfidenceThreshold != 0.5 {
		t.Errorf("expected confidence threshold 0.5, got %g", cfg.Thresholds.ConfidenceThreshold)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config file should fall back to defaults: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("server:\n  addr: \":9000\"\nthresholds:\n  rsi_period: 21\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected overlaid addr :9000, got %s", cfg.Server.Addr)
	}
	if cfg.Thresholds.RSIPeriod != 21 {
		t.Errorf("expected overlaid rsi_period 21, got %d", cfg.Thresholds.RSIPeriod)
	}
	// Untouched values keep their defaults.
	if cfg.Thresholds.MACDSlow != 26 {
		t.Errorf("expected default macd_slow 26, got %d", cfg.Thresholds.MACDSlow)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RSI_PERIOD", "21")
	t.Setenv("PE_HIGH", "35.5")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Thresholds.RSIPeriod != 21 {
		t.Errorf("expected env rsi_period 21, got %d", cfg.Thresholds.RSIPeriod)
	}
	if cfg.Thresholds.PEHigh != 35.5 {
		t.Errorf("expected env pe_high 35.5, got %g", cfg.Thresholds.PEHigh)
	}
}

func TestAuditDirEnvOverride(t *testing.T) {
	t.Setenv("AUDIT_LOG_DIR", "/var/log/market-intel/audit")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audit.Dir != "/var/log/market-intel/audit" {
		t.Errorf("expected env audit dir, got %s", cfg.Audit.Dir)
	}
}

func TestMalformedEnvIsFatal(t *testing.T) {
	t.Setenv("RSI_PERIOD", "fourteen")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for malformed RSI_PERIOD")
	}
}

func TestValidateRejectsBadCombinations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"rsi period too small", func(c *Config) { c.Thresholds.RSIPeriod = 1 }},
		{"macd slow not above fast", func(c *Config) { c.Thresholds.MACDSlow = 12 }},
		{"ma windows not increasing", func(c *Config) { c.Thresholds.MAMedium = 10 }},
		{"oversold above overbought", func(c *Config) { c.Thresholds.RSIOversold = 70 }},
		{"volatility high below low", func(c *Config) { c.Thresholds.VolatilityHigh = 10 }},
		{"pe high below low", func(c *Config) { c.Thresholds.PEHigh = 5 }},
		{"confidence above one", func(c *Config) { c.Thresholds.ConfidenceThreshold = 1.5 }},
		{"unknown provider", func(c *Config) { c.Data.Provider = "bloomberg" }},
		{"unknown store driver", func(c *Config) { c.Store.Driver = "postgres" }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
