package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Thresholds holds every numeric parameter the derivation engine uses.
// It is loaded once at startup, validated, and passed read-only into
// every computation.
type Thresholds struct {
	RSIPeriod          int     `yaml:"rsi_period"`
	MACDFast           int     `yaml:"macd_fast"`
	MACDSlow           int     `yaml:"macd_slow"`
	MAShort            int     `yaml:"ma_short"`
	MAMedium           int     `yaml:"ma_medium"`
	MALong             int     `yaml:"ma_long"`
	RSIOverbought      float64 `yaml:"rsi_overbought"`
	RSIOversold        float64 `yaml:"rsi_oversold"`
	VolatilityLookback int     `yaml:"volatility_lookback"`
	VolatilityLow      float64 `yaml:"volatility_low"`
	VolatilityHigh     float64 `yaml:"volatility_high"`
	PELow              float64 `yaml:"pe_low"`
	PEHigh             float64 `yaml:"pe_high"`
	// ConfidenceThreshold gates impact.direction: below it the
	// direction is reported as Unclear.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// Config is the full application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Data struct {
		Provider string `yaml:"provider"` // "yahoo" or "kite"
		Kite     struct {
			APIKeyEnv      string         `yaml:"api_key_env"`
			AccessTokenEnv string         `yaml:"access_token_env"`
			Tokens         map[string]int `yaml:"tokens"` // symbol -> instrument token
		} `yaml:"kite"`
	} `yaml:"data"`
	Store struct {
		Driver string `yaml:"driver"` // "sqlite" or "noop"
		Path   string `yaml:"path"`
	} `yaml:"store"`
	Audit struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"audit"`
	Batch struct {
		RatePerSecond float64 `yaml:"rate_per_second"`
		Output        string  `yaml:"output"`
	} `yaml:"batch"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// Default returns the configuration used when no file or override is
// supplied. Momentum bounds default to 60/40: those are the RSI levels
// at which momentum flips to Strong/Weak.
func Default() Config {
	var c Config
	c.Server.Addr = ":8000"
	c.Data.Provider = "yahoo"
	c.Data.Kite.APIKeyEnv = "KITE_API_KEY"
	c.Data.Kite.AccessTokenEnv = "KITE_ACCESS_TOKEN"
	c.Store.Driver = "sqlite"
	c.Store.Path = "market-intel.db"
	c.Audit.Dir = "audit"
	c.Audit.RetentionDays = 30
	c.Batch.RatePerSecond = 1
	c.Batch.Output = "batch_results.json"
	c.Thresholds = Thresholds{
		RSIPeriod:           14,
		MACDFast:            12,
		MACDSlow:            26,
		MAShort:             20,
		MAMedium:            50,
		MALong:              200,
		RSIOverbought:       60,
		RSIOversold:         40,
		VolatilityLookback:  14,
		VolatilityLow:       15,
		VolatilityHigh:      30,
		PELow:               15,
		PEHigh:              30,
		ConfidenceThreshold: 0.5,
	}
	return c
}

// Load reads the YAML file (optional), applies environment overrides,
// and validates. Any failure here is fatal to the process: the engine
// never serves with malformed thresholds.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall back to defaults + env
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg.Thresholds); err != nil {
		return nil, err
	}
	envStr("AUDIT_LOG_DIR", &cfg.Audit.Dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(t *Thresholds) error {
	var err error
	set := func(e error) {
		if err == nil {
			err = e
		}
	}
	set(envInt("RSI_PERIOD", &t.RSIPeriod))
	set(envInt("MACD_FAST", &t.MACDFast))
	set(envInt("MACD_SLOW", &t.MACDSlow))
	set(envInt("MA_SHORT", &t.MAShort))
	set(envInt("MA_MEDIUM", &t.MAMedium))
	set(envInt("MA_LONG", &t.MALong))
	set(envFloat("RSI_OVERBOUGHT", &t.RSIOverbought))
	set(envFloat("RSI_OVERSOLD", &t.RSIOversold))
	set(envInt("VOLATILITY_LOOKBACK", &t.VolatilityLookback))
	set(envFloat("VOLATILITY_LOW_THRESHOLD", &t.VolatilityLow))
	set(envFloat("VOLATILITY_HIGH_THRESHOLD", &t.VolatilityHigh))
	set(envFloat("PE_LOW", &t.PELow))
	set(envFloat("PE_HIGH", &t.PEHigh))
	set(envFloat("CONFIDENCE_THRESHOLD", &t.ConfidenceThreshold))
	return err
}

func envStr(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	*dst = f
	return nil
}

// Validate rejects threshold combinations the engine cannot serve with.
func (c *Config) Validate() error {
	t := c.Thresholds
	if t.RSIPeriod < 2 {
		return fmt.Errorf("rsi_period must be >= 2, got %d", t.RSIPeriod)
	}
	if t.MACDFast < 1 || t.MACDSlow <= t.MACDFast {
		return fmt.Errorf("macd periods must satisfy 1 <= fast < slow, got fast=%d slow=%d", t.MACDFast, t.MACDSlow)
	}
	if t.MAShort < 1 || t.MAMedium <= t.MAShort || t.MALong <= t.MAMedium {
		return fmt.Errorf("ma windows must be increasing, got %d/%d/%d", t.MAShort, t.MAMedium, t.MALong)
	}
	if t.RSIOversold < 0 || t.RSIOverbought > 100 || t.RSIOversold >= t.RSIOverbought {
		return fmt.Errorf("rsi bounds must satisfy 0 <= oversold < overbought <= 100, got %g/%g", t.RSIOversold, t.RSIOverbought)
	}
	if t.VolatilityLookback < 2 {
		return fmt.Errorf("volatility_lookback must be >= 2, got %d", t.VolatilityLookback)
	}
	if t.VolatilityLow < 0 || t.VolatilityHigh <= t.VolatilityLow {
		return fmt.Errorf("volatility bounds must satisfy 0 <= low < high, got %g/%g", t.VolatilityLow, t.VolatilityHigh)
	}
	if t.PELow <= 0 || t.PEHigh <= t.PELow {
		return fmt.Errorf("pe bounds must satisfy 0 < low < high, got %g/%g", t.PELow, t.PEHigh)
	}
	if t.ConfidenceThreshold < 0 || t.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1], got %g", t.ConfidenceThreshold)
	}
	if c.Data.Provider != "yahoo" && c.Data.Provider != "kite" {
		return fmt.Errorf("invalid data provider %q: must be 'yahoo' or 'kite'", c.Data.Provider)
	}
	if c.Store.Driver != "sqlite" && c.Store.Driver != "noop" {
		return fmt.Errorf("invalid store driver %q: must be 'sqlite' or 'noop'", c.Store.Driver)
	}
	return nil
}
