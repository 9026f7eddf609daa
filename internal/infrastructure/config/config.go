// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${VAR} expansion
//  2. Environment variables (fallback), optionally seeded from a .env file
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	engine := reconcile.NewEngine(cfg.MatcherConfig(), logger)
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/statement-reconciler/internal/domain/duplicates"
	"github.com/eshaffer321/statement-reconciler/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Matching      MatchingConfig      `yaml:"matching"`
	Duplicates    DuplicatesConfig    `yaml:"duplicates"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MatchingConfig holds reconciliation settings. Zero values use the matcher
// defaults.
type MatchingConfig struct {
	Currency                  string        `yaml:"currency"`
	MatchThreshold            float64       `yaml:"match_threshold"`
	HighConfidenceThreshold   float64       `yaml:"high_confidence_threshold"`
	MediumConfidenceThreshold float64       `yaml:"medium_confidence_threshold"`
	WindowDays                int           `yaml:"window_days"`
	AmountNearPct             float64       `yaml:"amount_near_pct"`
	AmountMaxPct              float64       `yaml:"amount_max_pct"`
	Workers                   int           `yaml:"workers"`
	NoiseTokens               []string      `yaml:"noise_tokens"`
	Weights                   WeightsConfig `yaml:"weights"`
}

// WeightsConfig holds scoring weights
type WeightsConfig struct {
	Merchant       float64 `yaml:"merchant"`
	Amount         float64 `yaml:"amount"`
	Date           float64 `yaml:"date"`
	AccountBonus   float64 `yaml:"account_bonus"`
	ReferenceBonus float64 `yaml:"reference_bonus"`
}

// DuplicatesConfig holds duplicate detection settings
type DuplicatesConfig struct {
	Threshold    float64 `yaml:"threshold"`
	LookbackDays int     `yaml:"lookback_days"`
	WindowDays   int     `yaml:"window_days"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port               int           `yaml:"port"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	RateLimitPerSecond float64       `yaml:"rate_limit_per_second"`
	RateBurst          int           `yaml:"rate_burst"`
	ReportCacheTTL     time.Duration `yaml:"report_cache_ttl"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // maven (default), json, text
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECON_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("RECON_DB_PATH", "reconciler.db"),
		},
		Matching: MatchingConfig{
			Currency:       os.Getenv("RECON_CURRENCY"),
			MatchThreshold: getEnvFloat("RECON_MATCH_THRESHOLD", 0),
			WindowDays:     getEnvInt("RECON_WINDOW_DAYS", 0),
			Workers:        getEnvInt("RECON_WORKERS", 0),
			NoiseTokens:    getEnvList("RECON_NOISE_TOKENS"),
		},
		Duplicates: DuplicatesConfig{
			Threshold:    getEnvFloat("RECON_DUPLICATE_THRESHOLD", 0),
			LookbackDays: getEnvInt("RECON_LOOKBACK_DAYS", 0),
		},
		API: APIConfig{
			Port:               getEnvInt("API_PORT", 0),
			AllowedOrigins:     getEnvList("API_ALLOWED_ORIGINS"),
			RateLimitPerSecond: getEnvFloat("API_RATE_LIMIT", 0),
			RateBurst:          getEnvInt("API_RATE_BURST", 0),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "maven"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables.
// A .env file in the working directory, if present, seeds the environment first;
// variables already set are not overridden.
func LoadOrEnv_WithPath(path string) *Config {
	_ = godotenv.Load()

	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "reconciler.db"
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.API.RateLimitPerSecond == 0 {
		c.API.RateLimitPerSecond = 5
	}
	if c.API.RateBurst == 0 {
		c.API.RateBurst = 10
	}
	if c.API.ReportCacheTTL == 0 {
		c.API.ReportCacheTTL = 5 * time.Minute
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "maven"
	}
}

// MatcherConfig maps the matching section onto matcher.Config.
func (c *Config) MatcherConfig() matcher.Config {
	m := c.Matching
	out := matcher.DefaultConfig()

	out.Currency = strings.ToUpper(strings.TrimSpace(m.Currency))
	out.NoiseTokens = m.NoiseTokens
	setFloat(&out.MatchThreshold, m.MatchThreshold)
	setFloat(&out.HighConfidenceThreshold, m.HighConfidenceThreshold)
	setFloat(&out.MediumConfidenceThreshold, m.MediumConfidenceThreshold)
	if m.Workers > 0 {
		out.Workers = m.Workers
	}

	applyProfile(&out.Profile, m, m.WindowDays)
	return out
}

// DuplicateConfig maps the duplicates section onto duplicates.Config.
// Weights stay on the duplicate profile. Amount tolerances and workers are
// shared with the matching section.
func (c *Config) DuplicateConfig() duplicates.Config {
	d := c.Duplicates
	out := duplicates.DefaultConfig()

	setFloat(&out.Threshold, d.Threshold)
	if d.LookbackDays > 0 {
		out.LookbackDays = d.LookbackDays
	}
	if d.WindowDays > 0 {
		out.Profile.WindowDays = d.WindowDays
	}
	if c.Matching.AmountNearPct > 0 {
		out.Profile.AmountNearPct = decimal.NewFromFloat(c.Matching.AmountNearPct)
	}
	if c.Matching.AmountMaxPct > 0 {
		out.Profile.AmountMaxPct = decimal.NewFromFloat(c.Matching.AmountMaxPct)
	}
	if c.Matching.Workers > 0 {
		out.Workers = c.Matching.Workers
	}
	return out
}

func applyProfile(p *matcher.Profile, m MatchingConfig, windowDays int) {
	setFloat(&p.MerchantWeight, m.Weights.Merchant)
	setFloat(&p.AmountWeight, m.Weights.Amount)
	setFloat(&p.DateWeight, m.Weights.Date)
	setFloat(&p.AccountBonus, m.Weights.AccountBonus)
	setFloat(&p.ReferenceBonus, m.Weights.ReferenceBonus)
	if windowDays > 0 {
		p.WindowDays = windowDays
	}
	if m.AmountNearPct > 0 {
		p.AmountNearPct = decimal.NewFromFloat(m.AmountNearPct)
	}
	if m.AmountMaxPct > 0 {
		p.AmountMaxPct = decimal.NewFromFloat(m.AmountMaxPct)
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvList splits a comma-separated environment variable
func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
