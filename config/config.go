// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Payment  PaymentConfig  `yaml:"payment"`
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// AuthConfig configures API keys and admin tokens.
type AuthConfig struct {
	KeyPrefix string        `yaml:"key_prefix"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// LedgerConfig configures the asynchronous usage recorder.
type LedgerConfig struct {
	QueueSize     int           `yaml:"queue_size"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// PaymentConfig configures the payment gateway.
// Use "razorpay" for real checkout or "dummy" for development.
type PaymentConfig struct {
	Provider    string `yaml:"provider"` // "razorpay" or "dummy"
	KeyID       string `yaml:"key_id,omitempty"`
	KeySecret   string `yaml:"key_secret,omitempty"`
	DummySecret string `yaml:"dummy_secret,omitempty"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AdminConfig configures the first-run operator account.
type AdminConfig struct {
	Email    string `yaml:"email,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// Useful for container deployments where no config file is mounted.
//
// Environment variables:
//
//	STARFEED_SERVER_HOST       - Server host (default: 0.0.0.0)
//	STARFEED_SERVER_PORT       - Server port (default: 8080)
//	STARFEED_AUTH_KEY_PREFIX   - API key prefix (default: sf_)
//	STARFEED_AUTH_JWT_SECRET   - Secret for admin token signing
//	STARFEED_DATABASE_PATH     - SQLite path (default: starfeed.db)
//	STARFEED_PAYMENT_PROVIDER  - Payment provider: razorpay or dummy
//	STARFEED_RAZORPAY_KEY_ID   - Razorpay key id
//	STARFEED_RAZORPAY_SECRET   - Razorpay key secret
//	STARFEED_ADMIN_EMAIL       - Admin email for first-run bootstrap
//	STARFEED_ADMIN_PASSWORD    - Admin password for first-run bootstrap
//	STARFEED_LOG_LEVEL         - Log level: debug, info, warn, error
//	STARFEED_LOG_FORMAT        - Log format: json or console
//	STARFEED_METRICS_ENABLED   - Enable /metrics endpoint (default: false)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies STARFEED_* environment variables.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STARFEED_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("STARFEED_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STARFEED_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("STARFEED_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("STARFEED_AUTH_KEY_PREFIX"); v != "" {
		cfg.Auth.KeyPrefix = v
	}
	if v := os.Getenv("STARFEED_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("STARFEED_AUTH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = d
		}
	}

	if v := os.Getenv("STARFEED_LEDGER_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ledger.BatchSize = n
		}
	}
	if v := os.Getenv("STARFEED_LEDGER_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Ledger.FlushInterval = d
		}
	}

	if v := os.Getenv("STARFEED_PAYMENT_PROVIDER"); v != "" {
		cfg.Payment.Provider = v
	}
	if v := os.Getenv("STARFEED_RAZORPAY_KEY_ID"); v != "" {
		cfg.Payment.KeyID = v
	}
	if v := os.Getenv("STARFEED_RAZORPAY_SECRET"); v != "" {
		cfg.Payment.KeySecret = v
	}

	if v := os.Getenv("STARFEED_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("STARFEED_ADMIN_EMAIL"); v != "" {
		cfg.Admin.Email = v
	}
	if v := os.Getenv("STARFEED_ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}

	if v := os.Getenv("STARFEED_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STARFEED_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("STARFEED_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("STARFEED_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Auth.KeyPrefix == "" {
		cfg.Auth.KeyPrefix = "sf_"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}

	if cfg.Ledger.QueueSize == 0 {
		cfg.Ledger.QueueSize = 1024
	}
	if cfg.Ledger.BatchSize == 0 {
		cfg.Ledger.BatchSize = 100
	}
	if cfg.Ledger.FlushInterval == 0 {
		cfg.Ledger.FlushInterval = 2 * time.Second
	}

	if cfg.Payment.Provider == "" {
		cfg.Payment.Provider = "dummy"
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "starfeed.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	switch cfg.Payment.Provider {
	case "razorpay":
		if cfg.Payment.KeyID == "" || cfg.Payment.KeySecret == "" {
			return fmt.Errorf("payment.key_id and payment.key_secret are required for razorpay")
		}
	case "dummy":
	default:
		return fmt.Errorf("payment.provider must be 'razorpay' or 'dummy', got %q", cfg.Payment.Provider)
	}

	return nil
}
