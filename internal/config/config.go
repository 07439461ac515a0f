package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/campaign-estimator/internal/demand"
	"github.com/ignite/campaign-estimator/internal/periods"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	CORS    CORSConfig    `yaml:"cors"`
	Demand  DemandConfig  `yaml:"demand"`
	Periods PeriodsConfig `yaml:"periods"`
	Upload  UploadConfig  `yaml:"upload"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, allowing an environment override.
func (c ServerConfig) GetHost() string {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	if c.Host == "" {
		return "127.0.0.1"
	}
	return c.Host
}

// CORSConfig holds the allowed browser origins for the JSON API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Origins returns the configured origins or the localhost development defaults.
func (c CORSConfig) Origins() []string {
	if len(c.AllowedOrigins) > 0 {
		return c.AllowedOrigins
	}
	return []string{"http://localhost:5173", "http://localhost:8080"}
}

// DemandConfig holds the demand normalizer's magnitude policies. Earlier
// revisions of this pipeline shipped with the ceiling hard-coded at 1e9,
// later ones at 1e12, so both thresholds are explicit configuration here.
type DemandConfig struct {
	SuspiciousThreshold float64 `yaml:"suspicious_threshold"`
	CeilingThreshold    float64 `yaml:"ceiling_threshold"`
	DefaultDigits       int     `yaml:"default_digits"`
}

// Thresholds returns the normalizer configuration with defaults applied.
func (c DemandConfig) Thresholds() demand.Thresholds {
	t := demand.DefaultThresholds()
	if c.SuspiciousThreshold > 0 {
		t.Suspicious = c.SuspiciousThreshold
	}
	if c.CeilingThreshold > 0 {
		t.Ceiling = c.CeilingThreshold
	}
	if c.DefaultDigits > 0 {
		t.DefaultDigits = c.DefaultDigits
	}
	return t
}

// PeriodsConfig selects the date-window semantics.
type PeriodsConfig struct {
	MatchMode string `yaml:"match_mode"` // "overlap" or "containment"
}

// Mode returns the configured match mode, defaulting to overlap.
func (c PeriodsConfig) Mode() periods.MatchMode {
	if c.MatchMode == string(periods.ModeContainment) {
		return periods.ModeContainment
	}
	return periods.ModeOverlap
}

// UploadConfig bounds the accepted upload size.
type UploadConfig struct {
	MaxSizeMB int `yaml:"max_size_mb"`
}

// MaxBytes returns the upload limit in bytes, defaulting to 20 MB.
func (c UploadConfig) MaxBytes() int64 {
	if c.MaxSizeMB <= 0 {
		return 20 << 20
	}
	return int64(c.MaxSizeMB) << 20
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file first (if present), tolerates a missing YAML file
// (every setting has a usable default), and applies env vars last.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if v := os.Getenv("PERIOD_MATCH_MODE"); v != "" {
		cfg.Periods.MatchMode = v
	}

	return cfg, nil
}
