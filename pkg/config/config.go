// Package config loads linkscout settings from a .env file, an optional YAML
// file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
	"github.com/codeGROOVE-dev/linkscout/pkg/search"
)

// Config holds all settings needed to run the extraction pipeline.
//
//nolint:govet // fieldalignment: grouped by concern for readability
type Config struct {
	// Search provider
	Provider     string `yaml:"provider"`
	GoogleAPIKey string `yaml:"google_api_key"`
	GoogleCSEID  string `yaml:"google_cse_id"`
	BraveAPIKey  string `yaml:"brave_api_key"`

	// Search behavior
	NumResults     int           `yaml:"num_results"`
	SearchTimeout  time.Duration `yaml:"search_timeout"`
	SearchAttempts uint          `yaml:"search_attempts"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`

	// Response cache
	CacheEnabled bool          `yaml:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	CacheDir     string        `yaml:"cache_dir"`

	// Server
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Provider:       "google",
		NumResults:     5,
		SearchTimeout:  10 * time.Second,
		SearchAttempts: 1,
		CacheTTL:       24 * time.Hour,
		ListenAddr:     ":8000",
		LogLevel:       "info",
	}
}

// Load reads configuration from .env, the YAML file named by LINKSCOUT_CONFIG
// (if set), and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("LINKSCOUT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.BraveAPIKey == "" {
		cfg.BraveAPIKey = search.LoadBraveAPIKey()
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider, "LINKSCOUT_PROVIDER")
	setString(&c.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&c.GoogleCSEID, "GOOGLE_CSE_ID")
	setString(&c.BraveAPIKey, "BRAVE_API_KEY")
	setString(&c.CacheDir, "LINKSCOUT_CACHE_DIR")
	setString(&c.ListenAddr, "LINKSCOUT_LISTEN_ADDR")
	setString(&c.LogLevel, "LINKSCOUT_LOG_LEVEL")

	var errs []error
	if v := os.Getenv("LINKSCOUT_NUM_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		errs = append(errs, envErr("LINKSCOUT_NUM_RESULTS", err))
		c.NumResults = n
	}
	if v := os.Getenv("LINKSCOUT_SEARCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		errs = append(errs, envErr("LINKSCOUT_SEARCH_TIMEOUT", err))
		c.SearchTimeout = d
	}
	if v := os.Getenv("LINKSCOUT_SEARCH_ATTEMPTS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		errs = append(errs, envErr("LINKSCOUT_SEARCH_ATTEMPTS", err))
		c.SearchAttempts = uint(n)
	}
	if v := os.Getenv("LINKSCOUT_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		errs = append(errs, envErr("LINKSCOUT_RATE_LIMIT_RPS", err))
		c.RateLimitRPS = f
	}
	if v := os.Getenv("LINKSCOUT_CACHE"); v != "" {
		b, err := strconv.ParseBool(v)
		errs = append(errs, envErr("LINKSCOUT_CACHE", err))
		c.CacheEnabled = b
	}
	if v := os.Getenv("LINKSCOUT_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		errs = append(errs, envErr("LINKSCOUT_CACHE_TTL", err))
		c.CacheTTL = d
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("invalid %s: %w", key, err)
}

// Validate checks that the configuration can start the service.
// Missing provider credentials wrap profile.ErrMissingCredentials.
func (c *Config) Validate() error {
	switch c.Provider {
	case "google":
		var missing []string
		if c.GoogleAPIKey == "" {
			missing = append(missing, "GOOGLE_API_KEY")
		}
		if c.GoogleCSEID == "" {
			missing = append(missing, "GOOGLE_CSE_ID")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: set %s", profile.ErrMissingCredentials, strings.Join(missing, " and "))
		}
	case "brave":
		if c.BraveAPIKey == "" {
			return fmt.Errorf("%w: set BRAVE_API_KEY or write the key to ~/.brave", profile.ErrMissingCredentials)
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.NumResults < 1 {
		return fmt.Errorf("num_results must be positive, got %d", c.NumResults)
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("search_timeout must be positive, got %s", c.SearchTimeout)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps must not be negative, got %v", c.RateLimitRPS)
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if c.Provider == "brave" {
		return c.BraveAPIKey
	}
	return c.GoogleAPIKey
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
