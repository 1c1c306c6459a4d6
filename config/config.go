// Package config holds tracker configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the tracking service configuration.
type Config struct {
	// OrdersSheetURL is the CSV export URL of the order-tracking sheet.
	OrdersSheetURL string
	// DocumentSheetURL is the share URL of the partner-channel sheet; it is
	// rewritten into a CSV export URL at fetch time.
	DocumentSheetURL string
	// DocumentSheetGID selects the tab of the partner-channel sheet.
	DocumentSheetGID string

	RefreshInterval time.Duration
	// StaleTTL is how long a fetched snapshot is considered fresh enough to
	// skip an on-demand refetch.
	StaleTTL time.Duration

	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration
	UserAgent       string

	ListenAddr  string
	MetricsAddr string
	Verbose     bool
}

// DefaultConfig returns the defaults the original deployment runs with.
func DefaultConfig() *Config {
	return &Config{
		OrdersSheetURL:   "",
		DocumentSheetURL: "https://docs.google.com/spreadsheets/d/1A8rNGt2e0mxk124nN9sjkyvaek0O1kNmS-Pd8naggpM/edit?usp=sharing",
		DocumentSheetGID: "541004446",
		RefreshInterval:  30 * time.Second,
		StaleTTL:         10 * time.Second,
		Timeout:          10 * time.Second,
		MaxRetries:       2,
		RetryBackoff:     200 * time.Millisecond,
		RetryBackoffMax:  2 * time.Second,
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		ListenAddr:       ":8080",
		MetricsAddr:      ":9090",
		Verbose:          false,
	}
}

// FromEnv builds a Config from defaults overlaid with environment
// variables. A .env file in the working directory is honored when present.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if v, ok := EnvString("TRACKER_SHEET_URL"); ok {
		cfg.OrdersSheetURL = v
	}
	if v, ok := EnvString("TRACKER_DOC_SHEET_URL"); ok {
		cfg.DocumentSheetURL = v
	}
	if v, ok := EnvString("TRACKER_DOC_SHEET_GID"); ok {
		cfg.DocumentSheetGID = v
	}
	if v, ok := EnvString("TRACKER_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := EnvString("TRACKER_METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}
	if v, ok, err := EnvDuration("TRACKER_REFRESH_INTERVAL"); err != nil {
		return nil, err
	} else if ok {
		cfg.RefreshInterval = v
	}
	if v, ok, err := EnvDuration("TRACKER_STALE_TTL"); err != nil {
		return nil, err
	} else if ok {
		cfg.StaleTTL = v
	}
	if v, ok, err := EnvDuration("TRACKER_TIMEOUT"); err != nil {
		return nil, err
	} else if ok {
		cfg.Timeout = v
	}
	if v, ok, err := EnvInt("TRACKER_MAX_RETRIES"); err != nil {
		return nil, err
	} else if ok {
		cfg.MaxRetries = v
	}
	return cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.OrdersSheetURL == "" && c.DocumentSheetURL == "" {
		return fmt.Errorf("at least one sheet URL must be configured")
	}
	if c.OrdersSheetURL != "" {
		if err := validateURL("orders sheet URL", c.OrdersSheetURL); err != nil {
			return err
		}
	}
	if c.DocumentSheetURL != "" {
		if err := validateURL("document sheet URL", c.DocumentSheetURL); err != nil {
			return err
		}
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	if c.StaleTTL <= 0 {
		return fmt.Errorf("stale TTL must be positive")
	}
	if c.StaleTTL > c.RefreshInterval {
		return fmt.Errorf("stale TTL (%s) cannot exceed refresh interval (%s)", c.StaleTTL, c.RefreshInterval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return nil
}

func validateURL(name, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}

// EnvString reads a string environment variable; ok is false when unset or
// empty.
func EnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

// EnvInt reads an integer environment variable.
func EnvInt(key string) (int, bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// EnvDuration reads a duration environment variable ("30s", "1m").
func EnvDuration(key string) (time.Duration, bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return d, true, nil
}
