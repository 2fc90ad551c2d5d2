package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/sentineliq/internal/logging"
)

// Config holds runtime settings for the SentinelIQ CLI.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	RevealInterval time.Duration
	DatabasePath   string
	LogLevel       string
	LogFormat      string
	HistoryLimit   int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.RequestTimeout = 30 * time.Second
	c.RevealInterval = 15 * time.Millisecond
	c.DatabasePath = "sentineliq.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.HistoryLimit = 50
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url %q: must be an absolute http(s) url", c.ServerURL)
	}
	if c.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	if c.RevealInterval < 0 {
		return errors.New("reveal interval must not be negative")
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log format %q: want text or json", c.LogFormat)
	}
	if c.HistoryLimit < 0 {
		return errors.New("history limit must not be negative")
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the config file named in
// args (if any), then the flags in args. Later sources take precedence. It
// panics on unreadable files, bad flags or an invalid result.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}
	return cfg
}
