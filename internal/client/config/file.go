package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/sentineliq/internal/flagx"
	"github.com/dmitrijs2005/sentineliq/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the DTO for config files. Pointer fields tell an omitted key
// from an explicit zero.
type FileConfig struct {
	ServerURL      string          `json:"server_url" yaml:"server_url"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RevealInterval *timex.Duration `json:"reveal_interval" yaml:"reveal_interval"`
	DatabasePath   string          `json:"database_path" yaml:"database_path"`
	LogLevel       string          `json:"log_level" yaml:"log_level"`
	LogFormat      string          `json:"log_format" yaml:"log_format"`
	HistoryLimit   *int            `json:"history_limit" yaml:"history_limit"`
}

// parseFile overlays cfg with the file named by -c/-config in args. It does
// nothing when no file is named and panics when the file cannot be read or
// decoded.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RevealInterval != nil {
		cfg.RevealInterval = fc.RevealInterval.Duration
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	if fc.HistoryLimit != nil {
		cfg.HistoryLimit = *fc.HistoryLimit
	}
}
