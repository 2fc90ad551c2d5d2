// Package config loads runtime configuration for the SentinelIQ CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-s string   API server URL
//	-t int      request timeout (seconds, 0 disables)
//	-r int      assistant reveal interval (milliseconds)
//	-d string   local database path
//	-l string   log level (debug, info, warn, error)
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "15ms" or
// integer nanoseconds. Omitted keys keep their previous value:
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "request_timeout": "30s",
//	  "reveal_interval": "15ms",
//	  "database_path": "sentineliq.db",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "history_limit": 50
//	}
package config
