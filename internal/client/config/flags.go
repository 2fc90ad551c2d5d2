package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/sentineliq/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns. Other flags in args are
// ignored.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-s", "-t", "-r", "-d", "-l"})

	fs := flag.NewFlagSet("sentineliq", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "API server url")
	timeout := fs.Int("t", int(cfg.RequestTimeout/time.Second), "request timeout (in seconds, 0 disables)")
	reveal := fs.Int("r", int(cfg.RevealInterval/time.Millisecond), "assistant reveal interval (in milliseconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only explicitly passed flags replace sub-second values from a file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "r":
			cfg.RevealInterval = time.Duration(*reveal) * time.Millisecond
		}
	})
}
