package config

import "flag"

// parseFlags defines the root flags on fs and parses args. Flag defaults are
// the values already resolved from files and env.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.Store, "store", cfg.Store, "storage backend: sqlite, json or mysql")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "database file, JSON file or mysql DSN")
	fs.BoolVar(&cfg.Group, "group", cfg.Group, "group output by pending/done")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "color theme: classic, neon or mono")
	fs.StringVar(&cfg.Color, "color", cfg.Color, "color output: auto, always or never")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format: text, json or logfmt")
	fs.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "write logs to this file instead of stderr")

	return fs.Parse(args)
}
