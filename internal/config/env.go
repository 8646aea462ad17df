package config

import (
	"os"
	"strconv"
)

// loadFromEnv overrides config from TODO_* environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODO_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("TODO_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("TODO_GROUP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Group = b
		}
	}
	if v := os.Getenv("TODO_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TODO_COLOR"); v != "" {
		cfg.Color = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TODO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TODO_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
