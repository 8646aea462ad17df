// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file ($XDG_CONFIG_HOME/todo/todo.toml or the OS config dir),
// or the file named by TODO_CONFIG
// 3. Project config file (todo.toml or .todo.toml in the working directory)
// 4. Environment variables (TODO_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	StoreSQLite = "sqlite"
	StoreJSON   = "json"
	StoreMySQL  = "mysql"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default values.
const (
	DefaultStore     = StoreSQLite
	DefaultTheme     = "classic"
	DefaultColor     = ColorAuto
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultDBFile    = "todo.db"
	DefaultJSONFile  = "todos.json"
)

// Config holds the full configuration for todo.
type Config struct {
	// Storage
	Store string `toml:"store"`
	DSN   string `toml:"dsn"`

	// Output
	Group bool   `toml:"group"`
	Theme string `toml:"theme"`
	Color string `toml:"color"`

	Log LogConfig `toml:"log"`

	// Files that were applied, in order. Not read from TOML.
	Files []string `toml:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

func setDefaults(cfg *Config) {
	cfg.Store = DefaultStore
	cfg.Theme = DefaultTheme
	cfg.Color = DefaultColor
	cfg.Log.Level = DefaultLogLevel
	cfg.Log.Format = DefaultLogFormat
}

// Load builds the configuration and parses flags from args into fs. The
// remaining positional arguments are left in fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	// 1. Defaults
	setDefaults(cfg)

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Project config file
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. Environment
	loadFromEnv(cfg)

	// 5. Flags
	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

// finalizeConfig validates names and resolves the storage location.
func finalizeConfig(cfg *Config) error {
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case StoreSQLite, StoreJSON, StoreMySQL:
	case "sqlite3":
		cfg.Store = StoreSQLite
	default:
		return fmt.Errorf("unknown store %q (want sqlite, json or mysql)", cfg.Store)
	}

	switch strings.ToLower(cfg.Theme) {
	case "classic", "neon", "mono":
		cfg.Theme = strings.ToLower(cfg.Theme)
	default:
		return fmt.Errorf("unknown theme %q (want classic, neon or mono)", cfg.Theme)
	}

	cfg.Color = strings.ToLower(strings.TrimSpace(cfg.Color))
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", cfg.Color)
	}

	cfg.Log.File = expandPath(cfg.Log.File)

	if cfg.Store == StoreMySQL {
		if cfg.DSN == "" {
			return fmt.Errorf("store %q needs a dsn", cfg.Store)
		}
		return nil
	}

	if cfg.DSN == "" {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		name := DefaultDBFile
		if cfg.Store == StoreJSON {
			name = DefaultJSONFile
		}
		cfg.DSN = filepath.Join(dir, name)
		return nil
	}

	cfg.DSN = expandPath(cfg.DSN)
	if cfg.DSN != ":memory:" && !filepath.IsAbs(cfg.DSN) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.DSN = filepath.Join(wd, cfg.DSN)
	}
	return nil
}
