package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appName = "todo"

// findUserConfigFile returns TODO_CONFIG if set, else the first existing
// todo.toml in the user config directory.
func findUserConfigFile() string {
	if p := os.Getenv("TODO_CONFIG"); p != "" {
		return expandPath(p)
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, appName, appName+".toml")
	if fileExists(p) {
		return p
	}
	return ""
}

// findProjectConfigFile looks for todo.toml, then .todo.toml, in the working directory.
func findProjectConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{appName + ".toml", "." + appName + ".toml"} {
		p := filepath.Join(wd, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// dataDir is where the task store lives by default.
func dataDir() (string, error) {
	if x := os.Getenv("XDG_DATA_HOME"); x != "" {
		return filepath.Join(x, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
