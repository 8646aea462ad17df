package sqlstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// dialect carries what differs between the supported SQL engines.
type dialect struct {
	driver     string
	createDDL  string
	maxConns   int
	pragmas    []string
	prepareDSN func(dsn string) (string, error)
}

var dialects = map[string]dialect{
	"sqlite3": {
		driver: "sqlite3",
		createDDL: `CREATE TABLE IF NOT EXISTS tasks (
    taskId INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL DEFAULT '',
    isCompleted BOOLEAN NOT NULL DEFAULT 0
)`,
		maxConns: 1,
		pragmas: []string{
			"PRAGMA journal_mode=WAL;",
			"PRAGMA synchronous=FULL;",
		},
		prepareDSN: sqliteDSN,
	},
	"mysql": {
		driver: "mysql",
		createDDL: `CREATE TABLE IF NOT EXISTS tasks (
    taskId BIGINT PRIMARY KEY AUTO_INCREMENT,
    title TEXT NOT NULL,
    isCompleted BOOLEAN NOT NULL DEFAULT FALSE
)`,
		prepareDSN: func(dsn string) (string, error) {
			if dsn == "" {
				return "", fmt.Errorf("mysql: empty dsn")
			}
			return dsn, nil
		},
	},
}

func lookupDialect(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return dialects["sqlite3"], nil
	case "mysql":
		return dialects["mysql"], nil
	}
	return dialect{}, fmt.Errorf("unsupported driver %q", driver)
}

// sqliteDSN makes sure the database directory exists and appends the busy timeout.
func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite: empty path")
	}
	if path == ":memory:" {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create db directory: %w", err)
	}
	if strings.Contains(path, "?") {
		return path, nil
	}
	return path + "?_busy_timeout=5000", nil
}
