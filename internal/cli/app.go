package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/presenter"
	"github.com/idilsaglam/todo/internal/store"
	"github.com/idilsaglam/todo/internal/store/jsonstore"
	"github.com/idilsaglam/todo/internal/store/sqlstore"
	"github.com/idilsaglam/todo/internal/ui"
)

// Execute wires the logger, store and presenter described by cfg and runs
// args through Run.
func Execute(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		PrintHelp(stdout)
		return 2
	}
	switch args[0] {
	case "help", "-h", "--help":
		PrintHelp(stdout)
		return 0
	}

	logger, closer, err := newLogger(cfg, args[0] == "tui", stderr)
	if err != nil {
		ui.Fail(stderr, err.Error())
		return 1
	}
	if closer != nil {
		defer closer.Close()
	}
	ui.SetTheme(cfg.Theme)
	ui.SetColorForcing(cfg.Color == config.ColorAlways, cfg.Color == config.ColorNever)
	logger.Debug("config loaded", "store", cfg.Store, "files", cfg.Files)

	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", "err", err)
		ui.Fail(stderr, err.Error())
		ui.Hint(stderr, "check -store and -dsn, or TODO_STORE and TODO_DSN")
		return 1
	}
	defer s.Close()

	p := presenter.New(s, presenter.WithLogger(logger))
	defer p.Close()

	return Run(ctx, args, p, Options{
		Group:  cfg.Group,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	})
}

// newLogger writes to the configured file, or to stderr. The full-screen
// list owns the terminal, so without a file it logs nothing.
func newLogger(cfg *config.Config, fullscreen bool, stderr io.Writer) (*log.Logger, io.Closer, error) {
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Prefix: "todo"}
	switch {
	case cfg.Log.File != "":
		return logging.OpenFile(cfg.Log.File, opts)
	case fullscreen:
		return logging.Discard(), nil, nil
	default:
		return logging.New(stderr, opts), nil, nil
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.Store, error) {
	switch cfg.Store {
	case config.StoreJSON:
		s, err := jsonstore.Open(cfg.DSN, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreSQLite, config.StoreMySQL:
		driver := "sqlite3"
		if cfg.Store == config.StoreMySQL {
			driver = "mysql"
		}
		s, err := sqlstore.Open(ctx, sqlstore.Options{Driver: driver, DSN: cfg.DSN, Logger: logger})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
