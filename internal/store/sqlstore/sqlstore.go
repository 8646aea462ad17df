// Package sqlstore keeps tasks in a relational table through database/sql.
// SQLite is the default on-device engine; MySQL is accepted for a shared DSN.
package sqlstore

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
)

// Options select the engine and where it lives.
type Options struct {
	Driver string // sqlite3 (default) or mysql
	DSN    string // file path for sqlite3, DSN for mysql
	Logger *log.Logger
}

// Store is a store.Store over a single "tasks" table.
type Store struct {
	db  *sqlx.DB
	log *log.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects, applies pragmas and creates the schema if it is missing.
func Open(ctx context.Context, opt Options) (*Store, error) {
	d, err := lookupDialect(opt.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := d.prepareDSN(opt.DSN)
	if err != nil {
		return nil, store.Unavailable("open", err)
	}
	db, err := sqlx.Open(d.driver, dsn)
	if err != nil {
		return nil, store.Unavailable("open", err)
	}
	if d.maxConns > 0 {
		db.SetMaxOpenConns(d.maxConns)
		db.SetMaxIdleConns(d.maxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, store.Unavailable("open", err)
	}

	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{db: db, log: logger.With("store", d.driver)}
	if err := s.migrate(ctx, d); err != nil {
		_ = db.Close()
		return nil, store.Unavailable("migrate", err)
	}
	s.log.Debug("store opened")
	return s, nil
}

func (s *Store) migrate(ctx context.Context, d dialect) error {
	for _, q := range d.pragmas {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("set pragma %q: %w", q, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, d.createDDL); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ListAll(ctx context.Context) ([]model.Task, error) {
	out := []model.Task{}
	if err := s.db.SelectContext(ctx, &out,
		`SELECT taskId, title, isCompleted FROM tasks ORDER BY taskId`); err != nil {
		return nil, store.Unavailable("list", err)
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, title string) (model.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, isCompleted) VALUES (?, ?)`, title, false)
	if err != nil {
		return model.Task{}, store.Unavailable("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, store.Unavailable("create", err)
	}
	s.log.Debug("task created", "id", id)
	return model.Task{ID: id, Title: title}, nil
}

func (s *Store) SetCompleted(ctx context.Context, id int64, completed bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET isCompleted = ? WHERE taskId = ?`, completed, id)
	if err != nil {
		return store.Unavailable("set completed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.log.Debug("set completed: no such task", "id", id)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE taskId = ?`, id)
	if err != nil {
		return store.Unavailable("delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.log.Debug("delete: no such task", "id", id)
	}
	return nil
}
