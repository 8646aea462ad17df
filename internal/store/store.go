// Package store defines the task store contract shared by every backend.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/idilsaglam/todo/internal/model"
)

// ErrStorageUnavailable reports that the durable medium could not be opened,
// read or written. It is fatal to the operation that hit it.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store owns the durable copy of every task.
//
// A write that returned without error is visible to the next ListAll.
// SetCompleted and Delete on an unknown id are no-ops, not errors.
type Store interface {
	// ListAll returns every task, ascending by id.
	ListAll(ctx context.Context) ([]model.Task, error)
	// Create persists a new, not completed task. Any title is accepted.
	Create(ctx context.Context, title string) (model.Task, error)
	// SetCompleted updates the completed flag of the task with id.
	SetCompleted(ctx context.Context, id int64, completed bool) error
	// Delete removes the task with id.
	Delete(ctx context.Context, id int64) error
	Close() error
}

// StorageError wraps a backend fault with the operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrStorageUnavailable, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes every StorageError match ErrStorageUnavailable.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// Unavailable wraps err as a StorageError for op. A nil err stays nil, and
// context cancellation or deadline errors are returned as is.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
