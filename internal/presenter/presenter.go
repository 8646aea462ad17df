// Package presenter mirrors the task store into an observable snapshot.
//
// Every intent becomes a job on a single FIFO queue. One worker runs each job
// as mutate, then ListAll, then replace the snapshot, so a refresh can never
// overwrite the result of a mutation that was submitted after it.
package presenter

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
)

// ErrClosed is returned by intents submitted after Close.
var ErrClosed = errors.New("presenter closed")

const defaultQueueSize = 16

// JobError is a failed intent. ID matches the "job" field of the presenter's
// log lines for that intent.
type JobError struct {
	ID  uuid.UUID
	Op  string
	Err error
}

func (e *JobError) Error() string { return e.Err.Error() }

func (e *JobError) Unwrap() error { return e.Err }

// Presenter owns the snapshot and the job queue. The snapshot is a copy of the
// store and is rebuilt from ListAll after every mutation.
type Presenter struct {
	store store.Store
	log   *log.Logger

	jobs    chan job
	done    chan struct{}
	pending atomic.Int64

	closeMu   sync.RWMutex
	closed    bool
	closeOnce sync.Once

	mu       sync.RWMutex
	snapshot []model.Task
	subs     map[int]chan []model.Task
	nextSub  int
}

type job struct {
	id     uuid.UUID
	op     string
	ctx    context.Context
	mutate func(ctx context.Context, s store.Store) error
	result chan error
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithLogger sets the logger used for job tracing.
func WithLogger(l *log.Logger) Option {
	return func(p *Presenter) {
		if l != nil {
			p.log = l
		}
	}
}

// WithQueueSize bounds how many jobs may wait before submitters block.
func WithQueueSize(n int) Option {
	return func(p *Presenter) {
		if n > 0 {
			p.jobs = make(chan job, n)
		}
	}
}

// New starts the worker. Call Close to stop it.
func New(s store.Store, opts ...Option) *Presenter {
	p := &Presenter{
		store:    s,
		log:      log.New(io.Discard),
		jobs:     make(chan job, defaultQueueSize),
		done:     make(chan struct{}),
		snapshot: []model.Task{},
		subs:     make(map[int]chan []model.Task),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.run()
	return p
}

// Refresh reloads the snapshot from the store.
func (p *Presenter) Refresh(ctx context.Context) error {
	return p.submit(ctx, "refresh", nil)
}

// OnAdd creates a task and refreshes. An empty title is ignored without
// touching the store.
func (p *Presenter) OnAdd(ctx context.Context, title string) error {
	if title == "" {
		return nil
	}
	return p.submit(ctx, "add", func(ctx context.Context, s store.Store) error {
		_, err := s.Create(ctx, title)
		return err
	})
}

// OnToggle sets the completed flag of task id and refreshes.
func (p *Presenter) OnToggle(ctx context.Context, id int64, completed bool) error {
	return p.submit(ctx, "toggle", func(ctx context.Context, s store.Store) error {
		return s.SetCompleted(ctx, id, completed)
	})
}

// OnDelete removes task and refreshes.
func (p *Presenter) OnDelete(ctx context.Context, task model.Task) error {
	return p.submit(ctx, "delete", func(ctx context.Context, s store.Store) error {
		return s.Delete(ctx, task.ID)
	})
}

// Snapshot returns a copy of the current task list.
func (p *Presenter) Snapshot() []model.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clone(p.snapshot)
}

// Pending reports jobs queued or running. Zero means idle.
func (p *Presenter) Pending() int {
	return int(p.pending.Load())
}

// Subscribe returns a channel that receives every new snapshot. Only the
// latest unread snapshot is kept. The channel is closed by the returned
// cancel func or by Close. After Close the channel is already closed.
func (p *Presenter) Subscribe() (<-chan []model.Task, func()) {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan []model.Task, 1)
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if c, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(c)
		}
	}
}

// Close waits for queued jobs to finish, stops the worker and closes every
// subscription. The store is not closed.
func (p *Presenter) Close() {
	p.closeOnce.Do(func() {
		p.closeMu.Lock()
		p.closed = true
		close(p.jobs)
		p.closeMu.Unlock()
	})
	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}

func (p *Presenter) submit(ctx context.Context, op string, mutate func(context.Context, store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j := job{
		id:     uuid.New(),
		op:     op,
		ctx:    ctx,
		mutate: mutate,
		result: make(chan error, 1),
	}

	p.closeMu.RLock()
	if p.closed {
		p.closeMu.RUnlock()
		return ErrClosed
	}
	p.pending.Add(1)
	select {
	case p.jobs <- j:
	case <-ctx.Done():
		p.pending.Add(-1)
		p.closeMu.RUnlock()
		return ctx.Err()
	}
	p.closeMu.RUnlock()

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Presenter) run() {
	defer close(p.done)
	for j := range p.jobs {
		err := p.process(j)
		p.pending.Add(-1)
		if err != nil {
			err = &JobError{ID: j.id, Op: j.op, Err: err}
		}
		j.result <- err
	}
}

// process runs one job. A failed mutation stops before the refresh and leaves
// the snapshot as it was.
func (p *Presenter) process(j job) error {
	logger := p.log.With("job", j.id.String(), "op", j.op)
	if err := j.ctx.Err(); err != nil {
		logger.Debug("job abandoned", "err", err)
		return err
	}
	if j.mutate != nil {
		if err := j.mutate(j.ctx, p.store); err != nil {
			logger.Debug("mutation failed", "err", err)
			return err
		}
	}
	tasks, err := p.store.ListAll(j.ctx)
	if err != nil {
		logger.Debug("refresh failed", "err", err)
		return err
	}
	p.publish(tasks)
	logger.Debug("snapshot replaced", "count", len(tasks))
	return nil
}

func (p *Presenter) publish(tasks []model.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = clone(tasks)
	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- clone(tasks)
	}
}

func clone(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
