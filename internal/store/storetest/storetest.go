// Package storetest runs the behaviour every store.Store must share.
package storetest

import (
	"context"
	"testing"

	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
)

// Opener returns a fresh, empty store. Reopen, when non-nil, returns a new
// handle on the same durable medium after the previous one was closed.
type Opener struct {
	Open   func(t *testing.T) store.Store
	Reopen func(t *testing.T) store.Store
}

// Run exercises the store contract against o.
func Run(t *testing.T, o Opener) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store lists nothing", func(t *testing.T) {
		s := o.Open(t)
		tasks, err := s.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll: %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("got %d tasks, want 0", len(tasks))
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		s := o.Open(t)
		seen := make(map[int64]bool)
		for i := 0; i < 20; i++ {
			task, err := s.Create(ctx, "same title")
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if seen[task.ID] {
				t.Fatalf("id %d returned twice", task.ID)
			}
			seen[task.ID] = true
		}
	})

	t.Run("read your writes", func(t *testing.T) {
		s := o.Open(t)
		created, err := s.Create(ctx, "Buy milk")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.Completed {
			t.Error("new task should not be completed")
		}
		tasks := mustList(t, s)
		got, ok := model.Find(tasks, created.ID)
		if !ok {
			t.Fatalf("task %d not listed", created.ID)
		}
		want := model.Task{ID: created.ID, Title: "Buy milk", Completed: false}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("empty title is accepted", func(t *testing.T) {
		s := o.Open(t)
		created, err := s.Create(ctx, "")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, ok := model.Find(mustList(t, s), created.ID); !ok {
			t.Error("task with empty title not listed")
		}
	})

	t.Run("list order is stable and ascending", func(t *testing.T) {
		s := o.Open(t)
		for _, title := range []string{"a", "b", "c"} {
			if _, err := s.Create(ctx, title); err != nil {
				t.Fatalf("Create: %v", err)
			}
		}
		first := mustList(t, s)
		second := mustList(t, s)
		if len(first) != 3 || len(second) != 3 {
			t.Fatalf("got %d and %d tasks, want 3", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("position %d: %+v then %+v", i, first[i], second[i])
			}
			if i > 0 && first[i-1].ID >= first[i].ID {
				t.Errorf("ids not ascending: %d before %d", first[i-1].ID, first[i].ID)
			}
		}
	})

	t.Run("set completed is idempotent and leaves title", func(t *testing.T) {
		s := o.Open(t)
		created, err := s.Create(ctx, "walk the dog")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.SetCompleted(ctx, created.ID, true); err != nil {
			t.Fatalf("SetCompleted: %v", err)
		}
		once := mustList(t, s)
		if err := s.SetCompleted(ctx, created.ID, true); err != nil {
			t.Fatalf("SetCompleted: %v", err)
		}
		twice := mustList(t, s)
		if len(once) != 1 || len(twice) != 1 || once[0] != twice[0] {
			t.Fatalf("state changed on second call: %+v vs %+v", once, twice)
		}
		if !twice[0].Completed || twice[0].Title != "walk the dog" {
			t.Errorf("got %+v", twice[0])
		}

		if err := s.SetCompleted(ctx, created.ID, false); err != nil {
			t.Fatalf("SetCompleted: %v", err)
		}
		if mustList(t, s)[0].Completed {
			t.Error("task still completed after SetCompleted(false)")
		}
	})

	t.Run("delete is final", func(t *testing.T) {
		s := o.Open(t)
		a, _ := s.Create(ctx, "a")
		b, _ := s.Create(ctx, "b")
		if err := s.Delete(ctx, b.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		tasks := mustList(t, s)
		if _, ok := model.Find(tasks, b.ID); ok {
			t.Fatalf("deleted task %d still listed", b.ID)
		}
		if _, ok := model.Find(tasks, a.ID); !ok {
			t.Fatalf("unrelated task %d removed", a.ID)
		}
		c, err := s.Create(ctx, "c")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if c.ID == b.ID {
			t.Errorf("id %d reused after delete", b.ID)
		}
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		s := o.Open(t)
		created, _ := s.Create(ctx, "keep me")
		before := mustList(t, s)
		if err := s.SetCompleted(ctx, 999999, true); err != nil {
			t.Errorf("SetCompleted on missing id: %v", err)
		}
		if err := s.Delete(ctx, 999999); err != nil {
			t.Errorf("Delete on missing id: %v", err)
		}
		after := mustList(t, s)
		if len(after) != len(before) || after[0] != before[0] {
			t.Errorf("store changed: %+v -> %+v", before, after)
		}
		if after[0].ID != created.ID {
			t.Errorf("got id %d, want %d", after[0].ID, created.ID)
		}
	})

	t.Run("scenario", func(t *testing.T) {
		s := o.Open(t)
		created, err := s.Create(ctx, "Buy milk")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		want := []model.Task{{ID: created.ID, Title: "Buy milk"}}
		assertTasks(t, mustList(t, s), want)

		if err := s.SetCompleted(ctx, created.ID, true); err != nil {
			t.Fatalf("SetCompleted: %v", err)
		}
		want[0].Completed = true
		assertTasks(t, mustList(t, s), want)

		if err := s.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		assertTasks(t, mustList(t, s), nil)
	})

	if o.Reopen == nil {
		return
	}

	t.Run("ids survive reopen", func(t *testing.T) {
		s := o.Open(t)
		a, _ := s.Create(ctx, "a")
		b, _ := s.Create(ctx, "b")
		if err := s.Delete(ctx, b.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		r := o.Reopen(t)
		tasks := mustList(t, r)
		assertTasks(t, tasks, []model.Task{{ID: a.ID, Title: "a"}})
		c, err := r.Create(ctx, "c")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if c.ID == a.ID || c.ID == b.ID {
			t.Errorf("id %d reused after reopen", c.ID)
		}
	})
}

func mustList(t *testing.T, s store.Store) []model.Task {
	t.Helper()
	tasks, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	return tasks
}

func assertTasks(t *testing.T, got, want []model.Task) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tasks %+v, want %d %+v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("task %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
