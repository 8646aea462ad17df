package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
	"github.com/idilsaglam/todo/internal/store/storetest"
)

func openAt(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	var path string
	storetest.Run(t, storetest.Opener{
		Open: func(t *testing.T) store.Store {
			path = filepath.Join(t.TempDir(), DefaultFileName)
			return openAt(t, path)
		},
		Reopen: func(t *testing.T) store.Store {
			return openAt(t, path)
		},
	})
}

func TestOpenDirectoryUsesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	s := openAt(t, dir)
	if got, want := s.Path(), filepath.Join(dir, DefaultFileName); got != want {
		t.Errorf("Path: got %q, want %q", got, want)
	}
}

func TestFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	s := openAt(t, path)
	ctx := context.Background()

	a, _ := s.Create(ctx, "a")
	if _, err := s.Create(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCompleted(ctx, a.ID, true); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(b), "}\n") {
		t.Error("file should end with a newline")
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.NextID != 3 {
		t.Errorf("next_id: got %d, want 3", doc.NextID)
	}
	want := []model.Task{{ID: 1, Title: "a", Completed: true}, {ID: 2, Title: "b"}}
	if len(doc.Tasks) != len(want) {
		t.Fatalf("tasks: got %+v, want %+v", doc.Tasks, want)
	}
	for i := range want {
		if doc.Tasks[i] != want[i] {
			t.Errorf("task %d: got %+v, want %+v", i, doc.Tasks[i], want[i])
		}
	}
}

func TestLegacyFileIsMigrated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	legacy := `[
  {"title": "Buy milk", "done": false},
  {"title": "Call mom", "done": true}
]`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	s := openAt(t, path)
	ctx := context.Background()
	tasks, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	want := []model.Task{{ID: 1, Title: "Buy milk"}, {ID: 2, Title: "Call mom", Completed: true}}
	if len(tasks) != len(want) || tasks[0] != want[0] || tasks[1] != want[1] {
		t.Fatalf("got %+v, want %+v", tasks, want)
	}

	created, err := s.Create(ctx, "new")
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != 3 {
		t.Errorf("id after migration: got %d, want 3", created.ID)
	}
}

func TestInvalidFileIsUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"not json", `{"next_id": 1, "tasks": [`, "json unmarshal"},
		{"wrong type", `{"next_id": 1, "tasks": [{"id": 1, "title": 5, "completed": false}]}`, "invalid task file"},
		{"missing field", `{"next_id": 2, "tasks": [{"id": 1, "title": "x"}]}`, "invalid task file"},
		{"unknown field", `{"next_id": 1, "tasks": [], "owner": "me"}`, "invalid task file"},
		{"duplicate id", `{"next_id": 3, "tasks": [{"id": 1, "title": "a", "completed": false}, {"id": 1, "title": "b", "completed": false}]}`, "duplicate task id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "todos.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Open(path, nil)
			if !errors.Is(err, store.ErrStorageUnavailable) {
				t.Fatalf("got %v, want ErrStorageUnavailable", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNextIDRepairedFromTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	content := `{"next_id": 1, "tasks": [{"id": 7, "title": "a", "completed": false}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s := openAt(t, path)
	created, err := s.Create(context.Background(), "b")
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != 8 {
		t.Errorf("got id %d, want 8", created.ID)
	}
}

func TestCancelledContext(t *testing.T) {
	s := openAt(t, filepath.Join(t.TempDir(), "todos.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Create(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestListAllSortsHandEditedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	content := `{"next_id": 4, "tasks": [
  {"id": 3, "title": "c", "completed": false},
  {"id": 1, "title": "a", "completed": true}
]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s := openAt(t, path)
	ctx := context.Background()

	if _, err := s.Create(ctx, "d"); err != nil {
		t.Fatal(err)
	}
	tasks, err := s.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []int64
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	if fmt.Sprint(ids) != "[1 3 4]" {
		t.Errorf("ids: got %v, want [1 3 4]", ids)
	}
}

func TestSaveKeepsFileReadable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "todos.json")
	s := openAt(t, path)
	if _, err := s.Create(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := fi.Mode().Perm(); got != fileMode {
		t.Errorf("mode: got %v, want %v", got, os.FileMode(fileMode))
	}
}
