package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/presenter"
	"github.com/idilsaglam/todo/internal/store"
	"github.com/idilsaglam/todo/internal/ui"
)

type result struct {
	code           int
	stdout, stderr string
}

func newConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	t.Cleanup(func() {
		ui.SetColorForcing(false, false)
		ui.SetTheme("classic")
	})
	file := "todo.db"
	if backend == config.StoreJSON {
		file = "todos.json"
	}
	return &config.Config{
		Store: backend,
		DSN:   filepath.Join(t.TempDir(), file),
		Theme: "mono",
		Log:   config.LogConfig{Level: "error", Format: "text"},
	}
}

func execute(t *testing.T, cfg *config.Config, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), cfg, args, &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestCommandFlow(t *testing.T) {
	for _, backend := range []string{config.StoreJSON, config.StoreSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := newConfig(t, backend)

			r := execute(t, cfg, "add", "Buy", "milk")
			if r.code != 0 || !strings.Contains(r.stdout, "added #1") {
				t.Fatalf("add: %+v", r)
			}
			if r := execute(t, cfg, "add", "Call mom"); !strings.Contains(r.stdout, "added #2") {
				t.Fatalf("second add: %+v", r)
			}

			r = execute(t, cfg, "done", "1")
			if r.code != 0 || !strings.Contains(r.stdout, "completed #1") {
				t.Fatalf("done: %+v", r)
			}

			r = execute(t, cfg, "ls")
			if r.code != 0 {
				t.Fatalf("ls: %+v", r)
			}
			for _, want := range []string{"#1 [x] Buy milk", "#2 [ ] Call mom", "Total 2"} {
				if !strings.Contains(r.stdout, want) {
					t.Errorf("ls missing %q:\n%s", want, r.stdout)
				}
			}

			if r := execute(t, cfg, "toggle", "#1"); r.code != 0 || !strings.Contains(r.stdout, "reopened #1") {
				t.Fatalf("toggle: %+v", r)
			}
			if r := execute(t, cfg, "rm", "2"); r.code != 0 || !strings.Contains(r.stdout, "removed #2") {
				t.Fatalf("rm: %+v", r)
			}

			// Removed ids are not handed out again.
			if r := execute(t, cfg, "add", "Walk dog"); !strings.Contains(r.stdout, "added #3") {
				t.Fatalf("add after rm: %+v", r)
			}
		})
	}
}

func TestGroupedList(t *testing.T) {
	cfg := newConfig(t, config.StoreJSON)
	execute(t, cfg, "add", "a")
	execute(t, cfg, "add", "b")
	execute(t, cfg, "done", "2")

	cfg.Group = true
	r := execute(t, cfg, "ls")
	pending := strings.Index(r.stdout, "Pending")
	done := strings.Index(r.stdout, "Done")
	a := strings.Index(r.stdout, "[ ] a")
	b := strings.Index(r.stdout, "[x] b")
	if pending < 0 || done < 0 || a < 0 || b < 0 {
		t.Fatalf("grouped ls:\n%s", r.stdout)
	}
	if !(pending < a && a < done && done < b) {
		t.Errorf("sections out of order:\n%s", r.stdout)
	}
}

func TestEmptyList(t *testing.T) {
	cfg := newConfig(t, config.StoreJSON)
	r := execute(t, cfg, "ls")
	if r.code != 0 || !strings.Contains(r.stdout, "no tasks") {
		t.Errorf("ls on empty store: %+v", r)
	}
}

func TestMissingIDIsNoOp(t *testing.T) {
	cfg := newConfig(t, config.StoreJSON)
	execute(t, cfg, "add", "keep")

	for _, cmd := range []string{"done", "undone"} {
		r := execute(t, cfg, cmd, "99")
		if r.code != 0 || !strings.Contains(r.stdout, "no task #99") {
			t.Errorf("%s 99: %+v", cmd, r)
		}
	}
	r := execute(t, cfg, "rm", "99")
	if r.code != 0 || !strings.Contains(r.stdout, "no task #99") {
		t.Errorf("rm 99: %+v", r)
	}
	if strings.Contains(r.stdout, "removed") {
		t.Errorf("rm 99 claims a removal: %q", r.stdout)
	}

	r = execute(t, cfg, "ls")
	if !strings.Contains(r.stdout, "#1 [ ] keep") {
		t.Errorf("store changed:\n%s", r.stdout)
	}
}

func TestUsageErrors(t *testing.T) {
	cfg := newConfig(t, config.StoreJSON)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, ""},
		{"unknown", []string{"frobnicate"}, "unknown subcommand"},
		{"add without title", []string{"add"}, "usage: todo add"},
		{"blank title", []string{"add", "   "}, "empty title"},
		{"done without id", []string{"done"}, "usage: todo done <id>"},
		{"bad id", []string{"rm", "abc"}, "not a number"},
		{"toggle unknown id", []string{"toggle", "7"}, "no task #7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := execute(t, cfg, tt.args...)
			if r.code != 2 {
				t.Errorf("code: got %d, want 2 (%+v)", r.code, r)
			}
			if !strings.Contains(r.stderr, tt.want) {
				t.Errorf("stderr %q does not contain %q", r.stderr, tt.want)
			}
		})
	}

	if r := execute(t, cfg, "ls"); !strings.Contains(r.stdout, "no tasks") {
		t.Errorf("usage errors changed the store:\n%s", r.stdout)
	}
}

func TestHelp(t *testing.T) {
	cfg := newConfig(t, config.StoreJSON)
	r := execute(t, cfg, "help")
	if r.code != 0 || !strings.Contains(r.stdout, "Subcommands:") {
		t.Errorf("help: %+v", r)
	}
	if !strings.Contains(r.stdout, "-theme classic|mono|neon") {
		t.Errorf("help does not list themes:\n%s", r.stdout)
	}
}

func TestColorMode(t *testing.T) {
	cfg := newConfig(t, config.StoreJSON)
	cfg.Theme = "classic"
	execute(t, cfg, "add", "a")

	cfg.Color = config.ColorAlways
	if r := execute(t, cfg, "ls"); !strings.Contains(r.stdout, "\033[") {
		t.Errorf("color=always wrote no escape codes:\n%s", r.stdout)
	}
	cfg.Color = config.ColorNever
	if r := execute(t, cfg, "ls"); strings.Contains(r.stdout, "\033[") {
		t.Errorf("color=never wrote escape codes:\n%q", r.stdout)
	}
}

func TestStoreUnavailable(t *testing.T) {
	cfg := newConfig(t, config.StoreMySQL)
	cfg.DSN = ""
	r := execute(t, cfg, "ls")
	if r.code != 1 {
		t.Errorf("code: got %d, want 1", r.code)
	}
	if !strings.Contains(r.stderr, "storage unavailable") {
		t.Errorf("stderr: %q", r.stderr)
	}
}

type brokenPresenter struct{ err error }

func (b brokenPresenter) OnAdd(context.Context, string) error         { return b.err }
func (b brokenPresenter) OnToggle(context.Context, int64, bool) error { return b.err }
func (b brokenPresenter) OnDelete(context.Context, model.Task) error  { return b.err }
func (b brokenPresenter) Refresh(context.Context) error               { return b.err }
func (b brokenPresenter) Snapshot() []model.Task                      { return nil }
func (b brokenPresenter) Subscribe() (<-chan []model.Task, func())    { return nil, func() {} }

func TestRunReportsFailures(t *testing.T) {
	ui.SetColorForcing(false, true)
	t.Cleanup(func() { ui.SetColorForcing(false, false) })

	p := brokenPresenter{err: errors.New("disk gone")}
	for _, args := range [][]string{{"ls"}, {"add", "x"}, {"done", "1"}, {"toggle", "1"}, {"rm", "1"}} {
		var out, errOut bytes.Buffer
		code := Run(context.Background(), args, p, Options{Stdout: &out, Stderr: &errOut})
		if code != 1 {
			t.Errorf("%v: code %d, want 1", args, code)
		}
		if !strings.Contains(errOut.String(), "disk gone") {
			t.Errorf("%v: stderr %q", args, errOut.String())
		}
	}
}

type downStore struct{}

func (downStore) ListAll(context.Context) ([]model.Task, error) {
	return nil, store.Unavailable("list", errors.New("disk gone"))
}
func (downStore) Create(context.Context, string) (model.Task, error) {
	return model.Task{}, store.Unavailable("create", errors.New("disk gone"))
}
func (downStore) SetCompleted(context.Context, int64, bool) error {
	return store.Unavailable("set completed", errors.New("disk gone"))
}
func (downStore) Delete(context.Context, int64) error {
	return store.Unavailable("delete", errors.New("disk gone"))
}
func (downStore) Close() error { return nil }

func TestFailureLogCarriesJobID(t *testing.T) {
	p := presenter.New(downStore{})
	defer p.Close()

	var out, errOut, logs bytes.Buffer
	logger := logging.New(&logs, logging.Options{Level: "error"})
	code := Run(context.Background(), []string{"ls"}, p, Options{Stdout: &out, Stderr: &errOut, Logger: logger})
	if code != 1 {
		t.Fatalf("code: got %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "storage unavailable") {
		t.Errorf("stderr: %q", errOut.String())
	}
	if !strings.Contains(logs.String(), "load failed") || !strings.Contains(logs.String(), "job=") {
		t.Errorf("log line lacks the job id: %q", logs.String())
	}
}

func TestClip(t *testing.T) {
	long := strings.Repeat("é", 100)
	got := clip(long)
	if n := len([]rune(got)); n != maxTitle {
		t.Errorf("clip length: got %d runes, want %d", n, maxTitle)
	}
	if clip("short") != "short" {
		t.Error("short title changed")
	}
}
