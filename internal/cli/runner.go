package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/presenter"
	"github.com/idilsaglam/todo/internal/tui"
	"github.com/idilsaglam/todo/internal/ui"
)

// Presenter is the list presenter as the subcommands use it. Subscribe is
// only needed by the interactive list.
type Presenter interface {
	Refresh(ctx context.Context) error
	Snapshot() []model.Task
	OnAdd(ctx context.Context, title string) error
	OnToggle(ctx context.Context, id int64, completed bool) error
	OnDelete(ctx context.Context, task model.Task) error
	Subscribe() (<-chan []model.Task, func())
}

var _ Presenter = (*presenter.Presenter)(nil)

// Options tune output behavior from root flags.
type Options struct {
	Group  bool // list grouped by pending/done
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

// Run dispatches subcommands against p and returns an exit code
// (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, p Presenter, opt Options) int {
	r := runner{ctx: ctx, p: p, opt: opt}
	if r.opt.Logger == nil {
		r.opt.Logger = logging.Discard()
	}

	if len(args) == 0 {
		PrintHelp(opt.Stdout)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0

	case "ls":
		return r.doList()

	case "tui":
		return r.doInteractive()

	case "add":
		if len(a) == 0 {
			ui.Fail(opt.Stderr, "usage: todo add <title...>")
			return 2
		}
		return r.doAdd(strings.Join(a, " "))

	case "done", "undone", "toggle", "rm":
		if len(a) != 1 {
			ui.Fail(opt.Stderr, fmt.Sprintf("usage: todo %s <id>", cmd))
			return 2
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(a[0], "#"), 10, 64)
		if err != nil {
			ui.Fail(opt.Stderr, cmd+": not a number: "+a[0])
			return 2
		}
		switch cmd {
		case "done":
			return r.doSetCompleted(id, true)
		case "undone":
			return r.doSetCompleted(id, false)
		case "toggle":
			return r.doToggle(id)
		default:
			return r.doRemove(id)
		}
	}

	ui.Fail(opt.Stderr, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

// PrintHelp writes usage to w.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `todo - a tiny task list

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  add <title...>     Add a new task (title can be multiple words)
  ls                 List tasks
  done <id>          Mark task <id> completed
  undone <id>        Mark task <id> not completed
  toggle <id>        Flip the completed state of task <id>
  rm <id>            Remove task <id>
  tui                Interactive list

Flags:
  -store sqlite|json|mysql   storage backend (default sqlite)
  -dsn <path-or-dsn>         where the tasks live
  -group                     group ls output by pending/done
  -theme %-19s ls color theme
  -color auto|always|never   when to emit colors
  -log-level, -log-format, -log-file

Examples:
  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 3
`, strings.Join(ui.Themes(), "|"))
}

type runner struct {
	ctx context.Context
	p   Presenter
	opt Options
}

// -------------- subcommand impls ----------------

func (r runner) fail(op string, err error) int {
	var je *presenter.JobError
	if errors.As(err, &je) {
		r.opt.Logger.Error(op+" failed", "job", je.ID, "err", je.Err)
	} else {
		r.opt.Logger.Error(op+" failed", "err", err)
	}
	ui.Fail(r.opt.Stderr, op+": "+err.Error())
	return 1
}

func (r runner) doList() int {
	if err := r.p.Refresh(r.ctx); err != nil {
		return r.fail("load", err)
	}
	renderList(r.opt.Stdout, r.p.Snapshot(), r.opt.Group)
	return 0
}

func (r runner) doInteractive() int {
	if err := tui.Run(r.ctx, r.p); err != nil {
		return r.fail("tui", err)
	}
	return 0
}

func (r runner) doAdd(title string) int {
	title = strings.TrimSpace(title)
	if title == "" {
		ui.Fail(r.opt.Stderr, "add: empty title")
		return 2
	}
	if err := r.p.OnAdd(r.ctx, title); err != nil {
		return r.fail("add", err)
	}
	msg := "added"
	if t, ok := newest(r.p.Snapshot()); ok {
		msg = fmt.Sprintf("added #%d", t.ID)
	}
	ui.OK(r.opt.Stdout, msg)
	return 0
}

func (r runner) doSetCompleted(id int64, completed bool) int {
	if err := r.p.OnToggle(r.ctx, id, completed); err != nil {
		return r.fail("update", err)
	}
	if _, ok := model.Find(r.p.Snapshot(), id); !ok {
		r.nothingChanged(id)
		return 0
	}
	if completed {
		ui.OK(r.opt.Stdout, fmt.Sprintf("completed #%d", id))
	} else {
		ui.OK(r.opt.Stdout, fmt.Sprintf("reopened #%d", id))
	}
	return 0
}

func (r runner) doToggle(id int64) int {
	if err := r.p.Refresh(r.ctx); err != nil {
		return r.fail("load", err)
	}
	t, ok := model.Find(r.p.Snapshot(), id)
	if !ok {
		ui.Fail(r.opt.Stderr, fmt.Sprintf("toggle: no task #%d", id))
		ui.Hint(r.opt.Stderr, "run `todo ls` to see task ids")
		return 2
	}
	return r.doSetCompleted(id, !t.Completed)
}

func (r runner) doRemove(id int64) int {
	if err := r.p.Refresh(r.ctx); err != nil {
		return r.fail("load", err)
	}
	t, ok := model.Find(r.p.Snapshot(), id)
	if !ok {
		r.nothingChanged(id)
		return 0
	}
	if err := r.p.OnDelete(r.ctx, t); err != nil {
		return r.fail("remove", err)
	}
	ui.OK(r.opt.Stdout, fmt.Sprintf("removed #%d", id))
	return 0
}

func (r runner) nothingChanged(id int64) {
	ui.Println(r.opt.Stdout, ui.Dim(fmt.Sprintf("no task #%d, nothing changed", id)))
}

// newest returns the task with the highest id. Ids only grow, so after an
// add it is the task just created.
func newest(tasks []model.Task) (model.Task, bool) {
	var out model.Task
	found := false
	for _, t := range tasks {
		if !found || t.ID > out.ID {
			out, found = t, true
		}
	}
	return out, found
}
