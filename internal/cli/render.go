package cli

import (
	"fmt"
	"io"

	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/ui"
)

const maxTitle = 80

func renderList(w io.Writer, tasks []model.Task, group bool) {
	th := ui.Current()
	d, p := model.Stats(tasks)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(th.Title, "Todos"),
		ui.C(th.Success, th.SymDone), d,
		ui.C(th.Pending, th.SymUnchecked), p,
		ui.C(th.Accent, "Total"), len(tasks),
	)

	lines := []string{
		header,
		ui.C(th.Muted, ui.ProgressBar(d, d+p, 28)),
		"",
	}
	if group {
		lines = append(lines, groupLines(tasks)...)
	} else {
		lines = append(lines, flatLines(tasks)...)
	}
	lines = append(lines, "", ui.C(th.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(w, lines)
}

func flatLines(tasks []model.Task) []string {
	th := ui.Current()
	if len(tasks) == 0 {
		return []string{ui.C(th.Muted, "no tasks")}
	}
	width := idWidth(tasks)
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		box, color := th.BoxUnchecked, th.Muted
		if t.Completed {
			box, color = th.BoxChecked, th.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.Dim(fmt.Sprintf("#%-*d", width, t.ID)), ui.C(color, box), clip(t.Title)))
	}
	return out
}

func groupLines(tasks []model.Task) []string {
	th := ui.Current()
	var pend, done []model.Task
	for _, t := range tasks {
		if t.Completed {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	section := func(name string, ts []model.Task) []string {
		lines := []string{ui.C(th.Accent, name)}
		if len(ts) == 0 {
			return append(lines, ui.C(th.Muted, "(none)"))
		}
		return append(lines, flatLines(ts)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

// idWidth is the digit count of the largest id.
func idWidth(tasks []model.Task) int {
	w := 1
	for _, t := range tasks {
		if n := len(fmt.Sprint(t.ID)); n > w {
			w = n
		}
	}
	return w
}

func clip(title string) string {
	r := []rune(title)
	if len(r) > maxTitle {
		return string(r[:maxTitle-3]) + "..."
	}
	return title
}
