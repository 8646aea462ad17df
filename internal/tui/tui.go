// Package tui is the interactive task list. It renders the presenter's
// snapshot and turns key presses into presenter intents.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo/internal/model"
)

// Presenter is what the screen needs from the list presenter.
type Presenter interface {
	OnAdd(ctx context.Context, title string) error
	OnToggle(ctx context.Context, id int64, completed bool) error
	OnDelete(ctx context.Context, task model.Task) error
	Refresh(ctx context.Context) error
	Snapshot() []model.Task
	Subscribe() (<-chan []model.Task, func())
}

// snapshotMsg carries a refreshed task list from the presenter.
type snapshotMsg []model.Task

// errMsg reports a failed intent.
type errMsg struct {
	op  string
	err error
}

// taskItem adapts model.Task to bubbles/list.Item.
type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }

// itemDelegate renders each task on a single line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.task.Title
	if it.task.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s %s\n", prefix, box, mutedStyle.Render(fmt.Sprintf("#%d", it.task.ID)), text)
}

type keyMap struct {
	add, toggle, remove, refresh, quit key.Binding
}

var keys = keyMap{
	add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	remove:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the Bubble Tea model for the task list.
type Model struct {
	ctx     context.Context
	p       Presenter
	updates <-chan []model.Task

	list   list.Model
	ti     textinput.Model
	adding bool
	addErr string
	status string

	width, height int
}

// New builds the screen over p. updates is normally p.Subscribe's channel.
func New(ctx context.Context, p Presenter, updates <-chan []model.Task) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("task", "tasks")
	extra := func() []key.Binding { return []key.Binding{keys.add, keys.toggle, keys.remove, keys.refresh} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New task title..."
	ti.CharLimit = 200

	m := Model{
		ctx:     ctx,
		p:       p,
		updates: updates,
		list:    l,
		ti:      ti,
		width:   80,
		height:  24,
	}
	m.setTasks(p.Snapshot())
	m.resize()
	return m
}

// Run starts the program in the alternate screen and blocks until it quits.
func Run(ctx context.Context, p Presenter) error {
	updates, cancel := p.Subscribe()
	defer cancel()

	prog := tea.NewProgram(New(ctx, p, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.intent("refresh", m.p.Refresh), waitForSnapshot(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		m.setTasks(msg)
		m.status = ""
		return m, waitForSnapshot(m.updates)

	case errMsg:
		m.status = fmt.Sprintf("%s: %v", msg.op, msg.err)
		return m, nil
	}

	if m.adding {
		return m.updateAdding(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit
		case key.Matches(msg, keys.toggle):
			t, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m, m.intent("toggle", func(ctx context.Context) error {
				return m.p.OnToggle(ctx, t.ID, !t.Completed)
			})
		case key.Matches(msg, keys.remove):
			t, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m, m.intent("delete", func(ctx context.Context) error {
				return m.p.OnDelete(ctx, t)
			})
		case key.Matches(msg, keys.refresh):
			return m, m.intent("refresh", m.p.Refresh)
		case key.Matches(msg, keys.add):
			m.adding = true
			m.addErr = ""
			m.status = ""
			m.ti.SetValue("")
			m.resize()
			return m, m.ti.Focus()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			title := strings.TrimSpace(m.ti.Value())
			if title == "" {
				m.addErr = "Title cannot be empty"
				return m, nil
			}
			m.stopAdding()
			return m, m.intent("add", func(ctx context.Context) error {
				return m.p.OnAdd(ctx, title)
			})
		case "esc":
			m.stopAdding()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) stopAdding() {
	m.adding = false
	m.addErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m Model) View() string {
	content := m.list.View()
	if m.adding {
		title := "Add new task"
		if m.addErr != "" {
			title += " " + errorStyle.Render(m.addErr)
		}
		content += "\n" + frameStyle.Render(title+"\n"+m.ti.View())
	}
	if m.status != "" {
		content += "\n" + errorStyle.Render("✖ "+m.status)
	}
	return frameStyle.Render(content)
}

// intent runs fn off the update loop. Success produces no message: the new
// snapshot arrives through the subscription.
func (m Model) intent(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return errMsg{op: op, err: err}
		}
		return nil
	}
}

func waitForSnapshot(updates <-chan []model.Task) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		tasks, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(tasks)
	}
}

func (m *Model) setTasks(tasks []model.Task) {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	m.list.SetItems(items)
	done, pending := model.Stats(tasks)
	m.list.Title = header(done, pending) + "  " + mutedStyle.Render(progressBar(done, done+pending, 12))
}

func (m Model) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func (m *Model) resize() {
	h := m.height - 4
	if m.adding {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}
