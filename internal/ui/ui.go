package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tally/internal/config"
	"tally/internal/countdown"
	"tally/internal/task"
	"tally/internal/tasklist"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
)

const (
	msgAdded       = "Task added successfully!"
	msgAddFailed   = "Failed to add task!"
	msgFillFields  = "Please fill all the fields!"
	msgDeleted     = "Task deleted successfully!"
	msgInitialHelp = "Press 'a' to add, space to toggle, 'd' to delete, '/' to search."
)

type Model struct {
	tasks  *tasklist.Model
	timers *countdown.Set
	cfg    config.Config
	log    *zap.Logger
	loc    *time.Location

	cursor     int
	mode       mode
	input      textinput.Model
	spinner    spinner.Model
	pending    int
	status     string
	confirmDel bool
	pendingDel *task.Task
	form       *formState
	showDetail bool
}

// New builds the UI around an already configured task list. The initial
// load starts in Init.
func New(tasks *tasklist.Model, cfg config.Config, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	tasks.SetSort(cfg.Sort())

	return Model{
		tasks:   tasks,
		timers:  countdown.NewSet(),
		cfg:     cfg,
		log:     log,
		loc:     time.Local,
		input:   ti,
		spinner: sp,
		status:  msgInitialHelp,
		mode:    modeList,
		// the load issued by Init
		pending: 1,
	}
}

func Run(ctx context.Context, tasks *tasklist.Model, cfg config.Config, log *zap.Logger) error {
	m := New(tasks, cfg, log)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if fm, ok := final.(Model); ok {
		fm.timers.StopAll()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tasks.Load())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateAddMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case countdown.TickMsg:
		return m, m.timers.Update(msg)
	case tasklist.LoadedMsg, tasklist.CreatedMsg, tasklist.ToggledMsg, tasklist.DeletedMsg, tasklist.ErrorMsg:
		return m.applyResult(msg)
	}
	return m, nil
}

// applyResult folds the completion of a store call into the list and
// turns it into a notification.
func (m Model) applyResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.pending > 0 {
		m.pending--
	}
	err := m.tasks.Update(msg)

	switch msg := msg.(type) {
	case tasklist.LoadedMsg:
		m.status = fmt.Sprintf("Loaded %d tasks", len(msg.Tasks))
	case tasklist.CreatedMsg:
		m.status = msgAdded
		m.form = nil
		m.mode = modeList
		m.input.Blur()
	case tasklist.ToggledMsg:
		if msg.Completed {
			m.status = "Marked complete"
		} else {
			m.status = "Marked incomplete"
		}
	case tasklist.DeletedMsg:
		m.status = msgDeleted
	case tasklist.ErrorMsg:
		switch msg.Op {
		case tasklist.OpCreate:
			m.status = msgAddFailed
			if m.form != nil {
				m.form.submitting = false
			}
		default:
			m.status = err.Error()
		}
	}
	return m, m.sync()
}

// sync keeps the cursor inside the visible list and the countdowns in
// step with it.
func (m *Model) sync() tea.Cmd {
	visible := m.tasks.Derived()
	m.cursor = clampCursor(m.cursor, len(visible))
	return m.timers.Sync(visible)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.mode == modeSearch {
		return m.updateSearchMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	visible := m.tasks.Derived()
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		m.timers.StopAll()
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(visible))
	case m.cfg.Keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(visible))
	case m.cfg.Keys.Add:
		m.form = newFormState()
		m.mode = modeAdd
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		m.input.Focus()
		m.status = m.formPrompt()
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.SetValue(m.tasks.Config().SearchQuery)
		m.input.Placeholder = "Search tasks"
		m.input.Focus()
		m.status = "Search: type to filter, Enter to keep, Esc to clear"
	case m.cfg.Keys.FilterPriority:
		next := nextPriorityFilter(m.tasks.Config().PriorityFilter)
		if next == nil {
			m.tasks.SetFilter(tasklist.FilterPatch{ClearPriority: true})
			m.status = "Showing all priorities"
		} else {
			m.tasks.SetFilter(tasklist.FilterPatch{PriorityFilter: next})
			m.status = fmt.Sprintf("Showing %s priority", next)
		}
		return m, m.sync()
	case m.cfg.Keys.SortNone:
		return m.setSort(tasklist.SortNone)
	case m.cfg.Keys.SortCreated:
		return m.setSort(tasklist.SortCreationTime)
	case m.cfg.Keys.SortDue:
		return m.setSort(tasklist.SortDeadline)
	case m.cfg.Keys.SortPriority:
		return m.setSort(tasklist.SortPriority)
	case m.cfg.Keys.Refresh:
		m.pending++
		m.status = "Refreshing..."
		return m, tea.Batch(m.tasks.Load(), m.spinner.Tick)
	case m.cfg.Keys.Toggle:
		if len(visible) == 0 {
			return m, nil
		}
		cmd := m.tasks.ToggleCompletion(visible[m.cursor].ID)
		if cmd == nil {
			return m, nil
		}
		m.pending++
		return m, tea.Batch(cmd, m.spinner.Tick)
	case m.cfg.Keys.Delete:
		if len(visible) == 0 {
			return m, nil
		}
		t := visible[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case m.cfg.Keys.Detail:
		if len(visible) == 0 {
			m.status = "No tasks"
			return m, nil
		}
		m.showDetail = !m.showDetail
	}
	return m, nil
}

func (m Model) setSort(s tasklist.SortCriterion) (tea.Model, tea.Cmd) {
	m.tasks.SetSort(s)
	m.status = "Sorted by " + s.String()
	return m, m.sync()
}

func nextPriorityFilter(cur *task.Priority) *task.Priority {
	if cur == nil {
		p := task.Priorities[0]
		return &p
	}
	for i, p := range task.Priorities {
		if p == *cur && i+1 < len(task.Priorities) {
			next := task.Priorities[i+1]
			return &next
		}
	}
	return nil
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		empty := ""
		m.tasks.SetFilter(tasklist.FilterPatch{SearchQuery: &empty})
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		m.status = "Search cleared"
		return m, m.sync()
	case m.cfg.Keys.Confirm, "enter":
		m.input.Blur()
		m.mode = modeList
		m.status = fmt.Sprintf("Filtering by %q", m.tasks.Config().SearchQuery)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		q := m.input.Value()
		m.tasks.SetFilter(tasklist.FilterPatch{SearchQuery: &q})
		return m, tea.Batch(cmd, m.sync())
	}
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.NextField, "down":
		m.moveField(1)
		return m, nil
	case m.cfg.Keys.PrevField, "up":
		m.moveField(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if !m.form.last() {
			m.moveField(1)
			return m, nil
		}
		return m.submitForm()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveField(delta int) {
	m.form.setCurrentValue(m.input.Value())
	m.form.index = wrapIndex(m.form.index+delta, len(formFields()))
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.status = m.formPrompt()
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	in, err := m.form.addInput(m.loc)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	cmd, err := m.tasks.AddTask(in)
	if err != nil {
		m.log.Debug("add rejected", zap.Error(err))
		var ve *tasklist.ValidationError
		if errors.As(err, &ve) {
			m.status = fmt.Sprintf("%s (%s %s)", msgFillFields, ve.Field, ve.Reason)
		} else {
			m.status = err.Error()
		}
		return m, nil
	}
	m.form.submitting = true
	m.pending++
	m.status = "Saving..."
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	return fmt.Sprintf("Adding %s (field %d of %d). Enter to advance, Tab to move, Esc to cancel.",
		m.form.currentLabel(), m.form.index+1, len(formFields()))
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		cmd := m.tasks.DeleteTask(m.pendingDel.ID)
		m.confirmDel = false
		m.pendingDel = nil
		m.pending++
		m.status = "Deleting..."
		return m, tea.Batch(cmd, m.sync(), m.spinner.Tick)
	default:
		return m, nil
	}
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
