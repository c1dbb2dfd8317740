// Package tasklist owns the in-memory task collection fetched from the
// remote store and derives the filtered, sorted list the UI renders.
//
// Store calls never run on the event loop. Each mutating operation returns a
// tea.Cmd that performs the call and reports back with a message; the loop
// hands that message to Update, which is the only place the collection
// changes after the call completes.
package tasklist

import (
	"context"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tally/internal/task"
)

type Store interface {
	FetchAll(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, in task.NewTask) (task.Task, error)
	SetCompleted(ctx context.Context, t task.Task) error
	Delete(ctx context.Context, id task.ID) error
}

const (
	OpLoad   = "load tasks"
	OpCreate = "create task"
	OpToggle = "update task"
	OpDelete = "delete task"
)

type (
	LoadedMsg  struct{ Tasks []task.Task }
	CreatedMsg struct{ Task task.Task }
	ToggledMsg struct {
		ID        task.ID
		Completed bool
	}
	DeletedMsg struct{ ID task.ID }
	// ErrorMsg reports a failed store call. Err is always a *FetchError.
	ErrorMsg struct {
		Op  string
		ID  task.ID
		Err error
	}
)

// AddInput is what a user fills in to create a task.
type AddInput struct {
	Title       string
	Description string
	Deadline    time.Time
	Priority    task.Priority
}

type Option func(*Model)

func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Model) { m.log = log }
}

// WithContext sets the context store calls run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

type Model struct {
	store Store
	ctx   context.Context
	now   func() time.Time
	log   *zap.Logger

	raw []task.Task
	cfg Config
}

func New(store Store, opts ...Option) *Model {
	m := &Model{
		store: store,
		ctx:   context.Background(),
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tasks returns a copy of the raw collection in store order.
func (m *Model) Tasks() []task.Task { return slices.Clone(m.raw) }

func (m *Model) Config() Config { return m.cfg }

func (m *Model) Lookup(id task.ID) (task.Task, bool) {
	i := m.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return m.raw[i], true
}

// Derived is the rendering-ready list for the current config.
func (m *Model) Derived() []task.Task { return Derive(m.raw, m.cfg) }

func (m *Model) SetFilter(p FilterPatch) { m.cfg = m.cfg.apply(p) }

func (m *Model) SetSort(s SortCriterion) { m.cfg.SortBy = s }

func (m *Model) Load() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		tasks, err := store.FetchAll(ctx)
		if err != nil {
			return ErrorMsg{Op: OpLoad, Err: &FetchError{Op: OpLoad, Err: err}}
		}
		return LoadedMsg{Tasks: tasks}
	}
}

// AddTask validates in and returns the command that creates it. A
// validation failure returns a nil command, so nothing reaches the store.
// The title is sent as typed; blank titles are refused.
func (m *Model) AddTask(in AddInput) (tea.Cmd, error) {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return nil, &ValidationError{Field: "title", Reason: "is required"}
	case in.Deadline.IsZero():
		return nil, &ValidationError{Field: "deadline", Reason: "is required"}
	case !in.Priority.Valid():
		return nil, &ValidationError{Field: "priority", Reason: "must be Low, Medium or High"}
	}

	req := task.NewTask{
		Title:       in.Title,
		Description: in.Description,
		Deadline:    in.Deadline,
		Priority:    in.Priority,
		CreatedAt:   m.now(),
		IsCompleted: false,
	}
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		created, err := store.Create(ctx, req)
		if err != nil {
			return ErrorMsg{Op: OpCreate, Err: &FetchError{Op: OpCreate, Err: err}}
		}
		return CreatedMsg{Task: created}
	}, nil
}

// ToggleCompletion sends the task with its completion flag flipped. The
// local flag changes only once the store accepts it. Unknown ids yield a
// nil command.
func (m *Model) ToggleCompletion(id task.ID) tea.Cmd {
	t, ok := m.Lookup(id)
	if !ok {
		return nil
	}
	t.IsCompleted = !t.IsCompleted
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		if err := store.SetCompleted(ctx, t); err != nil {
			return ErrorMsg{Op: OpToggle, ID: id, Err: &FetchError{Op: OpToggle, Err: err}}
		}
		return ToggledMsg{ID: id, Completed: t.IsCompleted}
	}
}

// DeleteTask drops the task locally right away and then asks the store to
// delete it. A failed call does not bring the task back.
func (m *Model) DeleteTask(id task.ID) tea.Cmd {
	if i := m.index(id); i >= 0 {
		m.raw = slices.Delete(m.raw, i, i+1)
	}
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		if err := store.Delete(ctx, id); err != nil {
			return ErrorMsg{Op: OpDelete, ID: id, Err: &FetchError{Op: OpDelete, Err: err}}
		}
		return DeletedMsg{ID: id}
	}
}

// Update applies the completion of a store call. It returns the error
// carried by an ErrorMsg so the caller can notify the user; every other
// message yields nil.
func (m *Model) Update(msg tea.Msg) error {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.raw = slices.Clone(msg.Tasks)
		m.log.Debug("tasks loaded", zap.Int("count", len(msg.Tasks)))
	case CreatedMsg:
		m.raw = append(m.raw, msg.Task)
		m.log.Debug("task created", zap.String("id", msg.Task.ID.String()))
	case ToggledMsg:
		if i := m.index(msg.ID); i >= 0 {
			m.raw[i].IsCompleted = msg.Completed
		}
	case DeletedMsg:
		m.log.Debug("task deleted", zap.String("id", msg.ID.String()))
	case ErrorMsg:
		m.log.Warn("store call failed",
			zap.String("op", msg.Op),
			zap.String("id", msg.ID.String()),
			zap.Error(msg.Err))
		return msg.Err
	}
	return nil
}

func (m *Model) index(id task.ID) int {
	return slices.IndexFunc(m.raw, func(t task.Task) bool { return t.ID == id })
}
