package countdown

import (
	tea "github.com/charmbracelet/bubbletea"

	"tally/internal/task"
)

// Set keeps one running Timer per incomplete task currently on screen.
type Set struct {
	opts   []Option
	timers map[task.ID]*Timer
	owners map[int]task.ID
}

func NewSet(opts ...Option) *Set {
	return &Set{
		opts:   opts,
		timers: make(map[task.ID]*Timer),
		owners: make(map[int]task.ID),
	}
}

// Sync starts timers for incomplete tasks in visible that have none and
// stops every timer whose task left the list or was completed.
func (s *Set) Sync(visible []task.Task) tea.Cmd {
	want := make(map[task.ID]task.Task, len(visible))
	for _, t := range visible {
		if !t.IsCompleted {
			want[t.ID] = t
		}
	}

	for id, tm := range s.timers {
		t, ok := want[id]
		if ok && t.Deadline.Equal(tm.Deadline()) {
			continue
		}
		s.drop(id, tm)
	}

	var cmds []tea.Cmd
	for id, t := range want {
		if _, ok := s.timers[id]; ok {
			continue
		}
		tm := New(t.Deadline, s.opts...)
		s.timers[id] = tm
		s.owners[tm.ID()] = id
		cmds = append(cmds, tm.Start())
	}
	return tea.Batch(cmds...)
}

// Update routes a tick to the timer it belongs to.
func (s *Set) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(TickMsg)
	if !ok {
		return nil
	}
	id, ok := s.owners[m.ID]
	if !ok {
		return nil
	}
	return s.timers[id].Update(m)
}

func (s *Set) Get(id task.ID) (*Timer, bool) {
	tm, ok := s.timers[id]
	return tm, ok
}

func (s *Set) Len() int { return len(s.timers) }

func (s *Set) StopAll() {
	for id, tm := range s.timers {
		s.drop(id, tm)
	}
}

func (s *Set) drop(id task.ID, tm *Timer) {
	tm.Stop()
	delete(s.timers, id)
	delete(s.owners, tm.ID())
}
