package countdown

import (
	"testing"
	"time"

	"tally/internal/task"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)}
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		left time.Duration
		want string
	}{
		{"one of each", 90061 * time.Second, "01:01:01:01"},
		{"sub second remainder is floored", 1999 * time.Millisecond, "00:00:00:01"},
		{"exactly zero", 0, "00:00:00:00"},
		{"past deadline clamps", -3 * time.Hour, "00:00:00:00"},
		{"many days", 123*24*time.Hour + 23*time.Hour + 59*time.Minute + 59*time.Second, "123:23:59:59"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Remaining(now.Add(tc.left), now).String()
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestBreakdownPad(t *testing.T) {
	t.Parallel()

	d, h, m, s := Breakdown{Days: 1, Hours: 1, Minutes: 1, Seconds: 1}.Pad()
	if d != "01" || h != "01" || m != "01" || s != "01" {
		t.Fatalf("expected all fields 01, got %s %s %s %s", d, h, m, s)
	}
}

func TestTimerStartsAtInstantAndTicksDown(t *testing.T) {
	t.Parallel()

	clock := newClock()
	tm := New(clock.Now().Add(90061000*time.Millisecond), WithClock(clock.Now))

	cmd := tm.Start()
	if cmd == nil {
		t.Fatalf("expected Start to schedule a tick")
	}
	if !tm.Running() {
		t.Fatalf("expected timer running")
	}
	if got := tm.View(); got != "01:01:01:01" {
		t.Fatalf("expected 01:01:01:01 at start, got %s", got)
	}

	want := []string{"01:01:01:00", "01:01:00:59", "01:01:00:58"}
	for _, w := range want {
		clock.Advance(time.Second)
		if next := tm.Update(TickMsg{ID: tm.ID(), tag: tm.tag}); next == nil {
			t.Fatalf("expected the next tick to be scheduled")
		}
		if got := tm.View(); got != w {
			t.Fatalf("expected %s, got %s", w, got)
		}
	}
}

func TestTimerPastDeadlineStaysAtZero(t *testing.T) {
	t.Parallel()

	clock := newClock()
	tm := New(clock.Now().Add(-time.Minute), WithClock(clock.Now))
	tm.Start()

	for i := 0; i < 3; i++ {
		if !tm.Breakdown().Zero() {
			t.Fatalf("expected zero breakdown, got %s", tm.View())
		}
		clock.Advance(time.Second)
		if tm.Update(TickMsg{ID: tm.ID(), tag: tm.tag}) == nil {
			t.Fatalf("timer must keep ticking at zero")
		}
	}
	if tm.View() != "00:00:00:00" {
		t.Fatalf("expected 00:00:00:00, got %s", tm.View())
	}
}

func TestTimerStopDropsPendingTicks(t *testing.T) {
	t.Parallel()

	clock := newClock()
	tm := New(clock.Now().Add(time.Hour), WithClock(clock.Now))
	tm.Start()
	pending := TickMsg{ID: tm.ID(), tag: tm.tag}
	before := tm.View()

	tm.Stop()
	clock.Advance(5 * time.Second)
	if cmd := tm.Update(pending); cmd != nil {
		t.Fatalf("expected stopped timer to ignore ticks")
	}
	if tm.Running() {
		t.Fatalf("expected timer stopped")
	}
	if tm.View() != before {
		t.Fatalf("stopped timer must not recompute, got %s", tm.View())
	}
}

func TestTimerRestartIgnoresOldChain(t *testing.T) {
	t.Parallel()

	clock := newClock()
	tm := New(clock.Now().Add(time.Hour), WithClock(clock.Now))
	tm.Start()
	stale := TickMsg{ID: tm.ID(), tag: tm.tag}
	tm.Stop()
	tm.Start()

	if cmd := tm.Update(stale); cmd != nil {
		t.Fatalf("expected tick from the previous run to be dropped")
	}
	if cmd := tm.Update(TickMsg{ID: tm.ID(), tag: tm.tag}); cmd == nil {
		t.Fatalf("expected current tick to reschedule")
	}
}

func TestTimerStartWhileRunningIsNoop(t *testing.T) {
	t.Parallel()

	tm := New(time.Now().Add(time.Hour))
	tm.Start()
	tag := tm.tag
	if cmd := tm.Start(); cmd != nil {
		t.Fatalf("expected second Start to schedule nothing")
	}
	if tm.tag != tag {
		t.Fatalf("second Start must not start a new tick chain")
	}
}

func TestTimerIgnoresOtherTimersTicks(t *testing.T) {
	t.Parallel()

	a := New(time.Now().Add(time.Hour))
	b := New(time.Now().Add(time.Hour))
	a.Start()
	b.Start()
	if a.ID() == b.ID() {
		t.Fatalf("expected distinct ids")
	}
	if cmd := a.Update(TickMsg{ID: b.ID(), tag: b.tag}); cmd != nil {
		t.Fatalf("expected a to ignore b's tick")
	}
}

func TestSetSync(t *testing.T) {
	t.Parallel()

	clock := newClock()
	s := NewSet(WithClock(clock.Now))
	deadline := clock.Now().Add(2 * time.Hour)

	visible := []task.Task{
		{ID: "1", Deadline: deadline},
		{ID: "2", Deadline: deadline, IsCompleted: true},
		{ID: "3", Deadline: deadline},
	}
	if cmd := s.Sync(visible); cmd == nil {
		t.Fatalf("expected start commands")
	}
	if s.Len() != 2 {
		t.Fatalf("expected timers for the 2 incomplete tasks, got %d", s.Len())
	}
	if _, ok := s.Get("2"); ok {
		t.Fatalf("completed task must not get a timer")
	}

	first, _ := s.Get("1")
	if cmd := s.Sync(visible); cmd != nil {
		t.Fatalf("re-sync with the same list must not start anything")
	}
	again, _ := s.Get("1")
	if first != again {
		t.Fatalf("expected the existing timer to be kept")
	}

	visible[0].IsCompleted = true
	s.Sync(visible[1:])
	if s.Len() != 1 {
		t.Fatalf("expected 1 timer after task 1 left, got %d", s.Len())
	}
	if first.Running() {
		t.Fatalf("expected timer of removed task stopped")
	}
	if cmd := s.Update(TickMsg{ID: first.ID(), tag: first.tag}); cmd != nil {
		t.Fatalf("expected ticks of dropped timers to be ignored")
	}

	third, _ := s.Get("3")
	clock.Advance(time.Second)
	if cmd := s.Update(TickMsg{ID: third.ID(), tag: third.tag}); cmd == nil {
		t.Fatalf("expected tick to be routed to task 3")
	}
	if third.View() != "00:01:59:59" {
		t.Fatalf("expected 00:01:59:59, got %s", third.View())
	}

	s.StopAll()
	if s.Len() != 0 || third.Running() {
		t.Fatalf("expected all timers stopped")
	}
}
