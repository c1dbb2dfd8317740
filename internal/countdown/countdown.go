// Package countdown provides a Bubble Tea component that counts down to a
// deadline, recomputing the remaining time from the wall clock once per
// tick.
package countdown

import (
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const DefaultInterval = time.Second

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

var lastID atomic.Int64

func nextID() int {
	return int(lastID.Add(1))
}

// Breakdown is the remaining time split into whole units.
type Breakdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// Remaining computes the breakdown of max(deadline-now, 0).
func Remaining(deadline, now time.Time) Breakdown {
	ms := max(deadline.Sub(now).Milliseconds(), 0)
	return Breakdown{
		Days:    int(ms / msPerDay),
		Hours:   int(ms % msPerDay / msPerHour),
		Minutes: int(ms % msPerHour / msPerMinute),
		Seconds: int(ms % msPerMinute / msPerSecond),
	}
}

// Pad renders each field with at least two digits.
func (b Breakdown) Pad() (days, hours, minutes, seconds string) {
	return pad(b.Days), pad(b.Hours), pad(b.Minutes), pad(b.Seconds)
}

func (b Breakdown) String() string {
	d, h, m, s := b.Pad()
	return d + ":" + h + ":" + m + ":" + s
}

func (b Breakdown) Zero() bool {
	return b == Breakdown{}
}

func pad(n int) string {
	return fmt.Sprintf("%02d", n)
}

// TickMsg drives a single Timer. Ticks from an earlier run of the same
// timer carry an old tag and are ignored.
type TickMsg struct {
	ID  int
	tag int
}

type Option func(*Timer)

func WithInterval(d time.Duration) Option {
	return func(t *Timer) { t.interval = d }
}

func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

// Timer counts down to a fixed deadline. It keeps ticking once the
// deadline has passed; only Stop ends it.
type Timer struct {
	id       int
	tag      int
	deadline time.Time
	interval time.Duration
	now      func() time.Time
	running  bool
	state    Breakdown
}

func New(deadline time.Time, opts ...Option) *Timer {
	t := &Timer{
		id:       nextID(),
		deadline: deadline,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.interval <= 0 {
		t.interval = DefaultInterval
	}
	t.state = Remaining(t.deadline, t.now())
	return t
}

func (t *Timer) ID() int { return t.id }

func (t *Timer) Deadline() time.Time { return t.deadline }

func (t *Timer) Running() bool { return t.running }

func (t *Timer) Breakdown() Breakdown { return t.state }

func (t *Timer) View() string { return t.state.String() }

// Start recomputes the breakdown immediately and schedules the first
// tick. Starting a running timer does nothing.
func (t *Timer) Start() tea.Cmd {
	if t.running {
		return nil
	}
	t.running = true
	t.tag++
	t.state = Remaining(t.deadline, t.now())
	return t.tick()
}

// Stop halts the timer. Any tick already scheduled is discarded when it
// arrives.
func (t *Timer) Stop() {
	t.running = false
	t.tag++
}

func (t *Timer) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(TickMsg)
	if !ok || m.ID != t.id || m.tag != t.tag || !t.running {
		return nil
	}
	t.state = Remaining(t.deadline, t.now())
	return t.tick()
}

func (t *Timer) tick() tea.Cmd {
	id, tag := t.id, t.tag
	return tea.Tick(t.interval, func(time.Time) tea.Msg {
		return TickMsg{ID: id, tag: tag}
	})
}
