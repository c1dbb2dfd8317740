package ui

import (
	"fmt"
	"strings"
	"time"

	"tally/internal/task"
	"tally/internal/tasklist"
)

var deadlineLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// formState holds the add form. Values stay here until the store confirms
// the new task, so a failed save can be retried without retyping.
type formState struct {
	title       string
	description string
	deadline    string
	priority    string
	index       int
	submitting  bool
}

func newFormState() *formState {
	return &formState{priority: task.Medium.String()}
}

func formFields() []string {
	return []string{"title", "description", "deadline (YYYY-MM-DD HH:MM)", "priority (Low/Medium/High)"}
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

func (fs formState) currentValue() string {
	switch fs.index {
	case 0:
		return fs.title
	case 1:
		return fs.description
	case 2:
		return fs.deadline
	case 3:
		return fs.priority
	default:
		return ""
	}
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.index {
	case 0:
		fs.title = v
	case 1:
		fs.description = v
	case 2:
		fs.deadline = v
	case 3:
		fs.priority = v
	}
}

func (fs formState) last() bool {
	return fs.index >= len(formFields())-1
}

// addInput converts the typed values. Empty deadline and priority are
// passed through as zero values so the task list reports them as missing.
func (fs formState) addInput(loc *time.Location) (tasklist.AddInput, error) {
	in := tasklist.AddInput{
		Title:       fs.title,
		Description: strings.TrimSpace(fs.description),
	}
	deadline, err := parseDeadline(fs.deadline, loc)
	if err != nil {
		return in, fmt.Errorf("deadline invalid: %w", err)
	}
	in.Deadline = deadline
	if strings.TrimSpace(fs.priority) != "" {
		prio, err := task.ParsePriority(fs.priority)
		if err != nil {
			return in, fmt.Errorf("priority invalid: %w", err)
		}
		in.Priority = prio
	}
	return in, nil
}

func parseDeadline(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q does not match YYYY-MM-DD HH:MM", v)
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
