// Package task holds the task record shared by the client and the store.
package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is the store-assigned identifier. Stores may hand out numbers or
// strings; both decode into the same opaque value.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Priority int

const (
	Low    Priority = 1
	Medium Priority = 2
	High   Priority = 3
)

// Priorities lists every allowed priority from highest to lowest.
var Priorities = []Priority{High, Medium, Low}

func (p Priority) Valid() bool {
	return p >= Low && p <= High
}

func (p Priority) String() string {
	switch p {
	case Low:
		return "Low"
	case Medium:
		return "Medium"
	case High:
		return "High"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// ParsePriority accepts a priority name (any case) or its rank 1-3.
func ParsePriority(v string) (Priority, error) {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "low", "l":
		return Low, nil
	case "medium", "m":
		return Medium, nil
	case "high", "h":
		return High, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !Priority(n).Valid() {
		return 0, fmt.Errorf("unknown priority %q", v)
	}
	return Priority(n), nil
}

type Task struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Deadline    time.Time `json:"deadline"`
	Priority    Priority  `json:"priority"`
	IsCompleted bool      `json:"is_completed"`
}

// NewTask is the body of a create request. The store answers with a
// Task carrying its own id.
type NewTask struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	IsCompleted bool      `json:"is_completed"`
}
